//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
)

// InitializeApp wires the inventory handlers over the given stores
func InitializeApp(stores Stores, deps Dependencies) (*App, error) {
	wire.Build(AllHandlersSet)
	return nil, nil
}
