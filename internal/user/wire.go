//go:build wireinject
// +build wireinject

package user

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/smart-inventory/internal/user/domain"
	"github.com/tair/smart-inventory/pkg/auth"
)

// InitializeModule wires the account handlers over repo
func InitializeModule(repo domain.UserRepository, tokens *auth.TokenManager, reg prometheus.Registerer) (*Module, error) {
	wire.Build(AllHandlersSet)
	return nil, nil
}
