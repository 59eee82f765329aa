package user

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/smart-inventory/internal/user/delivery/http"
	"github.com/tair/smart-inventory/internal/user/domain"
	"github.com/tair/smart-inventory/internal/user/repository"
	"github.com/tair/smart-inventory/internal/user/usecase/command"
	"github.com/tair/smart-inventory/internal/user/usecase/query"
)

// ProvideUserRepository provides the traced postgres user repository
func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewTracingUserRepository(repository.NewGormUserRepository(db))
}

// Module is the wired account handlers
type Module struct {
	Handler     *http.UserHandler
	EnsureAdmin *command.EnsureAdminHandler
}

// Wire sets
var CommandHandlerSet = wire.NewSet(
	command.NewRegisterUserHandler,
	command.NewLoginUserHandler,
	command.NewEnsureAdminHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetUserHandler,
)

var AllHandlersSet = wire.NewSet(
	CommandHandlerSet,
	QueryHandlerSet,
	http.NewUserHandler,
	wire.Struct(new(Module), "*"),
)
