package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/smart-inventory/internal/user/domain"
	"github.com/tair/smart-inventory/pkg/auth"
	"github.com/tair/smart-inventory/pkg/logger"
)

// EnsureAdminCommand names the bootstrap administrator
type EnsureAdminCommand struct {
	Username string
	Password string
}

// EnsureAdminHandler seeds or promotes the bootstrap administrator
type EnsureAdminHandler struct {
	repo     domain.UserRepository
	register *RegisterUserHandler
}

// NewEnsureAdminHandler creates a new ensure admin handler
func NewEnsureAdminHandler(repo domain.UserRepository) *EnsureAdminHandler {
	return &EnsureAdminHandler{repo: repo, register: NewRegisterUserHandler(repo)}
}

// Handle creates the admin when missing and promotes an existing user with
// that name. The password of an existing account is left unchanged. An empty
// username or password disables seeding.
func (h *EnsureAdminHandler) Handle(ctx context.Context, cmd EnsureAdminCommand) (*domain.User, error) {
	if cmd.Username == "" || cmd.Password == "" {
		logger.Debug(ctx).Msg("Admin seeding disabled")
		return nil, nil
	}

	existing, err := h.repo.FindByUsername(ctx, cmd.Username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user, err := h.register.Handle(ctx, RegisterUserCommand{
			Username: cmd.Username,
			Password: cmd.Password,
			Role:     auth.RoleAdmin,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed admin: %w", err)
		}
		logger.Info(ctx).Str("username", user.Username).Msg("Admin account created")
		return user, nil
	case err != nil:
		return nil, err
	}

	if existing.IsAdmin() && existing.IsActive {
		return existing, nil
	}
	existing.Role = domain.RoleAdmin
	existing.IsActive = true
	if err := h.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to promote admin: %w", err)
	}
	logger.Info(ctx).Str("username", existing.Username).Msg("Existing account promoted to admin")
	return existing, nil
}
