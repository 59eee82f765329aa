package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tair/smart-inventory/internal/user/domain"
	"github.com/tair/smart-inventory/pkg/auth"
	"github.com/tair/smart-inventory/pkg/logger"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// RegisterUserCommand represents the command to register a new user
type RegisterUserCommand struct {
	Username string
	Password string
	Role     string // Optional, defaults to "user"
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	repo domain.UserRepository
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(repo domain.UserRepository) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*domain.User, error) {
	username := strings.TrimSpace(cmd.Username)
	if len(username) < minUsernameLength {
		return nil, fmt.Errorf("%w: username must be at least %d characters", domain.ErrValidation, minUsernameLength)
	}
	if len(cmd.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	role := cmd.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}

	if _, err := h.repo.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username: username,
		Password: hashedPassword,
		Role:     role,
		IsActive: true,
	}
	if err := h.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx).Uint("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return user, nil
}
