package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/smart-inventory/internal/user/domain"
	"github.com/tair/smart-inventory/internal/user/repository"
	"github.com/tair/smart-inventory/internal/user/usecase/command"
	"github.com/tair/smart-inventory/pkg/auth"
)

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	h := command.NewRegisterUserHandler(repo)

	user, err := h.Handle(ctx, command.RegisterUserCommand{Username: "  alice ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret1", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "secret1"))

	_, err = h.Handle(ctx, command.RegisterUserCommand{Username: "alice", Password: "another1"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegisterUser_Validation(t *testing.T) {
	h := command.NewRegisterUserHandler(repository.NewMemoryUserRepository())

	tests := []struct {
		name string
		cmd  command.RegisterUserCommand
	}{
		{"short username", command.RegisterUserCommand{Username: "ab", Password: "secret1"}},
		{"short password", command.RegisterUserCommand{Username: "alice", Password: "123"}},
		{"unknown role", command.RegisterUserCommand{Username: "alice", Password: "secret1", Role: "root"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestLoginUser(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	_, err := command.NewRegisterUserHandler(repo).Handle(ctx, command.RegisterUserCommand{Username: "bob", Password: "hunter22"})
	require.NoError(t, err)

	login := command.NewLoginUserHandler(repo, tokens)

	resp, err := login.Handle(ctx, command.LoginUserCommand{Username: "bob", Password: "hunter22"})
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	_, err = login.Handle(ctx, command.LoginUserCommand{Username: "bob", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = login.Handle(ctx, command.LoginUserCommand{Username: "nobody", Password: "hunter22"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = login.Handle(ctx, command.LoginUserCommand{Username: "bob"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoginUser_InactiveAccount(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	user, err := command.NewRegisterUserHandler(repo).Handle(ctx, command.RegisterUserCommand{Username: "carol", Password: "hunter22"})
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, repo.Update(ctx, user))

	_, err = command.NewLoginUserHandler(repo, auth.NewTokenManager("s", time.Hour)).
		Handle(ctx, command.LoginUserCommand{Username: "carol", Password: "hunter22"})
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	h := command.NewEnsureAdminHandler(repo)

	user, err := h.Handle(ctx, command.EnsureAdminCommand{})
	require.NoError(t, err)
	assert.Nil(t, user)

	admin, err := h.Handle(ctx, command.EnsureAdminCommand{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	again, err := h.Handle(ctx, command.EnsureAdminCommand{Username: "admin", Password: "changed1"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.True(t, auth.CheckPassword(again.Password, "admin123"))
}

func TestEnsureAdmin_PromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	existing, err := command.NewRegisterUserHandler(repo).Handle(ctx, command.RegisterUserCommand{Username: "dave", Password: "hunter22"})
	require.NoError(t, err)

	promoted, err := command.NewEnsureAdminHandler(repo).Handle(ctx, command.EnsureAdminCommand{Username: "dave", Password: "ignored1"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, promoted.ID)

	stored, err := repo.FindByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}
