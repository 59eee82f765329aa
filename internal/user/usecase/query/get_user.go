package query

import (
	"context"
	"fmt"

	"github.com/tair/smart-inventory/internal/user/domain"
)

// GetUserQuery represents the query to get a user by ID
type GetUserQuery struct {
	ID uint
}

// GetUserHandler handles get user query
type GetUserHandler struct {
	repo domain.UserRepository
}

// NewGetUserHandler creates a new get user handler
func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(ctx context.Context, query GetUserQuery) (*domain.User, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("%w: invalid user id", domain.ErrValidation)
	}
	return h.repo.FindByID(ctx, query.ID)
}
