package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/smart-inventory/internal/user/domain"
)

var tracer = otel.Tracer("user-repository")

// TracingUserRepository wraps a UserRepository with spans
type TracingUserRepository struct {
	next domain.UserRepository
}

// NewTracingUserRepository creates a new repository with tracing
func NewTracingUserRepository(next domain.UserRepository) *TracingUserRepository {
	return &TracingUserRepository{next: next}
}

func (r *TracingUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "repository.User.Create",
		trace.WithAttributes(attribute.String("user.username", user.Username)),
	)
	defer span.End()

	if err := r.next.Create(ctx, user); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))
	return nil
}

func (r *TracingUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.User.FindByID",
		trace.WithAttributes(attribute.Int("user.id", int(id))),
	)
	defer span.End()

	user, err := r.next.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return user, nil
}

func (r *TracingUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.User.FindByUsername",
		trace.WithAttributes(attribute.String("user.username", username)),
	)
	defer span.End()

	user, err := r.next.FindByUsername(ctx, username)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))
	return user, nil
}

func (r *TracingUserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "repository.User.Update",
		trace.WithAttributes(attribute.Int("user.id", int(user.ID))),
	)
	defer span.End()

	if err := r.next.Update(ctx, user); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// recordError marks the span failed. A missing user is an expected outcome.
func recordError(span trace.Span, err error) {
	span.RecordError(err)
	if errors.Is(err, domain.ErrUserNotFound) {
		return
	}
	span.SetStatus(codes.Error, err.Error())
}
