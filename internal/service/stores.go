package service

import (
	"context"

	"kanban/internal/domain"
)

// UserStore is implemented by the mongo, postgres and memory repositories.
// Lookups return domain.ErrUserNotFound; Create returns
// domain.ErrUsernameTaken on a duplicate username.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
}

// TaskStore persists tasks. Missing ids yield domain.ErrTaskNotFound and
// AddOwner yields domain.ErrAlreadyShared when the owner is present.
type TaskStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) error
	Delete(ctx context.Context, id string) error
	AddOwner(ctx context.Context, id, ownerID string) error
}

// Notifier receives task events after a successful write.
type Notifier interface {
	Publish(userIDs []string, ev domain.TaskEvent)
}
