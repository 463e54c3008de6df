package repository

import (
	"context"
	"sync"
	"time"

	"kanban/internal/domain"

	"github.com/google/uuid"
)

// MemoryUserRepository keeps users in process memory. It backs
// STORE_DRIVER=memory and the handler tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
		// google_id is unique in the other stores too
		if u.GoogleID != "" && existing.GoogleID == u.GoogleID {
			return domain.ErrUsernameTaken
		}
	}

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) GetByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	if googleID == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.find(func(u domain.User) bool { return u.GoogleID == googleID })
}

func (r *MemoryUserRepository) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *MemoryUserRepository) Ping(context.Context) error { return nil }

// MemoryTaskRepository keeps tasks in insertion order.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]domain.Task
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[string]domain.Task)}
}

func (r *MemoryTaskRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []domain.Task{}
	for _, id := range r.order {
		t := r.tasks[id]
		if t.HasOwner(ownerID) {
			res = append(res, cloneTask(t))
		}
	}
	return res, nil
}

func (r *MemoryTaskRepository) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = uuid.NewString()
	r.tasks[t.ID] = cloneTask(*t)
	r.order = append(r.order, t.ID)
	return nil
}

func (r *MemoryTaskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	c := cloneTask(t)
	return &c, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, id string, patch domain.TaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if patch.Text != nil {
		t.Text = *patch.Text
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	r.tasks[id] = t
	return nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryTaskRepository) AddOwner(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if t.HasOwner(ownerID) {
		return domain.ErrAlreadyShared
	}
	t.Owners = append(append([]string(nil), t.Owners...), ownerID)
	r.tasks[id] = t
	return nil
}

func cloneTask(t domain.Task) domain.Task {
	t.Owners = append([]string{}, t.Owners...)
	return t
}
