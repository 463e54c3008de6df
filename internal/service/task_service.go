package service

import (
	"context"
	"strings"

	"kanban/internal/domain"
	"kanban/internal/logger"
)

type TaskService struct {
	tasks            TaskStore
	users            UserStore
	events           Notifier
	enforceOwnership bool
}

func NewTaskService(tasks TaskStore, users UserStore, enforceOwnership bool) *TaskService {
	return &TaskService{tasks: tasks, users: users, enforceOwnership: enforceOwnership}
}

// SetNotifier wires the websocket hub. A nil notifier disables events.
func (s *TaskService) SetNotifier(n Notifier) {
	s.events = n
}

// List returns every task the caller owns.
func (s *TaskService) List(ctx context.Context, userID string) ([]domain.Task, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.tasks.ListByOwner(ctx, userID)
}

// Create adds a todo task owned only by the caller and returns its id.
func (s *TaskService) Create(ctx context.Context, userID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyText
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", err
	}

	t := &domain.Task{Text: text, Status: domain.StatusTodo, Owners: []string{userID}}
	if err := s.tasks.Create(ctx, t); err != nil {
		return "", err
	}

	logger.WithContext(ctx).Info("task created", "task_id", t.ID, "user_id", userID)
	s.publish(t.Owners, domain.EventTaskCreated, t.ID)
	return t.ID, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, patch domain.TaskPatch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.ErrInvalidStatus
	}

	t, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	// an empty patch writes nothing and notifies nobody
	if patch.Empty() {
		return nil
	}
	if err := s.tasks.Update(ctx, id, patch); err != nil {
		return err
	}

	s.publish(t.Owners, domain.EventTaskUpdated, id)
	return nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	t, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	logger.WithContext(ctx).Info("task deleted", "task_id", id, "user_id", userID)
	s.publish(t.Owners, domain.EventTaskDeleted, id)
	return nil
}

// Share adds the user named toUsername to the task owners.
func (s *TaskService) Share(ctx context.Context, userID, id, toUsername string) error {
	if toUsername == "" {
		return domain.ErrMissingShareTarget
	}

	target, err := s.users.GetByUsername(ctx, toUsername)
	if err != nil {
		return err
	}

	t, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if t.HasOwner(target.ID) {
		return domain.ErrAlreadyShared
	}
	if err := s.tasks.AddOwner(ctx, id, target.ID); err != nil {
		return err
	}

	logger.WithContext(ctx).Info("task shared", "task_id", id, "user_id", userID, "target_id", target.ID)
	s.publish(append(t.Owners, target.ID), domain.EventTaskShared, id)
	return nil
}

// load fetches the task and applies the ownership rule.
func (s *TaskService) load(ctx context.Context, userID, id string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.enforceOwnership && !t.HasOwner(userID) {
		return nil, domain.ErrNotOwner
	}
	return t, nil
}

func (s *TaskService) publish(owners []string, eventType, taskID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(owners, domain.TaskEvent{Type: eventType, TaskID: taskID})
}
