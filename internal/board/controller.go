package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kanban/internal/domain"
	"kanban/internal/session"
)

var (
	// ErrLoggedOut means the session was missing or rejected and has been
	// cleared.
	ErrLoggedOut = errors.New("logged out")

	ErrEmptyTask    = errors.New("empty task text")
	ErrCardNotFound = errors.New("card not found")
	ErrAmbiguousRef = errors.New("ambiguous card reference")
)

// API is the part of the backend the board talks to.
type API interface {
	ListTasks(ctx context.Context, token string) ([]domain.Task, error)
	CreateTask(ctx context.Context, token, text string) (string, error)
	UpdateTask(ctx context.Context, token, id string, patch domain.TaskPatch) error
	DeleteTask(ctx context.Context, token, id string) error
	ShareTask(ctx context.Context, token, id, toUsername string) error
}

// SessionStore persists the login between runs.
type SessionStore interface {
	Load() (*session.Session, error)
	Clear() error
}

// statusError is implemented by API errors that carry an HTTP response.
type statusError interface {
	HTTPStatus() int
	IsUnauthorized() bool
}

// Controller applies user intents: each one updates the local store and
// issues the matching API call. Local changes are never rolled back.
type Controller struct {
	api      API
	sessions SessionStore
	store    *Store
}

func NewController(api API, sessions SessionStore, store *Store) *Controller {
	if store == nil {
		store = NewStore()
	}
	return &Controller{api: api, sessions: sessions, store: store}
}

func (c *Controller) Store() *Store { return c.store }

// Load replaces the board with the server's view. Any rejection by the
// server ends the session.
func (c *Controller) Load(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	tasks, err := c.api.ListTasks(ctx, token)
	if err != nil {
		var se statusError
		if errors.As(err, &se) {
			return c.forceLogout(err)
		}
		return err
	}

	c.store.Dispatch(Load(GroupTasks(tasks)))
	return nil
}

// AddTask creates a task, shows it in todo, then reloads the board.
func (c *Controller) AddTask(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTask
	}
	token, err := c.token()
	if err != nil {
		return "", err
	}

	id, err := c.api.CreateTask(ctx, token, text)
	if err != nil {
		return "", c.checkAuth(err)
	}

	c.store.Dispatch(Add(Card{ID: id, Text: text}))
	if err := c.Load(ctx); err != nil {
		return id, err
	}
	return id, nil
}

// MoveTask moves the card locally first and then sends the new status.
func (c *Controller) MoveTask(ctx context.Context, cardID string, to domain.Status) error {
	if !to.Valid() {
		return domain.ErrInvalidStatus
	}
	token, err := c.token()
	if err != nil {
		return err
	}

	card, from, ok := c.store.State().Find(cardID)
	if !ok {
		return ErrCardNotFound
	}
	if from == to {
		return nil
	}

	c.store.Dispatch(Move(card, from, to))
	if err := c.api.UpdateTask(ctx, token, cardID, domain.TaskPatch{Status: &to}); err != nil {
		return c.checkAuth(err)
	}
	return nil
}

// DeleteTask drops the card locally and then deletes it on the server.
func (c *Controller) DeleteTask(ctx context.Context, cardID string) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	_, from, ok := c.store.State().Find(cardID)
	if !ok {
		return ErrCardNotFound
	}

	c.store.Dispatch(Delete(cardID, from))
	if err := c.api.DeleteTask(ctx, token, cardID); err != nil {
		return c.checkAuth(err)
	}
	return nil
}

func (c *Controller) ShareTask(ctx context.Context, cardID, toUsername string) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	if err := c.api.ShareTask(ctx, token, cardID, toUsername); err != nil {
		return c.checkAuth(err)
	}
	return nil
}

func (c *Controller) Logout() error {
	c.store.Dispatch(Load(State{}))
	return c.sessions.Clear()
}

func (c *Controller) token() (string, error) {
	sess, err := c.sessions.Load()
	if err != nil || sess == nil || sess.Token == "" {
		return "", c.forceLogout(err)
	}
	return sess.Token, nil
}

// checkAuth ends the session when the server rejected the token.
func (c *Controller) checkAuth(err error) error {
	var se statusError
	if errors.As(err, &se) && se.IsUnauthorized() {
		return c.forceLogout(err)
	}
	return err
}

func (c *Controller) forceLogout(cause error) error {
	if err := c.Logout(); err != nil {
		return fmt.Errorf("%w: clear session: %v", ErrLoggedOut, err)
	}
	if cause != nil && !errors.Is(cause, session.ErrNoSession) {
		return fmt.Errorf("%w: %v", ErrLoggedOut, cause)
	}
	return ErrLoggedOut
}
