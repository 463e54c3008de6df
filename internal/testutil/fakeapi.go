// Package testutil provides test doubles for the client packages.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"kanban/internal/apiclient"
	"kanban/internal/domain"
)

// FakeAPI is an in-memory stand-in for the server. Tokens are
// "token-<username>". Errors mirror the server's status codes and messages.
type FakeAPI struct {
	mu        sync.Mutex
	passwords map[string]string
	tasks     []domain.Task
	nextID    int

	// Events are delivered by Subscribe, which then returns.
	Events []domain.TaskEvent

	// Error injection
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	ShareErr  error
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{passwords: make(map[string]string)}
}

func Token(username string) string { return "token-" + username }

func apiErr(status int, msg string) error {
	return &apiclient.APIError{StatusCode: status, Message: msg}
}

// AddUser registers a user directly.
func (f *FakeAPI) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[username] = password
}

// AddTask stores a task owned by owners and returns its id.
func (f *FakeAPI) AddTask(text string, status domain.Status, owners ...string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(text, status, owners)
}

// Tasks returns a copy of every stored task.
func (f *FakeAPI) Tasks() []domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Task, len(f.tasks))
	for i, t := range f.tasks {
		t.Owners = append([]string(nil), t.Owners...)
		out[i] = t
	}
	return out
}

func (f *FakeAPI) addLocked(text string, status domain.Status, owners []string) string {
	f.nextID++
	id := fmt.Sprintf("task%02d", f.nextID)
	f.tasks = append(f.tasks, domain.Task{ID: id, Text: text, Status: status, Owners: owners})
	return id
}

func (f *FakeAPI) Signup(_ context.Context, username, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if username == "" || password == "" {
		return apiErr(http.StatusBadRequest, "Username and password required")
	}
	if _, ok := f.passwords[username]; ok {
		return apiErr(http.StatusBadRequest, "Username already exists")
	}
	f.passwords[username] = password
	return nil
}

func (f *FakeAPI) Login(_ context.Context, username, password string) (*apiclient.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.passwords[username]; !ok || pw != password {
		return nil, apiErr(http.StatusBadRequest, "Invalid credentials")
	}
	return &apiclient.LoginResult{Token: Token(username), Username: username}, nil
}

func (f *FakeAPI) GoogleLogin(_ context.Context, credential string) (*apiclient.LoginResult, error) {
	if credential == "" {
		return nil, apiErr(http.StatusBadRequest, "Missing credential")
	}
	return nil, apiErr(http.StatusUnauthorized, "Invalid Google token")
}

func (f *FakeAPI) user(token string) (string, error) {
	name, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return "", apiErr(http.StatusForbidden, "Invalid or expired token")
	}
	if _, exists := f.passwords[name]; !exists {
		return "", apiErr(http.StatusNotFound, "User not found")
	}
	return name, nil
}

func (f *FakeAPI) ListTasks(_ context.Context, token string) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	user, err := f.user(token)
	if err != nil {
		return nil, err
	}
	out := []domain.Task{}
	for _, t := range f.tasks {
		if t.HasOwner(user) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *FakeAPI) CreateTask(_ context.Context, token, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	user, err := f.user(token)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", apiErr(http.StatusBadRequest, "Task text required")
	}
	return f.addLocked(text, domain.StatusTodo, []string{user}), nil
}

func (f *FakeAPI) find(user, id string) (*domain.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		if !f.tasks[i].HasOwner(user) {
			return nil, apiErr(http.StatusForbidden, "Not an owner of this task")
		}
		return &f.tasks[i], nil
	}
	return nil, apiErr(http.StatusNotFound, "Task not found")
}

func (f *FakeAPI) UpdateTask(_ context.Context, token, id string, patch domain.TaskPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	user, err := f.user(token)
	if err != nil {
		return err
	}
	t, err := f.find(user, id)
	if err != nil {
		return err
	}
	if patch.Text != nil {
		t.Text = *patch.Text
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	return nil
}

func (f *FakeAPI) DeleteTask(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	user, err := f.user(token)
	if err != nil {
		return err
	}
	if _, err := f.find(user, id); err != nil {
		return err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (f *FakeAPI) ShareTask(_ context.Context, token, id, toUsername string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ShareErr != nil {
		return f.ShareErr
	}
	user, err := f.user(token)
	if err != nil {
		return err
	}
	if _, ok := f.passwords[toUsername]; !ok {
		return apiErr(http.StatusNotFound, "User not found")
	}
	t, err := f.find(user, id)
	if err != nil {
		return err
	}
	if t.HasOwner(toUsername) {
		return apiErr(http.StatusBadRequest, "Task already shared with this user")
	}
	t.Owners = append(t.Owners, toUsername)
	return nil
}

// Subscribe delivers Events in order and returns.
func (f *FakeAPI) Subscribe(ctx context.Context, token string, fn func(domain.TaskEvent)) error {
	f.mu.Lock()
	_, err := f.user(token)
	events := append([]domain.TaskEvent(nil), f.Events...)
	f.mu.Unlock()
	if err != nil {
		return err
	}

	for _, ev := range events {
		if ctx.Err() != nil {
			return nil
		}
		fn(ev)
	}
	return nil
}
