package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kanban/internal/apiclient"
	"kanban/internal/domain"
	kanbanhttp "kanban/internal/http"
	"kanban/internal/http/handlers"
	"kanban/internal/repository"
	"kanban/internal/service"
	"kanban/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewMemoryUserRepository()
	tasks := repository.NewMemoryTaskRepository()
	tokens := service.NewTokenIssuer("client-test", time.Hour)

	auth := service.NewAuthService(users, tokens, service.NewGoogleVerifier(""))
	auth.SetHashCost(bcrypt.MinCost)
	hub := ws.NewHub()
	taskSvc := service.NewTaskService(tasks, users, true)
	taskSvc.SetNotifier(hub)

	h := handlers.NewHandler(auth, taskSvc, tokens, users)
	r := kanbanhttp.NewRouter(h, handlers.NewHealthHandler(users, "memory", "test"), hub, kanbanhttp.RouteOptions{})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv
}

func login(t *testing.T, c *apiclient.Client, username string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.Signup(ctx, username, "secret"))
	res, err := c.Login(ctx, username, "secret")
	require.NoError(t, err)
	require.Equal(t, username, res.Username)
	return res.Token
}

func TestTaskLifecycle(t *testing.T) {
	c := apiclient.New(newServer(t).URL + "/")
	ctx := context.Background()
	alice := login(t, c, "alice")
	bob := login(t, c, "bob")

	id, err := c.CreateTask(ctx, alice, "buy milk")
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx, alice)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.Task{ID: id, Text: "buy milk", Status: domain.StatusTodo, Owners: tasks[0].Owners}, tasks[0])

	done := domain.StatusDone
	require.NoError(t, c.UpdateTask(ctx, alice, id, domain.TaskPatch{Status: &done}))
	require.NoError(t, c.ShareTask(ctx, alice, id, "bob"))

	tasks, err = c.ListTasks(ctx, bob)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.StatusDone, tasks[0].Status)

	require.NoError(t, c.DeleteTask(ctx, bob, id))
	tasks, err = c.ListTasks(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestErrorsCarryServerMessage(t *testing.T) {
	c := apiclient.New(newServer(t).URL)
	ctx := context.Background()
	login(t, c, "alice")

	err := c.Signup(ctx, "alice", "again")
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Username already exists", apiErr.Message)
	assert.False(t, apiErr.IsUnauthorized())

	_, err = c.ListTasks(ctx, "garbage")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.True(t, apiErr.IsUnauthorized())

	_, err = c.GoogleLogin(ctx, "not-a-google-token")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid Google token", apiErr.Message)
}

func TestNotOwnerIsNotUnauthorized(t *testing.T) {
	c := apiclient.New(newServer(t).URL)
	ctx := context.Background()
	alice := login(t, c, "alice")
	bob := login(t, c, "bob")

	id, err := c.CreateTask(ctx, alice, "private")
	require.NoError(t, err)

	err = c.DeleteTask(ctx, bob, id)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.False(t, apiErr.IsUnauthorized())
}

func TestSubscribeReceivesEvents(t *testing.T) {
	c := apiclient.New(newServer(t).URL)
	alice := login(t, c, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan domain.TaskEvent, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Subscribe(ctx, alice, func(ev domain.TaskEvent) { events <- ev })
	}()

	// the hub registers the connection asynchronously; keep creating until
	// an event arrives
	var got domain.TaskEvent
	require.Eventually(t, func() bool {
		if _, err := c.CreateTask(context.Background(), alice, "ping"); err != nil {
			return false
		}
		select {
		case got = <-events:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.EventTaskCreated, got.Type)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}

func TestSubscribeRejectsBadToken(t *testing.T) {
	c := apiclient.New(newServer(t).URL)

	err := c.Subscribe(context.Background(), "bad", func(domain.TaskEvent) {})
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
