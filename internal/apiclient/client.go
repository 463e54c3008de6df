// Package apiclient talks to the kanban HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kanban/internal/domain"
)

const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *APIError) HTTPStatus() int { return e.StatusCode }

// IsUnauthorized reports whether the token was missing, expired or forged.
// A 403 for a task the caller does not own is not an auth failure.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		(e.StatusCode == http.StatusForbidden && e.Message == "Invalid or expired token")
}

// LoginResult is what the login endpoints return.
type LoginResult struct {
	Token    string
	Username string
	Email    string
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Client) Signup(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/signup", "", body, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var resp struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &LoginResult{Token: resp.Token, Username: resp.Username}, nil
}

// GoogleLogin exchanges a Google ID token for a board session.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*LoginResult, error) {
	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	body := map[string]string{"credential": credential}
	if err := c.do(ctx, http.MethodPost, "/api/auth/google", "", body, &resp); err != nil {
		return nil, err
	}
	return &LoginResult{Token: resp.Token, Username: resp.User.Username, Email: resp.User.Email}, nil
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask returns the new task id.
func (c *Client) CreateTask(ctx context.Context, token, text string) (string, error) {
	var id string
	if err := c.do(ctx, http.MethodPost, "/api/tasks", token, map[string]string{"text": text}, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) UpdateTask(ctx context.Context, token, id string, patch domain.TaskPatch) error {
	body := map[string]any{}
	if patch.Text != nil {
		body["text"] = *patch.Text
	}
	if patch.Status != nil {
		body["status"] = string(*patch.Status)
	}
	return c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), token, body, nil)
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) ShareTask(ctx context.Context, token, id, toUsername string) error {
	body := map[string]string{"toUsername": toUsername}
	return c.do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/share", token, body, nil)
}

// do sends one request. A JSON body is decoded into out; a text body is
// stored when out is a *string.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *string:
		*dst = string(data)
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
		return nil
	}
}

// errorMessage prefers the {"error": ...} field, then the raw text.
func errorMessage(data []byte, fallback string) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return e.Error
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return msg
	}
	return fallback
}
