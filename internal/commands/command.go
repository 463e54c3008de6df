// Package commands implements the kanban client commands.
package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"kanban/internal/apiclient"
	"kanban/internal/board"
	"kanban/internal/clientconfig"
	"kanban/internal/domain"
	"kanban/internal/exitcode"
	"kanban/internal/session"
)

// API is everything the commands need from the server.
type API interface {
	board.API
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*apiclient.LoginResult, error)
	GoogleLogin(ctx context.Context, credential string) (*apiclient.LoginResult, error)
	Subscribe(ctx context.Context, token string, fn func(domain.TaskEvent)) error
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored session.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command and returns the exit code. api is nil for
	// help and version.
	Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int
}

func newController(cfg *clientconfig.Config, api API) (*board.Controller, *session.FileStore) {
	sessions := session.NewFileStore(cfg.SessionPath())
	return board.NewController(api, sessions, nil), sessions
}

// loadBoard fetches the board before a command that refers to cards.
func loadBoard(ctx context.Context, ctrl *board.Controller, errOut io.Writer) (int, bool) {
	if err := ctrl.Load(ctx); err != nil {
		return report(errOut, err), false
	}
	return exitcode.Success, true
}

func resolveCard(ctrl *board.Controller, ref string, errOut io.Writer) (board.Card, domain.Status, bool) {
	card, col, err := ctrl.Store().Resolve(ref)
	if err != nil {
		switch {
		case errors.Is(err, board.ErrAmbiguousRef):
			fmt.Fprintf(errOut, "error: ambiguous card reference: %s\n", ref)
		default:
			fmt.Fprintf(errOut, "error: card not found: %s\n", ref)
		}
		return board.Card{}, "", false
	}
	return card, col, true
}

const emptyTaskMessage = "Task cannot be empty."

// report prints err and maps it to an exit code.
func report(errOut io.Writer, err error) int {
	var apiErr *apiclient.APIError

	switch {
	case errors.Is(err, board.ErrLoggedOut):
		fmt.Fprintln(errOut, "error: not logged in (run: kanban login)")
		return exitcode.AuthError
	case errors.Is(err, board.ErrEmptyTask):
		fmt.Fprintf(errOut, "error: %s\n", emptyTaskMessage)
		return exitcode.UserError
	case errors.Is(err, board.ErrCardNotFound), errors.Is(err, board.ErrAmbiguousRef):
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	case errors.Is(err, domain.ErrInvalidStatus):
		fmt.Fprintln(errOut, "error: status must be one of: todo, inProgress, done")
		return exitcode.UserError
	case errors.As(err, &apiErr):
		if apiErr.IsUnauthorized() {
			fmt.Fprintf(errOut, "error: auth error: %s\n", apiErr.Message)
			return exitcode.AuthError
		}
		if apiErr.StatusCode >= http.StatusInternalServerError {
			fmt.Fprintf(errOut, "error: backend error: %s\n", apiErr.Message)
			return exitcode.BackendError
		}
		fmt.Fprintf(errOut, "error: %s\n", apiErr.Message)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// readPassword prompts on errOut and reads one line from cfg.Stdin.
func readPassword(cfg *clientconfig.Config, errOut io.Writer) (string, error) {
	if cfg.Stdin == nil {
		return "", errors.New("password required")
	}
	fmt.Fprint(errOut, "Password: ")
	sc := bufio.NewScanner(cfg.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("password required")
	}
	return strings.TrimRight(sc.Text(), "\r\n"), nil
}

func printOK(cfg *clientconfig.Config, out io.Writer, format string, args ...any) {
	if cfg.Quiet {
		return
	}
	fmt.Fprintf(out, format+"\n", args...)
}
