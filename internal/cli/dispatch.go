// Package cli parses the command line and dispatches to a command.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"kanban/internal/clientconfig"
	"kanban/internal/commands"
	"kanban/internal/exitcode"
	"kanban/internal/session"
)

// APIFactory builds the API client for a resolved config.
type APIFactory func(cfg *clientconfig.Config) (commands.API, error)

type Dispatcher struct {
	registry *commands.Registry
	factory  APIFactory

	// Stdin overrides the password input; nil means os.Stdin.
	Stdin io.Reader
}

func NewDispatcher(registry *commands.Registry, factory APIFactory) *Dispatcher {
	return &Dispatcher{registry: registry, factory: factory}
}

// Run parses arguments and dispatches to the named command, or to "board"
// when there are none. Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, "board", nil, out, errOut)
	}

	name := args[0]
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	return d.dispatch(ctx, name, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configDir, server string
	var quiet bool
	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&server, "server", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		msg := err.Error()
		switch {
		case strings.HasPrefix(msg, "flag provided but not defined: "):
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", strings.TrimPrefix(msg, "flag provided but not defined: "))
		case strings.HasPrefix(msg, "flag needs an argument: "):
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", strings.TrimPrefix(msg, "flag needs an argument: "))
		default:
			fmt.Fprintf(errOut, "error: %s\n", msg)
		}
		return exitcode.UserError
	}

	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") && positional[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	cfg := clientconfig.New(configDir, server)
	cfg.Quiet = quiet
	if d.Stdin != nil {
		cfg.Stdin = d.Stdin
	}
	// a session remembers the server it was created against
	if server == "" && os.Getenv(clientconfig.ServerEnv) == "" {
		if sess, err := session.NewFileStore(cfg.SessionPath()).Load(); err == nil && sess.Server != "" {
			cfg.ServerURL = sess.Server
		}
	}

	if cmd.NeedsAuth() && !cfg.HasSession() {
		fmt.Fprintln(errOut, "error: not logged in (run: kanban login)")
		return exitcode.AuthError
	}

	var api commands.API
	if d.factory != nil {
		var err error
		api, err = d.factory(cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	return cmd.Run(ctx, cfg, api, positional, out, errOut)
}
