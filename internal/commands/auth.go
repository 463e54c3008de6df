package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"kanban/internal/clientconfig"
	"kanban/internal/exitcode"
	"kanban/internal/session"
)

func init() {
	Register(&SignupCmd{})
	Register(&LoginCmd{})
	Register(&LogoutCmd{})
}

// SignupCmd creates an account. It does not log in.
type SignupCmd struct {
	password string
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return nil }
func (c *SignupCmd) Synopsis() string  { return "Create an account" }
func (c *SignupCmd) Usage() string     { return "kanban signup [--password <pw>] <username>" }
func (c *SignupCmd) NeedsAuth() bool   { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	username, password, code, ok := credentials(cfg, c.password, args, errOut)
	if !ok {
		return code
	}

	if err := api.Signup(ctx, username, password); err != nil {
		return report(errOut, err)
	}
	printOK(cfg, out, "Signup successful")
	return exitcode.Success
}

// LoginCmd stores a session for username.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in with username and password" }
func (c *LoginCmd) Usage() string     { return "kanban login [--password <pw>] <username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	username, password, code, ok := credentials(cfg, c.password, args, errOut)
	if !ok {
		return code
	}

	res, err := api.Login(ctx, username, password)
	if err != nil {
		return report(errOut, err)
	}
	return saveSession(cfg, res.Token, res.Username, out, errOut)
}

// LogoutCmd removes the stored session.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored session" }
func (c *LogoutCmd) Usage() string     { return "kanban logout" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	if !cfg.HasSession() {
		printOK(cfg, out, "not logged in")
		return exitcode.Success
	}

	ctrl, _ := newController(cfg, api)
	if err := ctrl.Logout(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	printOK(cfg, out, "ok")
	return exitcode.Success
}

func credentials(cfg *clientconfig.Config, password string, args []string, errOut io.Writer) (string, string, int, bool) {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(errOut, "error: username required")
		return "", "", exitcode.UserError, false
	}
	if password == "" {
		pw, err := readPassword(cfg, errOut)
		if err != nil || pw == "" {
			fmt.Fprintln(errOut, "error: password required")
			return "", "", exitcode.UserError, false
		}
		password = pw
	}
	return args[0], password, exitcode.Success, true
}

func saveSession(cfg *clientconfig.Config, token, username string, out, errOut io.Writer) int {
	store := session.NewFileStore(cfg.SessionPath())
	if err := store.Save(&session.Session{Token: token, Username: username, Server: cfg.ServerURL}); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}
	printOK(cfg, out, "Logged in as: %s", username)
	return exitcode.Success
}
