package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"kanban/internal/clientconfig"
	"kanban/internal/domain"
	"kanban/internal/exitcode"
	"kanban/internal/output"
)

func init() {
	Register(&BoardCmd{})
	Register(&AddCmd{})
	Register(&MoveCmd{})
	Register(&RmCmd{})
	Register(&ShareCmd{})
}

// BoardCmd prints the three columns.
type BoardCmd struct{}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return []string{"ls"} }
func (c *BoardCmd) Synopsis() string  { return "Show the board" }
func (c *BoardCmd) Usage() string     { return "kanban [board]" }
func (c *BoardCmd) NeedsAuth() bool   { return true }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	ctrl, sessions := newController(cfg, api)
	if code, ok := loadBoard(ctx, ctrl, errOut); !ok {
		return code
	}

	username := ""
	if sess, err := sessions.Load(); err == nil {
		username = sess.Username
	}
	output.RenderBoard(out, username, ctrl.Store().State())
	return exitcode.Success
}

// AddCmd creates a task in To-Do.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Add a task to To-Do" }
func (c *AddCmd) Usage() string     { return "kanban add <text...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	ctrl, _ := newController(cfg, api)

	id, err := ctrl.AddTask(ctx, strings.Join(args, " "))
	if err != nil {
		return report(errOut, err)
	}
	printOK(cfg, out, "ok %s", id)
	return exitcode.Success
}

// MoveCmd changes the column of a card.
type MoveCmd struct{}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a card to another column" }
func (c *MoveCmd) Usage() string     { return "kanban move <ref> <todo|inProgress|done>" }
func (c *MoveCmd) NeedsAuth() bool   { return true }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintf(errOut, "error: usage: %s\n", c.Usage())
		return exitcode.UserError
	}
	to, err := domain.ParseStatus(args[1])
	if err != nil {
		return report(errOut, err)
	}

	ctrl, _ := newController(cfg, api)
	if code, ok := loadBoard(ctx, ctrl, errOut); !ok {
		return code
	}
	card, _, ok := resolveCard(ctrl, args[0], errOut)
	if !ok {
		return exitcode.UserError
	}

	if err := ctrl.MoveTask(ctx, card.ID, to); err != nil {
		return report(errOut, err)
	}
	printOK(cfg, out, "ok")
	return exitcode.Success
}

// RmCmd deletes a card.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a card" }
func (c *RmCmd) Usage() string     { return "kanban rm <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: card reference required")
		return exitcode.UserError
	}

	ctrl, _ := newController(cfg, api)
	if code, ok := loadBoard(ctx, ctrl, errOut); !ok {
		return code
	}
	card, _, ok := resolveCard(ctrl, args[0], errOut)
	if !ok {
		return exitcode.UserError
	}

	if err := ctrl.DeleteTask(ctx, card.ID); err != nil {
		return report(errOut, err)
	}
	printOK(cfg, out, "ok")
	return exitcode.Success
}

// ShareCmd adds another user as owner of a card.
type ShareCmd struct{}

func (c *ShareCmd) Name() string      { return "share" }
func (c *ShareCmd) Aliases() []string { return nil }
func (c *ShareCmd) Synopsis() string  { return "Share a card with another user" }
func (c *ShareCmd) Usage() string     { return "kanban share <ref> <username>" }
func (c *ShareCmd) NeedsAuth() bool   { return true }

func (c *ShareCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShareCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintf(errOut, "error: usage: %s\n", c.Usage())
		return exitcode.UserError
	}

	ctrl, _ := newController(cfg, api)
	if code, ok := loadBoard(ctx, ctrl, errOut); !ok {
		return code
	}
	card, _, ok := resolveCard(ctrl, args[0], errOut)
	if !ok {
		return exitcode.UserError
	}

	if err := ctrl.ShareTask(ctx, card.ID, args[1]); err != nil {
		return report(errOut, err)
	}
	printOK(cfg, out, "Task shared")
	return exitcode.Success
}

