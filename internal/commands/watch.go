package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"kanban/internal/board"
	"kanban/internal/clientconfig"
	"kanban/internal/domain"
	"kanban/internal/exitcode"
	"kanban/internal/output"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd redraws the board whenever the server reports a change to one
// of the caller's tasks. It runs until interrupted.
type WatchCmd struct{}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Show the board and follow live changes" }
func (c *WatchCmd) Usage() string     { return "kanban watch" }
func (c *WatchCmd) NeedsAuth() bool   { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WatchCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	ctrl, sessions := newController(cfg, api)
	sess, err := sessions.Load()
	if err != nil {
		return report(errOut, board.ErrLoggedOut)
	}

	ctrl.Store().Subscribe(func(st board.State) {
		output.RenderBoard(out, sess.Username, st)
	})
	if code, ok := loadBoard(ctx, ctrl, errOut); !ok {
		return code
	}

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// fn runs on the Subscribe goroutine
	var reloadErr error
	err = api.Subscribe(subCtx, sess.Token, func(ev domain.TaskEvent) {
		if !cfg.Quiet {
			fmt.Fprintf(errOut, "%s %s\n", ev.Type, ev.TaskID)
		}
		if err := ctrl.Load(subCtx); err != nil && reloadErr == nil {
			reloadErr = err
			cancel()
		}
	})
	if reloadErr != nil {
		return report(errOut, reloadErr)
	}
	if ctx.Err() != nil {
		return exitcode.Success
	}
	if err != nil {
		return report(errOut, err)
	}
	return exitcode.Success
}
