package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"kanban/internal/clientconfig"
	"kanban/internal/exitcode"
)

// Version is the client version. Set at build time.
var Version = "0.1.0"

func init() {
	Register(&HelpCmd{})
	Register(&VersionCmd{})
}

type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "kanban help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  kanban                                   Show the board
  kanban board                             Show the board
  kanban add <text...>                     Add a task to To-Do
  kanban move <ref> <todo|inProgress|done> Move a card
  kanban rm <ref>                          Delete a card
  kanban share <ref> <username>            Share a card with another user
  kanban watch                             Show the board and follow changes
  kanban signup [--password <pw>] <username>
  kanban login [--password <pw>] <username>
  kanban google-login
  kanban logout
  kanban help
  kanban version

A <ref> is the card number shown by 'kanban board' or a card id prefix.

Common flags:
  --config <dir>   Override config directory
  --server <url>   API base URL (default $KANBAN_API_URL or http://localhost:5000)
  --quiet          Suppress informational output
`

type VersionCmd struct{}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "kanban version" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *VersionCmd) Run(ctx context.Context, cfg *clientconfig.Config, api API, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "kanban %s\n", Version)
	return exitcode.Success
}
