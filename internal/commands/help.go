package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpile/internal/config"
	"taskpile/internal/exitcode"
	"taskpile/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskpile help" }
func (c *HelpCmd) NeedsToken() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskpile create [common flags] [--field <name>=<value>]... [--create-options] <list-id> <json-file>
  taskpile create [common flags] --xlsx <file> [--sheets <a,b>] [--no-link-stories] <list-id>
  taskpile delete [common flags] [--confirm DELETE] <list-id>
  taskpile fields [common flags] [--xlsx <file>] <list-id>
  taskpile serve [common flags] [--host <host>] [--port <port>]
  taskpile help
  taskpile version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

The API token is read from CLICKUP_API_TOKEN (or API_TOKEN), including
from a .env file in the working directory. Default custom field values
and required-field checks are read from config.json in the config
directory.
`
