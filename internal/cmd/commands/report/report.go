package report

import (
	"github.com/mitchellh/cli"

	"github.com/asencis/datacite-go/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage usage report submissions"
}

func (c *Command) Help() string {
	return `Usage: datacite reports <subcommand> [options] [args]

  This command groups subcommands for submitting COUNTER usage reports
  to the DataCite usage reports hub.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
