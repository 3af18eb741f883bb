package doi

import (
	"github.com/mitchellh/cli"

	"github.com/asencis/datacite-go/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage DOI registrations"
}

func (c *Command) Help() string {
	return `Usage: datacite doi <subcommand> [options] [args]

  This command groups subcommands for registering, inspecting, and
  removing DOIs through the DataCite REST API.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
