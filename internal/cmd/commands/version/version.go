package version

import (
	"github.com/asencis/datacite-go/internal/cmd/base"
	buildversion "github.com/asencis/datacite-go/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the CLI version"
}

func (c *Command) Help() string {
	return `Usage: datacite version

  This command prints the version of this datacite build.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(buildversion.Version)
	return 0
}
