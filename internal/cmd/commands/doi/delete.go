package doi

import (
	"context"
	"flag"
	"fmt"

	"github.com/asencis/datacite-go/internal/cmd/base"
)

type DeleteCommand struct {
	*base.Command

	flagConfig string
	flagAPIURL string
	flagDOI    string
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete a draft DOI"
}

func (c *DeleteCommand) Help() string {
	return `Usage: datacite doi delete -doi <doi>

  This command deletes a DOI. The API only permits deleting draft DOIs;
  findable and registered DOIs are refused and the refusal is reported.` +
		c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("delete", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "Path to the configuration file",
	)
	f.StringVar(
		&c.flagAPIURL, "api-url", "",
		"[DATACITE_API_URL] DataCite REST API base URL",
	)
	f.StringVar(
		&c.flagDOI, "doi", "", "(Required) DOI to delete, e.g. 10.5438/0012",
	)

	return f
}

func (c *DeleteCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	// Parse flags.
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	// Validate flags.
	if c.flagDOI == "" {
		ui.Error("doi flag is required")
		return 1
	}

	client, err := newAPIClient(logger, c.flagConfig, c.flagAPIURL)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating API client: %v", err))
		return 1
	}

	deleted, resp, err := client.Delete(context.Background(), c.flagDOI)
	if err != nil {
		ui.Error(fmt.Sprintf("error deleting DOI: %v", err))
		return 1
	}
	if !deleted {
		ui.Error(fmt.Sprintf("DOI %s was not deleted: %s", c.flagDOI, resp.Status))
		for _, apiErr := range resp.Errors() {
			ui.Error("  " + apiErr.String())
		}
		return 1
	}

	ui.Output(fmt.Sprintf("Deleted DOI %s", c.flagDOI))
	return 0
}
