package doi

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/asencis/datacite-go/internal/cmd/base"
)

type GetCommand struct {
	*base.Command

	flagConfig string
	flagAPIURL string
	flagDOI    string
}

func (c *GetCommand) Synopsis() string {
	return "Fetch the record of a registered DOI"
}

func (c *GetCommand) Help() string {
	return `Usage: datacite doi get -doi <doi>

  This command fetches the JSONAPI record of a DOI and prints it. The
  command fails when the DOI is not registered.` +
		c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("get", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "Path to the configuration file",
	)
	f.StringVar(
		&c.flagAPIURL, "api-url", "",
		"[DATACITE_API_URL] DataCite REST API base URL",
	)
	f.StringVar(
		&c.flagDOI, "doi", "", "(Required) DOI to fetch, e.g. 10.5438/0012",
	)

	return f
}

func (c *GetCommand) Run(args []string) int {
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

	resp, err := client.Retrieve(context.Background(), c.flagDOI)
	if err != nil {
		ui.Error(fmt.Sprintf("error fetching DOI: %v", err))
		return 1
	}
	if resp == nil {
		ui.Error(fmt.Sprintf("DOI %s was not found", c.flagDOI))
		return 1
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Body, "", "  "); err != nil {
		// Not JSON; print it as it came
		ui.Output(string(resp.Body))
		return 0
	}
	ui.Output(pretty.String())

	return 0
}
