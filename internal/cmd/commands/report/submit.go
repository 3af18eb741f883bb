package report

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/asencis/datacite-go/internal/cmd/base"
	"github.com/asencis/datacite-go/internal/config"
	"github.com/asencis/datacite-go/pkg/reports"
)

type SubmitCommand struct {
	*base.Command

	flagConfig     string
	flagReportsURL string
	flagID         string
	flagFile       string
}

func (c *SubmitCommand) Synopsis() string {
	return "Submit a usage report to the hub"
}

func (c *SubmitCommand) Help() string {
	return `Usage: datacite reports submit -id <report-id> -file <report-file>

  This command gzip-compresses a COUNTER usage report and uploads it to
  the usage reports hub under the given report ID. Rejected uploads are
  retried on a fixed schedule before the failure is reported.` +
		c.Flags().Help()
}

func (c *SubmitCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("submit", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "Path to the configuration file",
	)
	f.StringVar(
		&c.flagReportsURL, "reports-url", "",
		"[DATACITE_REPORTS_URL] Usage reports hub base URL",
	)
	f.StringVar(
		&c.flagID, "id", "",
		"(Required) Report ID assigned by the hub, e.g. 5a6a8f18-b935-47b6-8577-6c66919a4e44",
	)
	f.StringVar(
		&c.flagFile, "file", "", "(Required) Path to the usage report file",
	)

	return f
}

func (c *SubmitCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	// Parse flags.
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	// Validate flags.
	if c.flagID == "" {
		ui.Error("id flag is required")
		return 1
	}
	if c.flagFile == "" {
		ui.Error("file flag is required")
		return 1
	}

	id, err := reports.ParseReportID(c.flagID)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	submitterCfg := reports.SubmitterConfig{
		BaseURL: c.flagReportsURL,
		Logger:  logger,
	}

	if c.flagConfig != "" {
		cfg, err := config.NewConfig(c.flagConfig)
		if err != nil {
			ui.Error(fmt.Sprintf("error parsing config file: %v", err))
			return 1
		}
		if cfg.Reports != nil {
			if submitterCfg.BaseURL == "" {
				submitterCfg.BaseURL = cfg.Reports.BaseURL
			}
			submitterCfg.Token = cfg.Reports.Token

			interval, err := cfg.Reports.ParseInterval()
			if err != nil {
				ui.Error(err.Error())
				return 1
			}
			if cfg.Reports.MaxAttempts > 0 || interval > 0 {
				retry := reports.DefaultRetryPolicy()
				if cfg.Reports.MaxAttempts > 0 {
					retry.MaxAttempts = cfg.Reports.MaxAttempts
				}
				if interval > 0 {
					retry.Interval = interval
				}
				submitterCfg.Retry = retry
			}
		}
	}

	if val, ok := os.LookupEnv("DATACITE_REPORTS_URL"); ok && submitterCfg.BaseURL == "" {
		submitterCfg.BaseURL = val
	}
	if val, ok := os.LookupEnv("DATACITE_REPORTS_TOKEN"); ok && submitterCfg.Token == "" {
		submitterCfg.Token = val
	}

	submitter, err := reports.NewSubmitter(submitterCfg)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating submitter: %v", err))
		return 1
	}

	resp, err := submitter.Submit(context.Background(), id, c.flagFile)
	if err != nil {
		ui.Error(fmt.Sprintf("error submitting report: %v", err))
		return 1
	}
	if !resp.OK() {
		ui.Error(fmt.Sprintf("report %s was rejected: %s", id, resp.Status))
		for _, apiErr := range resp.Errors() {
			ui.Error("  " + apiErr.String())
		}
		return 1
	}

	ui.Output(fmt.Sprintf("Submitted report %s", id))
	return 0
}
