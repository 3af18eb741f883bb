package doi

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/asencis/datacite-go/internal/cmd/base"
	"github.com/asencis/datacite-go/pkg/datacite"
	"github.com/asencis/datacite-go/pkg/schema"
)

type ValidateCommand struct {
	*base.Command

	flagFile          string
	flagSchemaVersion string
	flagSchemaDir     string
}

func (c *ValidateCommand) Synopsis() string {
	return "Validate a metadata file against the kernel schema"
}

func (c *ValidateCommand) Help() string {
	return `Usage: datacite doi validate -file <metadata-file>

  This command checks a metadata file (JSON or YAML) against the
  DataCite kernel schema without talking to the API. Violations are
  printed one per line with the JSON pointer of the offending value.` +
		c.Flags().Help()
}

func (c *ValidateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("validate", flag.ExitOnError))

	f.StringVar(
		&c.flagFile, "file", "", "(Required) Path to the metadata file (JSON or YAML)",
	)
	f.StringVar(
		&c.flagSchemaVersion, "schema-version", string(schema.DefaultVersion),
		"Kernel schema version to validate against (4.2 or 4.3)",
	)
	f.StringVar(
		&c.flagSchemaDir, "schema-dir", "",
		"Directory of schema files replacing the embedded ones",
	)

	return f
}

func (c *ValidateCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	// Parse flags.
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	// Validate flags.
	if c.flagFile == "" {
		ui.Error("file flag is required")
		return 1
	}

	version, err := schema.ParseVersion(c.flagSchemaVersion)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	raw, err := os.ReadFile(c.flagFile)
	if err != nil {
		ui.Error(fmt.Sprintf("error reading metadata file: %v", err))
		return 1
	}

	metadata, err := datacite.ParseMetadata(raw)
	if err != nil {
		ui.Error(fmt.Sprintf("error parsing metadata file: %v", err))
		return 1
	}

	validator, err := schema.NewValidator(schema.ValidatorConfig{
		SchemaDir: c.flagSchemaDir,
		Logger:    logger,
	})
	if err != nil {
		ui.Error(fmt.Sprintf("error loading kernel schemas: %v", err))
		return 1
	}

	if err := validator.Validate(version, metadata); err != nil {
		var serr *schema.Error
		if errors.As(err, &serr) {
			ui.Error(fmt.Sprintf("%s does not conform to kernel schema %s:", c.flagFile, serr.Version))
			ui.Error(serr.Err.Error())
		} else {
			ui.Error(err.Error())
		}
		return 1
	}

	ui.Output(fmt.Sprintf("%s conforms to kernel schema %s", c.flagFile, version))
	return 0
}
