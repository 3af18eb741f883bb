package doi

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/asencis/datacite-go/internal/cmd/base"
	"github.com/asencis/datacite-go/internal/config"
	"github.com/asencis/datacite-go/pkg/datacite"
	"github.com/asencis/datacite-go/pkg/schema"
)

type MintCommand struct {
	*base.Command

	flagConfig        string
	flagAPIURL        string
	flagDOI           string
	flagFile          string
	flagEvent         string
	flagURL           string
	flagNoValidate    bool
	flagSchemaVersion string
}

func (c *MintCommand) Synopsis() string {
	return "Register a DOI, updating it if it already exists"
}

func (c *MintCommand) Help() string {
	return `Usage: datacite doi mint -doi <doi> -file <metadata-file>

  This command registers a DOI with the metadata read from a JSON or
  YAML file. When the DOI is already registered the same metadata is
  re-submitted as an update, so minting is safe to repeat.

  Metadata is checked against the DataCite kernel schema before any
  request is made; use -no-validate to send it regardless.` +
		c.Flags().Help()
}

func (c *MintCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("mint", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "Path to the configuration file",
	)
	f.StringVar(
		&c.flagAPIURL, "api-url", "",
		"[DATACITE_API_URL] DataCite REST API base URL",
	)
	f.StringVar(
		&c.flagDOI, "doi", "", "(Required) DOI to register, e.g. 10.5438/0012",
	)
	f.StringVar(
		&c.flagFile, "file", "", "(Required) Path to the metadata file (JSON or YAML)",
	)
	f.StringVar(
		&c.flagEvent, "event", "",
		"Registration event (publish, register, hide); overrides the file",
	)
	f.StringVar(
		&c.flagURL, "url", "", "Landing page URL; overrides the file",
	)
	f.BoolVar(
		&c.flagNoValidate, "no-validate", false,
		"Skip kernel schema validation before submitting",
	)
	f.StringVar(
		&c.flagSchemaVersion, "schema-version", "",
		"Kernel schema version to validate against (4.2 or 4.3)",
	)

	return f
}

func (c *MintCommand) Run(args []string) int {
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
	if c.flagFile == "" {
		ui.Error("file flag is required")
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

	if !c.flagNoValidate {
		if code := c.validateMetadata(metadata); code != 0 {
			return code
		}
	}

	attrs, err := datacite.AttributesFromMap(metadata)
	if err != nil {
		ui.Error(fmt.Sprintf("error decoding metadata: %v", err))
		return 1
	}
	if c.flagEvent != "" {
		attrs.Event = c.flagEvent
	}
	if c.flagURL != "" {
		attrs.URL = c.flagURL
	}

	body, err := datacite.NewPayload(c.flagDOI, attrs).Encode()
	if err != nil {
		ui.Error(fmt.Sprintf("invalid registration payload: %v", err))
		return 1
	}

	client, err := newAPIClient(logger, c.flagConfig, c.flagAPIURL)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating API client: %v", err))
		return 1
	}

	outcome, err := client.CreateOrUpdate(context.Background(), c.flagDOI, body)
	if err != nil {
		ui.Error(fmt.Sprintf("error submitting DOI: %v", err))
		return 1
	}

	switch {
	case outcome.Created:
		ui.Output(fmt.Sprintf("Created DOI %s", c.flagDOI))
	case outcome.Updated:
		ui.Output(fmt.Sprintf("Updated DOI %s", c.flagDOI))
	default:
		ui.Error(fmt.Sprintf("DOI %s was rejected: %s", c.flagDOI, outcome.Response.Status))
		for _, apiErr := range outcome.Response.Errors() {
			ui.Error("  " + apiErr.String())
		}
		return 1
	}

	return 0
}

// validateMetadata checks the metadata against the kernel schema,
// printing each violation. Returns a non-zero exit code on failure.
func (c *MintCommand) validateMetadata(metadata map[string]any) int {
	ui := c.UI

	versionStr := c.flagSchemaVersion
	var schemaDir string
	if c.flagConfig != "" {
		cfg, err := config.NewConfig(c.flagConfig)
		if err == nil && cfg.Schema != nil {
			if versionStr == "" {
				versionStr = cfg.Schema.Version
			}
			schemaDir = cfg.Schema.SchemaDir
		}
	}

	version := schema.DefaultVersion
	if versionStr != "" {
		parsed, err := schema.ParseVersion(versionStr)
		if err != nil {
			ui.Error(err.Error())
			return 1
		}
		version = parsed
	}

	validator, err := schema.NewValidator(schema.ValidatorConfig{
		SchemaDir: schemaDir,
		Logger:    c.Log,
	})
	if err != nil {
		ui.Error(fmt.Sprintf("error loading kernel schemas: %v", err))
		return 1
	}

	if err := validator.Validate(version, metadata); err != nil {
		var serr *schema.Error
		if errors.As(err, &serr) {
			ui.Error(fmt.Sprintf("metadata does not conform to kernel schema %s:", serr.Version))
			ui.Error(serr.Err.Error())
		} else {
			ui.Error(err.Error())
		}
		return 1
	}

	return 0
}
