// Package config loads the HCL configuration file shared by the CLI
// commands. Every attribute is optional; flags and environment variables
// fill whatever the file leaves out.
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the top-level configuration document.
//
//	api {
//	  base_url = "https://api.test.datacite.org"
//	  username = "REPO.EXAMPLE"
//	  password = "..."
//	  timeout  = "30s"
//	}
//
//	reports {
//	  base_url     = "https://api.test.datacite.org"
//	  token        = "..."
//	  max_attempts = 10
//	  interval     = "1s"
//	}
//
//	schema {
//	  version    = "4.3"
//	  schema_dir = ""
//	}
type Config struct {
	API     *API     `hcl:"api,block"`
	Reports *Reports `hcl:"reports,block"`
	Schema  *Schema  `hcl:"schema,block"`
}

// API configures the DataCite REST API client.
type API struct {
	BaseURL  string `hcl:"base_url,optional"`
	Username string `hcl:"username,optional"`
	Password string `hcl:"password,optional"`
	Timeout  string `hcl:"timeout,optional"`
}

// ParseTimeout parses the request timeout, zero when unset.
func (a *API) ParseTimeout() (time.Duration, error) {
	if a == nil || a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid api.timeout: %w", err)
	}
	return d, nil
}

// Reports configures the usage report submitter.
type Reports struct {
	BaseURL     string `hcl:"base_url,optional"`
	Token       string `hcl:"token,optional"`
	MaxAttempts int    `hcl:"max_attempts,optional"`
	Interval    string `hcl:"interval,optional"`
}

// ParseInterval parses the retry interval, zero when unset.
func (r *Reports) ParseInterval() (time.Duration, error) {
	if r == nil || r.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid reports.interval: %w", err)
	}
	return d, nil
}

// Schema configures kernel metadata validation.
type Schema struct {
	Version   string `hcl:"version,optional"`
	SchemaDir string `hcl:"schema_dir,optional"`
}

// NewConfig reads and decodes the HCL configuration file at path.
func NewConfig(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks everything that can be checked without talking to the
// API, collecting all problems rather than stopping at the first.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := c.API.ParseTimeout(); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := c.Reports.ParseInterval(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Reports != nil && c.Reports.MaxAttempts < 0 {
		result = multierror.Append(result,
			fmt.Errorf("reports.max_attempts cannot be negative, got %d", c.Reports.MaxAttempts))
	}

	return result.ErrorOrNil()
}
