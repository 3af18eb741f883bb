package doi

import (
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/asencis/datacite-go/internal/config"
	"github.com/asencis/datacite-go/pkg/datacite"
)

// newAPIClient builds the API client for a command run. Flags win over
// the config file, and environment variables fill whatever is left.
func newAPIClient(log hclog.Logger, cfgPath, flagBaseURL string) (*datacite.Client, error) {
	clientCfg := datacite.ClientConfig{
		BaseURL: flagBaseURL,
		Logger:  log,
	}

	if cfgPath != "" {
		cfg, err := config.NewConfig(cfgPath)
		if err != nil {
			return nil, err
		}
		if cfg.API != nil {
			if clientCfg.BaseURL == "" {
				clientCfg.BaseURL = cfg.API.BaseURL
			}
			clientCfg.Username = cfg.API.Username
			clientCfg.Password = cfg.API.Password

			timeout, err := cfg.API.ParseTimeout()
			if err != nil {
				return nil, err
			}
			clientCfg.Timeout = timeout
		}
	}

	if val, ok := os.LookupEnv("DATACITE_API_URL"); ok && clientCfg.BaseURL == "" {
		clientCfg.BaseURL = val
	}
	if val, ok := os.LookupEnv("DATACITE_USERNAME"); ok && clientCfg.Username == "" {
		clientCfg.Username = val
	}
	if val, ok := os.LookupEnv("DATACITE_PASSWORD"); ok && clientCfg.Password == "" {
		clientCfg.Password = val
	}

	return datacite.NewClient(clientCfg)
}
