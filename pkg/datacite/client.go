package datacite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultBaseURL is the production DataCite REST API endpoint. Test
	// repositories should point at https://api.test.datacite.org instead.
	DefaultBaseURL = "https://api.datacite.org"

	defaultTimeout = 30 * time.Second

	// mimeJSONAPI is the media type the DataCite API speaks for DOI
	// resources.
	mimeJSONAPI = "application/vnd.api+json"
)

// ClientConfig configures a DataCite API client.
type ClientConfig struct {
	// BaseURL is the API endpoint, without a trailing slash. Defaults to
	// DefaultBaseURL.
	BaseURL string

	// Username and Password are the repository account credentials used
	// for HTTP basic auth on every request.
	Username string
	Password string

	// Timeout bounds each request. Defaults to 30 seconds. Ignored when
	// HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client used for requests.
	HTTPClient *http.Client

	// Logger for request diagnostics. Defaults to a null logger.
	Logger hclog.Logger
}

// Validate checks the configuration for errors.
func (c *ClientConfig) Validate() error {
	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base URL must use http or https scheme, got %q", u.Scheme)
		}
	}
	return nil
}

// Client is a DataCite REST API client scoped to one repository account.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	log      hclog.Logger
}

// NewClient creates a DataCite client from the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     httpClient,
		log:      cfg.Logger.Named("datacite"),
	}, nil
}

// Outcome describes which registration path CreateOrUpdate took.
type Outcome struct {
	// Created is true when the initial create was accepted.
	Created bool

	// Updated is true when the create collided with an existing record
	// and the follow-up update was accepted. Created and Updated are
	// never both true.
	Updated bool

	// Response is the reply from whichever request ran last. When both
	// flags are false it holds the failing response for inspection.
	Response *Response
}

// CreateOrUpdate registers the DOI, updating it instead if it already
// exists. It first posts the payload as a new resource; when the API
// answers 422, the identifier is already taken and the same payload is
// re-issued once as an update. The returned Outcome records which of the
// two requests ran last and whether it was accepted.
//
// A non-nil error means a request could not be completed at the transport
// level; the Outcome is zero in that case.
func (c *Client) CreateOrUpdate(ctx context.Context, doi string, body []byte) (Outcome, error) {
	resp, err := c.do(ctx, "create", http.MethodPost, c.baseURL+"/dois", body)
	if err != nil {
		return Outcome{}, err
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		c.log.Debug("DOI already registered, updating instead", "doi", doi)
		upd, err := c.Update(ctx, doi, body)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Updated: upd.OK(), Response: upd}, nil
	}

	return Outcome{Created: resp.OK(), Response: resp}, nil
}

// Update replaces the metadata of an existing DOI.
func (c *Client) Update(ctx context.Context, doi string, body []byte) (*Response, error) {
	return c.do(ctx, "update", http.MethodPut, c.doiURL(doi), body)
}

// Delete removes a DOI. Only draft DOIs can be deleted; the API refuses to
// delete findable or registered ones. The boolean reports whether the API
// accepted the deletion, with the response returned alongside for callers
// that want the refusal details.
func (c *Client) Delete(ctx context.Context, doi string) (bool, *Response, error) {
	resp, err := c.do(ctx, "delete", http.MethodDelete, c.doiURL(doi), nil)
	if err != nil {
		return false, nil, err
	}
	if !resp.OK() {
		c.log.Warn("DOI delete refused", "doi", doi, "status", resp.Status)
	}
	return resp.OK(), resp, nil
}

// Retrieve fetches the record for a DOI. A nil response with a nil error
// means the API answered with a non-2xx status and the record is treated
// as absent. The status itself is logged but not returned, so a missing
// DOI and a server fault look the same to the caller.
func (c *Client) Retrieve(ctx context.Context, doi string) (*Response, error) {
	resp, err := c.do(ctx, "retrieve", http.MethodGet, c.doiURL(doi), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		c.log.Debug("DOI retrieve failed", "doi", doi, "status", resp.Status)
		return nil, nil
	}
	return resp, nil
}

// Heartbeat checks that the API is reachable and serving.
func (c *Client) Heartbeat(ctx context.Context) error {
	resp, err := c.do(ctx, "heartbeat", http.MethodGet, c.baseURL+"/heartbeat", nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("heartbeat: %s", resp.Status)
	}
	return nil
}

// doiURL builds the resource URL for a DOI. DOIs contain a slash between
// prefix and suffix which the API expects unescaped in the path.
func (c *Client) doiURL(doi string) string {
	return fmt.Sprintf("%s/dois/%s", c.baseURL, doi)
}

func (c *Client) do(ctx context.Context, op, method, url string, body []byte) (*Response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", mimeJSONAPI)
	if body != nil {
		req.Header.Set("Content-Type", mimeJSONAPI)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: op, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.log.Debug("API request completed",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       b,
	}, nil
}
