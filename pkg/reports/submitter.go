// Package reports uploads COUNTER usage reports to the DataCite usage
// reports hub. Reports travel gzip-compressed and authenticated by a JWT
// bearer token; rejected submissions are retried on a fixed schedule
// before the failure is handed back to the caller.
package reports

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/asencis/datacite-go/pkg/datacite"
)

const (
	// DefaultBaseURL is the production usage reports hub endpoint.
	DefaultBaseURL = "https://api.datacite.org"

	defaultTimeout = 5 * time.Minute
)

// SubmitterConfig configures a usage report submitter.
type SubmitterConfig struct {
	// BaseURL is the hub endpoint, without a trailing slash. Defaults
	// to DefaultBaseURL.
	BaseURL string

	// Token is the JWT bearer token issued by the hub. Required.
	Token string

	// Retry bounds the per-submission retry loop. The zero value means
	// DefaultRetryPolicy.
	Retry RetryPolicy

	// Timeout bounds each upload request. Defaults to 5 minutes since
	// usage reports can run to many megabytes. Ignored when HTTPClient
	// is set.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client used for uploads.
	HTTPClient *http.Client

	// Fs is the filesystem report files are read from. Defaults to the
	// OS filesystem.
	Fs afero.Fs

	// Logger for attempt diagnostics. Defaults to a null logger.
	Logger hclog.Logger
}

// Validate checks the configuration for errors.
func (c *SubmitterConfig) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
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

// Submitter uploads usage reports to the hub on behalf of one repository.
type Submitter struct {
	baseURL string
	token   string
	retry   RetryPolicy
	http    *http.Client
	fs      afero.Fs
	log     hclog.Logger
}

// NewSubmitter creates a submitter from the given configuration. It fails
// fast when no token is configured rather than letting every later upload
// bounce off the hub.
func NewSubmitter(cfg SubmitterConfig) (*Submitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	log := cfg.Logger.Named("reports")
	tokenDiagnostics(log, cfg.Token)

	return &Submitter{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		retry:   cfg.Retry,
		http:    httpClient,
		fs:      cfg.Fs,
		log:     log,
	}, nil
}

// Submit gzip-compresses the report file at path and uploads it to the
// hub under the given report ID, retrying rejected uploads per the
// configured policy.
//
// Submit does not turn a rejected upload into an error: when the retry
// budget runs out it returns the hub's final response with a nil error so
// the caller can inspect the status. The error return covers the cases
// where there is nothing to inspect, a missing report ID or file, a
// cancelled context, or a final attempt that never reached the hub.
func (s *Submitter) Submit(ctx context.Context, id ReportID, path string) (*datacite.Response, error) {
	if id.IsZero() {
		return nil, ErrMissingReportID
	}

	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}

	compressed, err := compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compressing report %s: %w", path, err)
	}

	s.log.Info("submitting usage report",
		"report_id", id,
		"path", path,
		"bytes", len(raw),
		"compressed_bytes", len(compressed),
	)

	uploadURL := fmt.Sprintf("%s/reports/%s", s.baseURL, id)

	var (
		resp    *datacite.Response
		lastErr error
	)
	bo := s.retry.backOff()
	attempt := 0
	for {
		attempt++
		resp, lastErr = s.put(ctx, uploadURL, compressed)
		if lastErr == nil && resp.OK() {
			s.log.Info("usage report accepted",
				"report_id", id,
				"status", resp.Status,
				"attempts", attempt,
			)
			return resp, nil
		}

		if lastErr != nil {
			s.log.Warn("usage report submission failed",
				"report_id", id,
				"attempt", attempt,
				"error", lastErr,
			)
		} else {
			s.log.Warn("usage report submission failed",
				"report_id", id,
				"attempt", attempt,
				"status", resp.Status,
			)
		}

		next := bo.NextBackOff()
		if next == backoff.Stop {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(next):
		}
	}

	// Retries exhausted. Hand back whatever the last attempt produced:
	// the failing response when the hub answered, the transport error
	// when it never did.
	if lastErr != nil {
		return nil, lastErr
	}
	s.log.Error("usage report rejected, retries exhausted",
		"report_id", id,
		"attempts", attempt,
		"status", resp.Status,
	)
	return resp, nil
}

func (s *Submitter) put(ctx context.Context, url string, body []byte) (*datacite.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/gzip")
	req.Header.Set("Content-Encoding", "gzip")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &datacite.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       b,
	}, nil
}

// compress gzips a report body. The hub stores reports compressed and
// requires uploads to arrive that way.
func compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tokenDiagnostics logs what the bearer token claims about itself. The
// token is not verified here, the hub does that; but an already expired
// token is worth a warning before ten doomed upload attempts.
func tokenDiagnostics(log hclog.Logger, token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		log.Debug("bearer token is not a parseable JWT", "error", err)
		return
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	subject, _ := claims.GetSubject()
	expiry, _ := claims.GetExpirationTime()
	if expiry != nil && expiry.Before(time.Now()) {
		log.Warn("bearer token is expired",
			"subject", subject,
			"expired_at", expiry.Time,
		)
		return
	}
	log.Debug("bearer token parsed", "subject", subject)
}
