package reports

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how stubbornly a submission is retried. The hub
// ingests reports asynchronously and transient rejections are common, so
// the default is deliberately patient.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, the first included
	// (default: 10).
	MaxAttempts int

	// Interval is the fixed wait between tries (default: 1 second).
	Interval time.Duration
}

// DefaultRetryPolicy returns the policy submissions use unless configured
// otherwise: ten attempts, one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 10,
		Interval:    time.Second,
	}
}

// backOff builds the wait schedule for one submission run.
func (p RetryPolicy) backOff() backoff.BackOff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(attempts-1))
}
