// Package retry provides the AWS SDK retry policy used by every sweep client.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"

	sweeperrors "github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
)

const (
	// DefaultMaxAttempts is the attempt budget (including the first attempt) per request.
	DefaultMaxAttempts = 5

	defaultBaseDelay = 200 * time.Millisecond
	defaultMaxDelay  = 20 * time.Second
)

// transientCodes are server-side failures that usually clear on their own.
var transientCodes = map[string]struct{}{
	"InternalError":                   {},
	"InternalFailure":                 {},
	"ServiceUnavailable":              {},
	"ServiceUnavailableException":     {},
	"RequestTimeout":                  {},
	"RequestTimeoutException":         {},
	"ConcurrentModificationException": {},
	"IDPCommunicationError":           {},
	"OperationAborted":                {},
}

// Retryer implements aws.Retryer with exponential backoff and jitter.
// It retries throttling and transient provider failures and nothing else.
//
// Thread Safety: Retryer is safe for concurrent use. All fields are set
// at creation time and never modified.
type Retryer struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// Option configures a Retryer.
type Option func(*Retryer)

// WithBaseDelay sets the delay before the first retry.
func WithBaseDelay(d time.Duration) Option {
	return func(r *Retryer) {
		if d > 0 {
			r.baseDelay = d
		}
	}
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(r *Retryer) {
		if d > 0 {
			r.maxDelay = d
		}
	}
}

// New creates a Retryer allowing maxAttempts attempts per request.
// A non-positive maxAttempts selects DefaultMaxAttempts.
func New(maxAttempts int, opts ...Option) *Retryer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	r := &Retryer{
		maxAttempts: maxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provider returns a constructor suitable for aws.Config.Retryer.
func Provider(maxAttempts int, opts ...Option) func() aws.Retryer {
	return func() aws.Retryer {
		return New(maxAttempts, opts...)
	}
}

// MaxAttempts returns the maximum number of attempts.
func (r *Retryer) MaxAttempts() int {
	return r.maxAttempts
}

// RetryDelay returns the delay for the given attempt number,
// implementing exponential backoff with ±25% jitter.
func (r *Retryer) RetryDelay(attempt int, err error) (time.Duration, error) {
	if attempt < 1 {
		attempt = 1
	}

	delay := time.Duration(math.Pow(2, float64(attempt-1))) * r.baseDelay

	jitterRange := int64(float64(delay) * 0.25)
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(2*jitterRange) - jitterRange)
	}

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	if delay < 0 {
		delay = 0
	}

	return delay, nil
}

// IsErrorRetryable reports whether err is a throttling or transient provider failure.
func (r *Retryer) IsErrorRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if sweeperrors.IsThrottled(sweeperrors.Classify(err)) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		_, ok := transientCodes[apiErr.ErrorCode()]
		return ok
	}

	return false
}

// GetRetryToken always grants a retry; pacing is handled by RetryDelay.
func (r *Retryer) GetRetryToken(ctx context.Context, opErr error) (releaseToken func(error) error, err error) {
	return func(error) error { return nil }, nil
}

// GetInitialToken returns a no-op release function.
func (r *Retryer) GetInitialToken() (releaseToken func(error) error) {
	return func(error) error { return nil }
}

var _ aws.Retryer = (*Retryer)(nil)
