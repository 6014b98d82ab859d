package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	r := New(0)
	assert.Equal(t, DefaultMaxAttempts, r.MaxAttempts())

	r = New(3, WithBaseDelay(time.Second), WithMaxDelay(5*time.Second))
	assert.Equal(t, 3, r.MaxAttempts())
	assert.Equal(t, time.Second, r.baseDelay)
	assert.Equal(t, 5*time.Second, r.maxDelay)
}

func TestProvider(t *testing.T) {
	factory := Provider(7)
	require.NotNil(t, factory)
	assert.Equal(t, 7, factory().MaxAttempts())
}

func TestRetryer_RetryDelay(t *testing.T) {
	r := New(10, WithBaseDelay(100*time.Millisecond), WithMaxDelay(time.Second))

	tests := []struct {
		attempt int
		min     time.Duration
		max     time.Duration
	}{
		{attempt: 1, min: 75 * time.Millisecond, max: 125 * time.Millisecond},
		{attempt: 2, min: 150 * time.Millisecond, max: 250 * time.Millisecond},
		{attempt: 3, min: 300 * time.Millisecond, max: 500 * time.Millisecond},
		{attempt: 8, min: time.Second, max: time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			for i := 0; i < 20; i++ {
				delay, err := r.RetryDelay(tt.attempt, nil)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, delay, tt.min)
				assert.LessOrEqual(t, delay, tt.max)
			}
		})
	}
}

func TestRetryer_IsErrorRetryable(t *testing.T) {
	r := New(3)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sts throttling", &smithy.GenericAPIError{Code: "Throttling"}, true},
		{"organizations throttling", &smithy.GenericAPIError{Code: "TooManyRequestsException"}, true},
		{"s3 slow down", fmt.Errorf("op: %w", &smithy.GenericAPIError{Code: "SlowDown"}), true},
		{"internal error", &smithy.GenericAPIError{Code: "InternalError"}, true},
		{"service unavailable", &smithy.GenericAPIError{Code: "ServiceUnavailable"}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"bucket not empty", &smithy.GenericAPIError{Code: "BucketNotEmpty"}, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsErrorRetryable(tt.err))
		})
	}
}

func TestRetryer_Tokens(t *testing.T) {
	r := New(3)

	release, err := r.GetRetryToken(context.Background(), errors.New("x"))
	require.NoError(t, err)
	assert.NoError(t, release(nil))
	assert.NoError(t, r.GetInitialToken()(nil))
}
