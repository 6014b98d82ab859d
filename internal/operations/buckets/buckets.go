package buckets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"

	sweeperrors "github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// Defaults for bucket deletion retries.
const (
	DefaultDeleteAttempts = 3
	DefaultRetryInterval  = 2 * time.Second
	DefaultMaxInterval    = 15 * time.Second
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListBuckets(
		ctx context.Context,
		input *s3.ListBucketsInput,
		opts ...func(*s3.Options),
	) (*s3.ListBucketsOutput, error)
	DeleteBucket(
		ctx context.Context,
		input *s3.DeleteBucketInput,
		opts ...func(*s3.Options),
	) (*s3.DeleteBucketOutput, error)
}

// Manager lists and deletes buckets in one account.
type Manager struct {
	client        S3Interface
	pageSize      int32
	attempts      int
	retryInterval time.Duration
	maxInterval   time.Duration
	logger        *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithPageSize sets the number of buckets requested per listing page (0 lets the provider decide).
func WithPageSize(size int32) Option {
	return func(m *Manager) {
		if size >= 0 {
			m.pageSize = size
		}
	}
}

// WithDeleteAttempts sets how many times bucket deletion is attempted.
func WithDeleteAttempts(attempts int) Option {
	return func(m *Manager) {
		if attempts > 0 {
			m.attempts = attempts
		}
	}
}

// WithRetryInterval sets the initial and maximum wait between deletion attempts.
func WithRetryInterval(initial, maxInterval time.Duration) Option {
	return func(m *Manager) {
		if initial > 0 {
			m.retryInterval = initial
		}
		if maxInterval >= m.retryInterval {
			m.maxInterval = maxInterval
		}
	}
}

// WithLogger sets the logger used for retry output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a new Manager.
func New(client S3Interface, opts ...Option) *Manager {
	m := &Manager{
		client:        client,
		attempts:      DefaultDeleteAttempts,
		retryInterval: DefaultRetryInterval,
		maxInterval:   DefaultMaxInterval,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// List returns every bucket in the account whose name starts with prefix, in listing order.
func (m *Manager) List(ctx context.Context, prefix string) ([]sweeptypes.Bucket, error) {
	input := &s3.ListBucketsInput{}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var all []sweeptypes.Bucket
	paginator := s3.NewListBucketsPaginator(m.client, input, func(o *s3.ListBucketsPaginatorOptions) {
		o.Limit = m.pageSize
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sweeperrors.ErrListBuckets, sweeperrors.Classify(err))
		}
		for _, b := range page.Buckets {
			all = append(all, sweeptypes.Bucket{
				Name:         aws.ToString(b.Name),
				Region:       aws.ToString(b.BucketRegion),
				CreationDate: aws.ToTime(b.CreationDate),
			})
		}
	}

	return Filter(all, prefix), nil
}

// Filter keeps the buckets whose name starts with prefix, preserving order.
// Matching is a case-sensitive literal prefix test.
func Filter(buckets []sweeptypes.Bucket, prefix string) []sweeptypes.Bucket {
	matched := make([]sweeptypes.Bucket, 0, len(buckets))
	for _, b := range buckets {
		if strings.HasPrefix(b.Name, prefix) {
			matched = append(matched, b)
		}
	}
	return matched
}

// Delete removes an emptied bucket. Attempts that fail because the bucket is
// still reported non-empty or because the request was throttled are retried
// with exponential backoff; any other failure is returned immediately.
// It returns the number of attempts made.
func (m *Manager) Delete(ctx context.Context, bucket string, optFns ...func(*s3.Options)) (int, error) {
	attempts := 0
	operation := func() error {
		attempts++
		_, err := m.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
			Bucket: aws.String(bucket),
		}, optFns...)
		if err == nil {
			return nil
		}

		err = fmt.Errorf("%w: %w", sweeperrors.ErrDeleteBucket, sweeperrors.Classify(err))
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		m.logger.Debug("retrying bucket deletion",
			"bucket", bucket,
			"attempt", attempts,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(operation, m.policy(ctx), notify); err != nil {
		return attempts, err
	}
	return attempts, nil
}

func (m *Manager) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.retryInterval
	b.MaxInterval = m.maxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(m.attempts-1)), ctx)
}

func retryable(err error) bool {
	return sweeperrors.IsBucketNotEmpty(err) || sweeperrors.IsThrottled(err)
}
