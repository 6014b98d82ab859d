package bucketsweep

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// WithRegion sets the AWS region for the organization, STS and default S3 calls.
// If not specified, uses the region from the credential chain, falling back to us-east-1.
func WithRegion(region string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Region = region
	}
}

// WithProfile selects a shared config profile for the entry-point credentials.
func WithProfile(profile string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Profile = profile
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithEndpoint sets a custom endpoint URL for every service.
// This is useful for local testing with LocalStack.
func WithEndpoint(endpoint string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style S3 URLs.
func WithForcePathStyle(forcePathStyle bool) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithRoleName sets the role assumed in every account.
// Default is AWSCloudFormationStackSetExecutionRole.
func WithRoleName(roleName string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.RoleName = roleName
	}
}

// WithPartition sets the ARN partition of the assumed role. Default is aws.
func WithPartition(partition string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Partition = partition
	}
}

// WithSessionName sets the role session name. Default is delete-buckets.
func WithSessionName(sessionName string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.SessionName = sessionName
	}
}

// WithSessionDuration requests a lifetime for the delegated credentials.
// Zero leaves the lifetime to STS.
func WithSessionDuration(d time.Duration) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.SessionDuration = d
	}
}

// WithExternalID sets the external id required by the role's trust policy.
func WithExternalID(externalID string) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.ExternalID = externalID
	}
}

// WithConcurrency sets how many accounts are swept in parallel.
// Default is 1 (sequential). Buckets within an account are always sequential.
func WithConcurrency(concurrency int) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithMaxRetries sets the SDK attempt budget per request, including the first attempt.
func WithMaxRetries(maxRetries int) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		if maxRetries > 0 {
			c.MaxRetries = maxRetries
		}
	}
}

// WithDeleteAttempts sets how many times bucket deletion is attempted. Default is 3.
func WithDeleteAttempts(attempts int) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		if attempts > 0 {
			c.DeleteAttempts = attempts
		}
	}
}

// WithRateLimit caps STS and S3 requests per second across the whole run.
// Zero disables client-side pacing.
func WithRateLimit(perSecond float64) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		if perSecond >= 0 {
			c.RateLimit = perSecond
		}
	}
}

// WithPageSize sets the version listing page size, which also bounds each
// delete batch. Valid values are 1 to 1000; default is 1000.
func WithPageSize(pageSize int32) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.PageSize = pageSize
	}
}

// WithDeleteOnPartialPurge attempts bucket deletion even when some versions
// could not be removed. Default is false: such buckets are skipped and reported.
func WithDeleteOnPartialPurge(enabled bool) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.DeleteOnPartialPurge = enabled
	}
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithReporter sets the receiver of human-readable progress notices.
func WithReporter(reporter sweeptypes.Reporter) sweeptypes.Option {
	return func(c *sweeptypes.ClientConfig) {
		c.Reporter = reporter
	}
}
