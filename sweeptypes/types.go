// Package sweeptypes provides shared type definitions for the bucket sweep module.
package sweeptypes

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// AccountStatus is the organization membership status of an account.
type AccountStatus string

// Known account statuses.
const (
	// AccountStatusActive marks an account eligible for sweeping
	AccountStatusActive AccountStatus = "ACTIVE"

	// AccountStatusSuspended marks an account suspended by the organization
	AccountStatusSuspended AccountStatus = "SUSPENDED"

	// AccountStatusPendingClosure marks an account that is being closed
	AccountStatusPendingClosure AccountStatus = "PENDING_CLOSURE"
)

// Account is a member account of the organization.
type Account struct {
	// ID is the 12 digit account identifier
	ID string

	// Name is the friendly account name, if the provider returned one
	Name string

	// Status is the membership status; only ACTIVE accounts are swept
	Status AccountStatus
}

// Active reports whether the account is eligible for sweeping.
func (a Account) Active() bool {
	return a.Status == AccountStatusActive
}

// Credentials are short-lived delegated credentials for one account.
// They are used to build that account's storage client and then discarded.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Expires is when the provider will stop honouring the credentials
	Expires time.Time
}

// String never exposes the secret parts of the credential set.
func (c Credentials) String() string {
	return "Credentials{AccessKeyID: " + c.AccessKeyID + ", SecretAccessKey: <redacted>, SessionToken: <redacted>}"
}

// Bucket is an S3 bucket discovered in an account.
type Bucket struct {
	// Name is the bucket name
	Name string

	// Region is the bucket's region when the listing reported it
	Region string

	// CreationDate is when the bucket was created
	CreationDate time.Time
}

// ObjectVersion identifies one version or delete marker of an object.
type ObjectVersion struct {
	// Key is the object key
	Key string

	// VersionID is the version identifier ("null" for unversioned objects)
	VersionID string

	// DeleteMarker is true for delete-marker records
	DeleteMarker bool
}

// DeleteError describes a record the provider refused to delete.
type DeleteError struct {
	Key       string
	VersionID string
	Code      string
	Message   string
}

// PurgeResult describes the outcome of draining every version from a bucket.
type PurgeResult struct {
	// Bucket is the purged bucket name
	Bucket string

	// Pages is the number of version listing pages fetched
	Pages int

	// Batches is the number of batched delete calls issued
	Batches int

	// Deleted is the number of records the provider confirmed deleted
	Deleted int

	// Failed is the number of records the provider refused to delete
	Failed int

	// Errors holds the per-record failures reported by the provider
	Errors []DeleteError

	// Duration is how long the purge took
	Duration time.Duration

	// Err is the first error encountered, nil if none
	Err error
}

// Complete reports whether every listed record was deleted without error.
func (r PurgeResult) Complete() bool {
	return r.Err == nil && r.Failed == 0
}

// Reporter receives human-readable progress notices.
// Implementations must be safe for concurrent use.
type Reporter interface {
	// AccountIgnored is called for accounts that are not ACTIVE
	AccountIgnored(account Account)

	// AccountStarted is called before role assumption in an account
	AccountStarted(accountID string)

	// AccountFailed is called when an account could not be processed
	AccountFailed(accountID string, err error)

	// BucketDeleted is called after a bucket was purged and deleted
	BucketDeleted(accountID string, bucket string, purge PurgeResult)

	// PurgeFailed is called when a bucket could not be fully purged
	PurgeFailed(accountID string, bucket string, purge PurgeResult)

	// BucketFailed is called when bucket deletion failed
	BucketFailed(accountID string, bucket string, err error)
}

// NopReporter discards every notice.
type NopReporter struct{}

func (NopReporter) AccountIgnored(Account)                    {}
func (NopReporter) AccountStarted(string)                     {}
func (NopReporter) AccountFailed(string, error)               {}
func (NopReporter) BucketDeleted(string, string, PurgeResult) {}
func (NopReporter) PurgeFailed(string, string, PurgeResult)   {}
func (NopReporter) BucketFailed(string, string, error)        {}

// ClientConfig holds configuration for a Cleaner.
type ClientConfig struct {
	// Region is the AWS region used for the organization, STS and default S3 calls
	Region string

	// Profile is the shared config profile used for the entry-point credentials
	Profile string

	// CustomAWSConfig overrides default configuration loading when set
	CustomAWSConfig *aws.Config

	// Endpoint overrides the service endpoint for all clients (LocalStack)
	Endpoint string

	// ForcePathStyle forces path-style S3 addressing
	ForcePathStyle bool

	// RoleName is the role assumed in every account
	RoleName string

	// Partition is the ARN partition of the role (aws, aws-cn, aws-us-gov)
	Partition string

	// SessionName is the role session name passed to STS
	SessionName string

	// SessionDuration is the requested lifetime of delegated credentials (0 = provider default)
	SessionDuration time.Duration

	// ExternalID is passed to STS when the role trust policy requires it
	ExternalID string

	// Concurrency is the number of accounts processed in parallel
	Concurrency int

	// MaxRetries is the SDK attempt budget per request
	MaxRetries int

	// DeleteAttempts is the number of bucket deletion attempts
	DeleteAttempts int

	// RateLimit caps STS and S3 requests per second (0 = unlimited)
	RateLimit float64

	// PageSize is the version listing page size (1..1000)
	PageSize int32

	// DeleteOnPartialPurge attempts bucket deletion even when the purge was incomplete
	DeleteOnPartialPurge bool

	// Logger receives structured logs; nil disables logging
	Logger *slog.Logger

	// Reporter receives human-readable notices; nil discards them
	Reporter Reporter
}

// Option is a functional option for configuring a Cleaner.
type Option func(*ClientConfig)
