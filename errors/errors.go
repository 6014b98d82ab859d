// Package errors provides error types and handling for bucket sweep operations.
package errors

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Error represents a sweep operation error with context about the account
// and bucket the operation was working on.
// It wraps the underlying AWS SDK error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "assumeRole", "purge", "deleteBucket")
	Op string

	// Account is the AWS account identifier (if applicable)
	Account string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Account != "" && e.Bucket != "" {
		return fmt.Sprintf("bucketsweep.%s account %s bucket %s: %v", e.Op, e.Account, e.Bucket, e.Err)
	}
	if e.Account != "" {
		return fmt.Sprintf("bucketsweep.%s account %s: %v", e.Op, e.Account, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("bucketsweep.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("bucketsweep.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithAccount adds account context to an existing error.
func (e *Error) WithAccount(account string) *Error {
	e.Account = account
	return e
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewAccountError creates a new Error with account context.
func NewAccountError(op, account string, err error) *Error {
	return &Error{
		Op:      op,
		Account: account,
		Err:     err,
	}
}

// NewBucketError creates a new Error with account and bucket context.
func NewBucketError(op, account, bucket string, err error) *Error {
	return &Error{
		Op:      op,
		Account: account,
		Bucket:  bucket,
		Err:     err,
	}
}

// Sentinel errors for sweep failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("bucketsweep: invalid input")

	// ErrInvalidPrefix indicates that the bucket name prefix is empty or malformed
	ErrInvalidPrefix = errors.New("bucketsweep: invalid bucket prefix")

	// ErrInvalidAccountID indicates that an account identifier cannot form a role ARN
	ErrInvalidAccountID = errors.New("bucketsweep: invalid account id")

	// ErrInvalidRoleName indicates that the role or session name violates IAM naming rules
	ErrInvalidRoleName = errors.New("bucketsweep: invalid role name")

	// ErrListAccounts indicates that the organization account listing failed
	ErrListAccounts = errors.New("bucketsweep: list organization accounts failed")

	// ErrAssumeRole indicates that the delegated role could not be assumed
	ErrAssumeRole = errors.New("bucketsweep: assume role failed")

	// ErrMissingCredentials indicates that role assumption returned no usable credentials
	ErrMissingCredentials = errors.New("bucketsweep: missing credentials")

	// ErrListBuckets indicates that bucket listing in an account failed
	ErrListBuckets = errors.New("bucketsweep: list buckets failed")

	// ErrListVersions indicates that a page of object versions could not be listed
	ErrListVersions = errors.New("bucketsweep: list object versions failed")

	// ErrDeleteObjects indicates that a batched delete call failed or rejected records
	ErrDeleteObjects = errors.New("bucketsweep: delete objects failed")

	// ErrDeleteBucket indicates that the bucket deletion call failed
	ErrDeleteBucket = errors.New("bucketsweep: delete bucket failed")

	// ErrPurgeIncomplete indicates that not every version could be removed from a bucket
	ErrPurgeIncomplete = errors.New("bucketsweep: purge incomplete")

	// ErrBucketNotEmpty indicates that the bucket is not empty and cannot be deleted
	ErrBucketNotEmpty = errors.New("bucketsweep: bucket not empty")

	// ErrBucketNotFound indicates that the bucket does not exist
	ErrBucketNotFound = errors.New("bucketsweep: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("bucketsweep: access denied")

	// ErrInvalidCredentials indicates that the credentials were rejected or have expired
	ErrInvalidCredentials = errors.New("bucketsweep: invalid credentials")

	// ErrThrottled indicates that the provider throttled the request
	ErrThrottled = errors.New("bucketsweep: request throttled")

	// ErrRunFailed indicates that a run finished with account or bucket failures
	ErrRunFailed = errors.New("bucketsweep: run finished with failures")
)

// AWS error codes grouped by the sentinel they map to.
var (
	throttlingCodes = map[string]struct{}{
		"Throttling":                             {},
		"ThrottlingException":                    {},
		"ThrottledException":                     {},
		"TooManyRequestsException":               {},
		"RequestLimitExceeded":                   {},
		"RequestThrottled":                       {},
		"RequestThrottledException":              {},
		"SlowDown":                               {},
		"ProvisionedThroughputExceededException": {},
	}

	accessDeniedCodes = map[string]struct{}{
		"AccessDenied":                      {},
		"AccessDeniedException":             {},
		"AWSOrganizationsNotInUseException": {},
		"UnauthorizedOperation":             {},
	}

	credentialCodes = map[string]struct{}{
		"ExpiredToken":          {},
		"ExpiredTokenException": {},
		"InvalidAccessKeyId":    {},
		"InvalidClientTokenId":  {},
		"SignatureDoesNotMatch": {},
		"InvalidToken":          {},
	}
)

// Classify maps AWS SDK errors onto the sentinel errors of this package.
// The original error stays in the chain so callers can still inspect the
// smithy.APIError. Errors that match no known code are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.ErrorCode()
	switch {
	case code == "BucketNotEmpty":
		return fmt.Errorf("%w: %w", ErrBucketNotEmpty, err)
	case code == "NoSuchBucket":
		return fmt.Errorf("%w: %w", ErrBucketNotFound, err)
	case isIn(throttlingCodes, code):
		return fmt.Errorf("%w: %w", ErrThrottled, err)
	case isIn(accessDeniedCodes, code):
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case isIn(credentialCodes, code):
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	return err
}

func isIn(set map[string]struct{}, code string) bool {
	_, ok := set[code]
	return ok
}

// IsBucketNotEmpty checks if an error indicates that a bucket still holds objects.
func IsBucketNotEmpty(err error) bool {
	return errors.Is(err, ErrBucketNotEmpty)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsThrottled checks if an error indicates the provider throttled the request.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}

// IsInvalidInput checks if an error indicates invalid caller input.
func IsInvalidInput(err error) bool {
	return CodeOf(err) == CodeInvalidInput
}
