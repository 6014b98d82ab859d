package errors

import (
	"context"
	"errors"
)

// ErrorCode represents a class of failure during a sweep.
// Error codes are string-based for debuggability and natural log serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates the bucket (or another resource) does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates a resource state conflict, such as deleting a bucket that is not empty.
	CodeConflict ErrorCode = "CONFLICT"

	// Permission errors.

	// CodeUnauthorized indicates the credentials were rejected or have expired.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Infrastructure errors.

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCanceled indicates the run was canceled before the operation finished.
	CodeCanceled ErrorCode = "CANCELED"

	// CodeRateLimit indicates the provider throttled the request.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Execution errors.

	// CodeIncomplete indicates an operation only partially succeeded.
	CodeIncomplete ErrorCode = "INCOMPLETE"

	// CodeProvider indicates a provider call failed for an unclassified reason.
	CodeProvider ErrorCode = "PROVIDER_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Retryable reports whether failures with this code are worth retrying.
func (c ErrorCode) Retryable() bool {
	switch c {
	case CodeRateLimit, CodeTimeout:
		return true
	default:
		return false
	}
}

// CodeOf returns the ErrorCode that best describes err.
// It returns an empty code for a nil error.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrThrottled):
		return CodeRateLimit
	case errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrBucketNotEmpty):
		return CodeConflict
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrMissingCredentials):
		return CodeUnauthorized
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidPrefix),
		errors.Is(err, ErrInvalidAccountID),
		errors.Is(err, ErrInvalidRoleName):
		return CodeInvalidInput
	case errors.Is(err, ErrPurgeIncomplete):
		return CodeIncomplete
	case errors.Is(err, ErrListAccounts),
		errors.Is(err, ErrAssumeRole),
		errors.Is(err, ErrListBuckets),
		errors.Is(err, ErrListVersions),
		errors.Is(err, ErrDeleteObjects),
		errors.Is(err, ErrDeleteBucket):
		return CodeProvider
	default:
		return CodeUnknown
	}
}
