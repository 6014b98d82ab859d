package validation

import (
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
)

const (
	maxBucketNameLength  = 63
	maxRoleNameLength    = 64
	maxRolePathLength    = 512
	minSessionNameLength = 2
	maxSessionNameLength = 64
	maxPageSize          = 1000
)

// partitions lists the AWS partitions a role ARN may live in.
var partitions = map[string]struct{}{
	"aws":        {},
	"aws-cn":     {},
	"aws-us-gov": {},
	"aws-iso":    {},
	"aws-iso-b":  {},
	"aws-iso-e":  {},
	"aws-iso-f":  {},
	"aws-eusc":   {},
}

// ValidatePrefix validates the bucket name prefix a sweep matches against.
// Matching is case-sensitive and bucket names are lowercase, so a prefix
// that could never match a valid bucket name is rejected.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return errors.NewError("validatePrefix", errors.ErrInvalidPrefix).
			WithMessage("bucket prefix cannot be empty")
	}

	if len(prefix) > maxBucketNameLength {
		return errors.NewError("validatePrefix", errors.ErrInvalidPrefix).
			WithMessage(fmt.Sprintf("bucket prefix cannot exceed %d characters", maxBucketNameLength))
	}

	for _, char := range prefix {
		if !isValidBucketChar(char) {
			return errors.NewError("validatePrefix", errors.ErrInvalidPrefix).
				WithMessage("bucket prefix can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	if prefix[0] == '-' || prefix[0] == '.' {
		return errors.NewError("validatePrefix", errors.ErrInvalidPrefix).
			WithMessage("bucket prefix cannot start with a hyphen or dot")
	}

	return nil
}

// ValidateAccountID rejects account identifiers that cannot be placed in a
// role ARN. Identifiers are otherwise opaque.
func ValidateAccountID(accountID string) error {
	if accountID == "" {
		return errors.NewError("validateAccountID", errors.ErrInvalidAccountID).
			WithMessage("account id cannot be empty")
	}

	if strings.ContainsAny(accountID, ":/ ") {
		return errors.NewError("validateAccountID", errors.ErrInvalidAccountID).
			WithAccount(accountID).
			WithMessage("account id cannot contain colons, slashes or spaces")
	}

	return nil
}

// ValidateRoleName validates an IAM role name, optionally preceded by a role path
// such as "service-role/cleanup".
func ValidateRoleName(roleName string) error {
	if roleName == "" {
		return errors.NewError("validateRoleName", errors.ErrInvalidRoleName).
			WithMessage("role name cannot be empty")
	}

	if strings.HasPrefix(roleName, "/") || strings.HasSuffix(roleName, "/") || strings.Contains(roleName, "//") {
		return errors.NewError("validateRoleName", errors.ErrInvalidRoleName).
			WithMessage("role path segments cannot be empty")
	}

	name := roleName
	if i := strings.LastIndex(roleName, "/"); i >= 0 {
		if i+1 > maxRolePathLength {
			return errors.NewError("validateRoleName", errors.ErrInvalidRoleName).
				WithMessage(fmt.Sprintf("role path cannot exceed %d characters", maxRolePathLength))
		}
		name = roleName[i+1:]
	}

	if len(name) > maxRoleNameLength {
		return errors.NewError("validateRoleName", errors.ErrInvalidRoleName).
			WithMessage(fmt.Sprintf("role name cannot exceed %d characters", maxRoleNameLength))
	}

	for _, char := range roleName {
		if char != '/' && !isIAMNameChar(char) {
			return errors.NewError("validateRoleName", errors.ErrInvalidRoleName).
				WithMessage("role name can only contain alphanumerics and +=,.@_-")
		}
	}

	return nil
}

// ValidateSessionName validates an STS role session name.
func ValidateSessionName(sessionName string) error {
	if len(sessionName) < minSessionNameLength || len(sessionName) > maxSessionNameLength {
		return errors.NewError("validateSessionName", errors.ErrInvalidRoleName).
			WithMessage(fmt.Sprintf(
				"session name must be between %d and %d characters long",
				minSessionNameLength, maxSessionNameLength,
			))
	}

	for _, char := range sessionName {
		if !isIAMNameChar(char) {
			return errors.NewError("validateSessionName", errors.ErrInvalidRoleName).
				WithMessage("session name can only contain alphanumerics and +=,.@_-")
		}
	}

	return nil
}

// ValidatePartition validates that an ARN partition is a known AWS partition.
func ValidatePartition(partition string) error {
	if _, ok := partitions[partition]; !ok {
		return errors.NewError("validatePartition", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unknown partition %q", partition))
	}
	return nil
}

// ValidatePageSize validates a version listing page size.
func ValidatePageSize(pageSize int32) error {
	if pageSize < 1 || pageSize > maxPageSize {
		return errors.NewError("validatePageSize", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("page size must be between 1 and %d", maxPageSize))
	}
	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// isIAMNameChar checks if a character is valid in IAM role and session names
func isIAMNameChar(char rune) bool {
	switch {
	case char >= '0' && char <= '9', char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z':
		return true
	}
	return strings.ContainsRune("+=,.@_-", char)
}
