package validation

import (
	"strings"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
)

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		wantError bool
		errMsg    string
	}{
		{"valid_simple", "tmp-", false, ""},
		{"valid_single_char", "t", false, ""},
		{"valid_digit_start", "2024-", false, ""},
		{"valid_dots", "ci.build.", false, ""},
		{"valid_max_length", strings.Repeat("a", 63), false, ""},

		{"empty", "", true, "bucket prefix cannot be empty"},
		{"too_long", strings.Repeat("a", 64), true, "bucket prefix cannot exceed 63 characters"},
		{
			"uppercase",
			"Tmp-",
			true,
			"bucket prefix can only contain lowercase letters, numbers, dots, and hyphens",
		},
		{
			"wildcard",
			"tmp-*",
			true,
			"bucket prefix can only contain lowercase letters, numbers, dots, and hyphens",
		},
		{"leading_hyphen", "-tmp", true, "bucket prefix cannot start with a hyphen or dot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrefix(tt.prefix)
			if tt.wantError {
				if err == nil {
					t.Fatalf("ValidatePrefix(%q) expected error, got nil", tt.prefix)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidatePrefix(%q) error = %v, want error containing %q", tt.prefix, err, tt.errMsg)
				}
				if !errors.IsInvalidInput(err) {
					t.Errorf("ValidatePrefix(%q) error = %v, want invalid input", tt.prefix, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidatePrefix(%q) unexpected error = %v", tt.prefix, err)
			}
		})
	}
}

func TestValidateAccountID(t *testing.T) {
	tests := []struct {
		name      string
		accountID string
		wantError bool
	}{
		{"twelve_digits", "111111111111", false},
		{"leading_zero", "012345678901", false},
		{"short", "111", false},
		{"letters", "acct-a", false},
		{"empty", "", true},
		{"colon", "111:222", true},
		{"slash", "111/222", true},
		{"space", "111 222", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountID(tt.accountID)
			if (err != nil) != tt.wantError {
				t.Fatalf("ValidateAccountID(%q) error = %v, wantError %v", tt.accountID, err, tt.wantError)
			}
			if err != nil && !errors.IsInvalidInput(err) {
				t.Errorf("ValidateAccountID(%q) error = %v, want invalid input", tt.accountID, err)
			}
		})
	}
}

func TestValidateRoleName(t *testing.T) {
	tests := []struct {
		name      string
		roleName  string
		wantError bool
	}{
		{"default_role", "AWSCloudFormationStackSetExecutionRole", false},
		{"with_path", "service-role/cleanup", false},
		{"iam_chars", "role+=,.@_-name", false},
		{"max_length", strings.Repeat("r", 64), false},

		{"empty", "", true},
		{"too_long", strings.Repeat("r", 65), true},
		{"leading_slash", "/cleanup", true},
		{"trailing_slash", "cleanup/", true},
		{"empty_segment", "a//b", true},
		{"space", "my role", true},
		{"colon", "arn:role", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoleName(tt.roleName)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateRoleName(%q) error = %v, wantError %v", tt.roleName, err, tt.wantError)
			}
		})
	}
}

func TestValidateSessionName(t *testing.T) {
	tests := []struct {
		name        string
		sessionName string
		wantError   bool
	}{
		{"default", "delete-buckets", false},
		{"min_length", "ab", false},
		{"too_short", "a", true},
		{"too_long", strings.Repeat("s", 65), true},
		{"slash", "delete/buckets", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionName(tt.sessionName)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateSessionName(%q) error = %v, wantError %v", tt.sessionName, err, tt.wantError)
			}
		})
	}
}

func TestValidatePartition(t *testing.T) {
	for _, p := range []string{"aws", "aws-cn", "aws-us-gov"} {
		if err := ValidatePartition(p); err != nil {
			t.Errorf("ValidatePartition(%q) unexpected error = %v", p, err)
		}
	}
	for _, p := range []string{"", "AWS", "azure"} {
		if err := ValidatePartition(p); err == nil {
			t.Errorf("ValidatePartition(%q) expected error, got nil", p)
		}
	}
}

func TestValidatePageSize(t *testing.T) {
	tests := []struct {
		size      int32
		wantError bool
	}{
		{1, false},
		{1000, false},
		{0, true},
		{-5, true},
		{1001, true},
	}

	for _, tt := range tests {
		err := ValidatePageSize(tt.size)
		if (err != nil) != tt.wantError {
			t.Errorf("ValidatePageSize(%d) error = %v, wantError %v", tt.size, err, tt.wantError)
		}
	}
}
