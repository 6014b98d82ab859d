// Package testutil provides test helper functions.
package testutil

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/aws/smithy-go"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// BoolPtr returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return aws.Bool(b)
}

// APIError returns a smithy API error with the given code, the shape AWS SDK v2 errors take.
func APIError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code + " (test)"}
}

// Version returns an object version record.
func Version(key, versionID string) sweeptypes.ObjectVersion {
	return sweeptypes.ObjectVersion{Key: key, VersionID: versionID}
}

// Marker returns a delete-marker record.
func Marker(key, versionID string) sweeptypes.ObjectVersion {
	return sweeptypes.ObjectVersion{Key: key, VersionID: versionID, DeleteMarker: true}
}

// VersionPage builds one ListObjectVersions page holding the given records.
// Versions and delete markers keep their relative order.
func VersionPage(records ...sweeptypes.ObjectVersion) *s3.ListObjectVersionsOutput {
	page := &s3.ListObjectVersionsOutput{}
	for _, r := range records {
		if r.DeleteMarker {
			page.DeleteMarkers = append(page.DeleteMarkers, types.DeleteMarkerEntry{
				Key:       aws.String(r.Key),
				VersionId: aws.String(r.VersionID),
			})
			continue
		}
		page.Versions = append(page.Versions, types.ObjectVersion{
			Key:       aws.String(r.Key),
			VersionId: aws.String(r.VersionID),
		})
	}
	return page
}

// ChainVersionPages links pages through IsTruncated and next markers so they
// can be served in sequence. The last page is marked as not truncated.
func ChainVersionPages(pages ...*s3.ListObjectVersionsOutput) []*s3.ListObjectVersionsOutput {
	for i, page := range pages {
		if i == len(pages)-1 {
			page.IsTruncated = aws.Bool(false)
			page.NextKeyMarker = nil
			page.NextVersionIdMarker = nil
			continue
		}
		page.IsTruncated = aws.Bool(true)
		if page.NextKeyMarker == nil {
			page.NextKeyMarker = aws.String(fmt.Sprintf("key-marker-%d", i))
		}
		if page.NextVersionIdMarker == nil {
			page.NextVersionIdMarker = aws.String(fmt.Sprintf("version-marker-%d", i))
		}
	}
	return pages
}

// DeletedOutput confirms every record of a DeleteObjects request.
func DeletedOutput(params *s3.DeleteObjectsInput) *s3.DeleteObjectsOutput {
	out := &s3.DeleteObjectsOutput{}
	if params.Delete == nil {
		return out
	}
	for _, obj := range params.Delete.Objects {
		out.Deleted = append(out.Deleted, types.DeletedObject{
			Key:       obj.Key,
			VersionId: obj.VersionId,
		})
	}
	return out
}

// AccountsOutput builds a ListAccounts page.
func AccountsOutput(accounts ...sweeptypes.Account) *organizations.ListAccountsOutput {
	out := &organizations.ListAccountsOutput{}
	for _, a := range accounts {
		out.Accounts = append(out.Accounts, orgtypes.Account{
			Id:     aws.String(a.ID),
			Name:   aws.String(a.Name),
			Status: orgtypes.AccountStatus(a.Status),
		})
	}
	return out
}

// AssumeRoleOutput builds an AssumeRole response carrying credentials derived from the role ARN.
func AssumeRoleOutput(roleARN string) *sts.AssumeRoleOutput {
	return &sts.AssumeRoleOutput{
		Credentials: &ststypes.Credentials{
			AccessKeyId:     aws.String("ASIA" + roleARN),
			SecretAccessKey: aws.String("secret-" + roleARN),
			SessionToken:    aws.String("token-" + roleARN),
			Expiration:      aws.Time(time.Now().Add(time.Hour)),
		},
	}
}
