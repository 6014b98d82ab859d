// Package awsapi defines interfaces for the AWS operations a sweep needs, to enable testing and mocking.
package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// OrganizationsAPI is the organization-management collaborator.
type OrganizationsAPI interface {
	// ListAccounts lists the member accounts of the organization
	ListAccounts(
		ctx context.Context,
		params *organizations.ListAccountsInput,
		optFns ...func(*organizations.Options),
	) (*organizations.ListAccountsOutput, error)
}

// STSAPI is the security-token-issuing collaborator.
type STSAPI interface {
	// AssumeRole exchanges the caller identity for delegated credentials
	AssumeRole(
		ctx context.Context,
		params *sts.AssumeRoleInput,
		optFns ...func(*sts.Options),
	) (*sts.AssumeRoleOutput, error)
}

// S3API is the per-account storage collaborator.
type S3API interface {
	// ListBuckets lists the buckets owned by the account
	ListBuckets(
		ctx context.Context,
		params *s3.ListBucketsInput,
		optFns ...func(*s3.Options),
	) (*s3.ListBucketsOutput, error)

	// ListObjectVersions lists one page of object versions and delete markers
	ListObjectVersions(
		ctx context.Context,
		params *s3.ListObjectVersionsInput,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectVersionsOutput, error)

	// DeleteObjects deletes up to 1000 object versions in one call
	DeleteObjects(
		ctx context.Context,
		params *s3.DeleteObjectsInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)

	// DeleteBucket deletes an empty bucket
	DeleteBucket(
		ctx context.Context,
		params *s3.DeleteBucketInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteBucketOutput, error)
}

// Verify that the AWS SDK clients implement our interfaces
var (
	_ OrganizationsAPI = (*organizations.Client)(nil)
	_ STSAPI           = (*sts.Client)(nil)
	_ S3API            = (*s3.Client)(nil)
)
