// Package throttle paces calls to the STS and S3 collaborators with a shared
// client-side rate limiter.
package throttle

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/time/rate"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/awsapi"
)

// NewLimiter returns a limiter allowing perSecond requests per second,
// or nil (unlimited) when perSecond is not positive.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// STS wraps api so that every call waits on limiter first.
// A nil limiter returns api unchanged.
func STS(api awsapi.STSAPI, limiter *rate.Limiter) awsapi.STSAPI {
	if limiter == nil {
		return api
	}
	return &stsClient{api: api, limiter: limiter}
}

// S3 wraps api so that every call waits on limiter first.
// A nil limiter returns api unchanged.
func S3(api awsapi.S3API, limiter *rate.Limiter) awsapi.S3API {
	if limiter == nil {
		return api
	}
	return &s3Client{api: api, limiter: limiter}
}

type stsClient struct {
	api     awsapi.STSAPI
	limiter *rate.Limiter
}

func (c *stsClient) AssumeRole(
	ctx context.Context,
	params *sts.AssumeRoleInput,
	optFns ...func(*sts.Options),
) (*sts.AssumeRoleOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.api.AssumeRole(ctx, params, optFns...)
}

type s3Client struct {
	api     awsapi.S3API
	limiter *rate.Limiter
}

func (c *s3Client) ListBuckets(
	ctx context.Context,
	params *s3.ListBucketsInput,
	optFns ...func(*s3.Options),
) (*s3.ListBucketsOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.api.ListBuckets(ctx, params, optFns...)
}

func (c *s3Client) ListObjectVersions(
	ctx context.Context,
	params *s3.ListObjectVersionsInput,
	optFns ...func(*s3.Options),
) (*s3.ListObjectVersionsOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.api.ListObjectVersions(ctx, params, optFns...)
}

func (c *s3Client) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.api.DeleteObjects(ctx, params, optFns...)
}

func (c *s3Client) DeleteBucket(
	ctx context.Context,
	params *s3.DeleteBucketInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteBucketOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.api.DeleteBucket(ctx, params, optFns...)
}

var (
	_ awsapi.STSAPI = (*stsClient)(nil)
	_ awsapi.S3API  = (*s3Client)(nil)
)
