package purge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	sweeperrors "github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// MaxBatchSize is the largest number of records S3 accepts in one DeleteObjects call.
const MaxBatchSize = 1000

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectVersions(
		ctx context.Context,
		input *s3.ListObjectVersionsInput,
		opts ...func(*s3.Options),
	) (*s3.ListObjectVersionsOutput, error)
	DeleteObjects(
		ctx context.Context,
		input *s3.DeleteObjectsInput,
		opts ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
}

// Purger removes every version and delete marker from a bucket.
type Purger struct {
	client       S3Interface
	pageSize     int32
	maxBatchSize int
	logger       *slog.Logger
}

// Option configures a Purger.
type Option func(*Purger)

// WithPageSize sets the number of records requested per listing page.
func WithPageSize(size int32) Option {
	return func(p *Purger) {
		if size > 0 && size <= MaxBatchSize {
			p.pageSize = size
		}
	}
}

// WithLogger sets the logger used for per-page debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Purger) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a new Purger.
func New(client S3Interface, opts ...Option) *Purger {
	p := &Purger{
		client:       client,
		pageSize:     MaxBatchSize,
		maxBatchSize: MaxBatchSize,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Purge lists the bucket's versions page by page and deletes each non-empty
// page. A listing or request failure stops the purge; records the provider
// refuses individually are counted and the purge moves on to the next page.
// optFns are applied to every request, e.g. to route calls to the bucket's region.
func (p *Purger) Purge(ctx context.Context, bucket string, optFns ...func(*s3.Options)) sweeptypes.PurgeResult {
	start := time.Now()
	result := sweeptypes.PurgeResult{Bucket: bucket}

	paginator := p.Paginate(bucket, optFns...)
	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			result.Err = err
			break
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			result.Err = err
			break
		}
		result.Pages++

		if len(page.Records) == 0 {
			continue
		}

		if err := p.deleteRecords(ctx, bucket, page.Records, &result, optFns); err != nil {
			result.Err = err
			break
		}

		p.logger.Debug("purged page",
			"bucket", bucket,
			"page", result.Pages,
			"records", len(page.Records),
			"deleted", result.Deleted,
			"failed", result.Failed,
		)
	}

	result.Duration = time.Since(start)
	return result
}

// deleteRecords removes one page of records, splitting it into requests of
// at most maxBatchSize records.
func (p *Purger) deleteRecords(
	ctx context.Context,
	bucket string,
	records []sweeptypes.ObjectVersion,
	result *sweeptypes.PurgeResult,
	optFns []func(*s3.Options),
) error {
	for i := 0; i < len(records); i += p.maxBatchSize {
		end := i + p.maxBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.deleteBatch(ctx, bucket, records[i:end], result, optFns); err != nil {
			return err
		}
	}
	return nil
}

// deleteBatch handles a single DeleteObjects request.
func (p *Purger) deleteBatch(
	ctx context.Context,
	bucket string,
	records []sweeptypes.ObjectVersion,
	result *sweeptypes.PurgeResult,
	optFns []func(*s3.Options),
) error {
	objects := make([]types.ObjectIdentifier, 0, len(records))
	for _, r := range records {
		objects = append(objects, types.ObjectIdentifier{
			Key:       aws.String(r.Key),
			VersionId: aws.String(r.VersionID),
		})
	}

	input := &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false), // Get detailed results
		},
	}

	result.Batches++
	output, err := p.client.DeleteObjects(ctx, input, optFns...)
	if err != nil {
		return fmt.Errorf("%w: %w", sweeperrors.ErrDeleteObjects, sweeperrors.Classify(err))
	}

	result.Deleted += len(output.Deleted)
	for _, e := range output.Errors {
		result.Failed++
		result.Errors = append(result.Errors, sweeptypes.DeleteError{
			Key:       aws.ToString(e.Key),
			VersionID: aws.ToString(e.VersionId),
			Code:      aws.ToString(e.Code),
			Message:   aws.ToString(e.Message),
		})
	}
	return nil
}

// Page is one page of a bucket's version listing.
type Page struct {
	// Records holds the page's versions followed by its delete markers
	Records []sweeptypes.ObjectVersion
}

// Paginate creates a paginator over the bucket's versions and delete markers.
func (p *Purger) Paginate(bucket string, optFns ...func(*s3.Options)) *Paginator {
	return &Paginator{
		client:    p.client,
		bucket:    bucket,
		pageSize:  p.pageSize,
		optFns:    optFns,
		firstPage: true,
	}
}

// Paginator walks a bucket's version listing through key and version markers.
type Paginator struct {
	client          S3Interface
	bucket          string
	pageSize        int32
	optFns          []func(*s3.Options)
	keyMarker       *string
	versionIDMarker *string
	hasMorePages    bool
	firstPage       bool
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// NextPage fetches the next page of results.
func (p *Paginator) NextPage(ctx context.Context) (*Page, error) {
	input := &s3.ListObjectVersionsInput{
		Bucket:  aws.String(p.bucket),
		MaxKeys: aws.Int32(p.pageSize),
	}
	if !p.firstPage {
		input.KeyMarker = p.keyMarker
		input.VersionIdMarker = p.versionIDMarker
	}

	output, err := p.client.ListObjectVersions(ctx, input, p.optFns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sweeperrors.ErrListVersions, sweeperrors.Classify(err))
	}

	p.firstPage = false
	p.hasMorePages = aws.ToBool(output.IsTruncated)
	p.keyMarker = output.NextKeyMarker
	p.versionIDMarker = output.NextVersionIdMarker

	// A truncated page without markers would be fetched forever.
	if p.hasMorePages && p.keyMarker == nil && p.versionIDMarker == nil {
		p.hasMorePages = false
	}

	return convertOutput(output), nil
}

// convertOutput converts S3 output to a Page, versions first.
func convertOutput(output *s3.ListObjectVersionsOutput) *Page {
	page := &Page{
		Records: make([]sweeptypes.ObjectVersion, 0, len(output.Versions)+len(output.DeleteMarkers)),
	}
	for _, v := range output.Versions {
		page.Records = append(page.Records, sweeptypes.ObjectVersion{
			Key:       aws.ToString(v.Key),
			VersionID: aws.ToString(v.VersionId),
		})
	}
	for _, m := range output.DeleteMarkers {
		page.Records = append(page.Records, sweeptypes.ObjectVersion{
			Key:          aws.ToString(m.Key),
			VersionID:    aws.ToString(m.VersionId),
			DeleteMarker: true,
		})
	}
	return page
}
