package purge

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweeperrors "github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

func TestPurge_TwoPagesTwoBatches(t *testing.T) {
	var batches [][]types.ObjectIdentifier
	client := testutil.NewMockBuilder().
		WithVersionPages(
			testutil.VersionPage(testutil.Version("a.txt", "1"), testutil.Version("a.txt", "2")),
			testutil.VersionPage(testutil.Marker("a.txt", "3")),
		).
		WithDeleteObjects(func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			batches = append(batches, params.Delete.Objects)
			return testutil.DeletedOutput(params), nil
		}).
		Build()

	result := New(client).Purge(context.Background(), "tmp-logs")

	require.NoError(t, result.Err)
	assert.True(t, result.Complete())
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 2, result.Batches)
	assert.Equal(t, 3, result.Deleted)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)
	assert.Equal(t, "3", aws.ToString(batches[1][0].VersionId))
}

func TestPurge_GeneratedPagesOneBatchEach(t *testing.T) {
	var sizes []int
	client := testutil.NewMockBuilder().
		WithVersionPages(testutil.GenerateVersionPages(testutil.GenerateVersions(10, 3), 4)...).
		WithDeleteObjects(func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			sizes = append(sizes, len(params.Delete.Objects))
			return testutil.DeletedOutput(params), nil
		}).
		Build()

	result := New(client).Purge(context.Background(), "tmp-generated")

	assert.True(t, result.Complete())
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, []int{4, 4, 2}, sizes)
	assert.Equal(t, 10, result.Deleted)
}

func TestPurge_EmptyBucketIssuesNoDelete(t *testing.T) {
	deleteCalls := 0
	client := testutil.NewMockBuilder().
		WithVersionPages(testutil.VersionPage()).
		WithDeleteObjects(func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			deleteCalls++
			return testutil.DeletedOutput(params), nil
		}).
		Build()

	result := New(client).Purge(context.Background(), "tmp-empty")

	assert.True(t, result.Complete())
	assert.Equal(t, 1, result.Pages)
	assert.Zero(t, result.Batches)
	assert.Zero(t, deleteCalls)
}

func TestPurge_EmptyPageInTheMiddleIsSkipped(t *testing.T) {
	deleteCalls := 0
	client := testutil.NewMockBuilder().
		WithVersionPages(
			testutil.VersionPage(testutil.Version("a", "1")),
			testutil.VersionPage(),
			testutil.VersionPage(testutil.Version("b", "1")),
		).
		WithDeleteObjects(func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			deleteCalls++
			return testutil.DeletedOutput(params), nil
		}).
		Build()

	result := New(client).Purge(context.Background(), "tmp-gaps")

	assert.True(t, result.Complete())
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 2, deleteCalls)
	assert.Equal(t, 2, result.Deleted)
}

func TestPurge_VersionsBeforeMarkers(t *testing.T) {
	var keys []string
	client := testutil.NewMockBuilder().
		WithVersionPages(testutil.VersionPage(
			testutil.Marker("m", "3"),
			testutil.Version("v", "1"),
		)).
		WithDeleteObjects(func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			for _, obj := range params.Delete.Objects {
				keys = append(keys, aws.ToString(obj.Key))
			}
			assert.False(t, aws.ToBool(params.Delete.Quiet))
			return testutil.DeletedOutput(params), nil
		}).
		Build()

	result := New(client).Purge(context.Background(), "tmp-order")

	require.True(t, result.Complete())
	assert.Equal(t, []string{"v", "m"}, keys)
}

func TestPurge_ListFailureStopsPurge(t *testing.T) {
	listErr := testutil.APIError("AccessDenied")
	client := testutil.NewMockBuilder().
		WithListObjectVersions(func(context.Context, *s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error) {
			return nil, listErr
		}).
		WithAllDeleted().
		Build()

	result := New(client).Purge(context.Background(), "tmp-denied")

	require.Error(t, result.Err)
	assert.False(t, result.Complete())
	assert.ErrorIs(t, result.Err, sweeperrors.ErrListVersions)
	assert.ErrorIs(t, result.Err, sweeperrors.ErrAccessDenied)
	assert.Zero(t, result.Pages)
}

func TestPurge_ListFailureOnLaterPage(t *testing.T) {
	fake := testutil.NewFakeS3().
		AddBucket("tmp-flaky", testutil.GenerateVersions(5, 0)...)
	fake.PageSize = 2

	calls := 0
	client := &testutil.MockS3Client{
		ListObjectVersionsFunc: func(ctx context.Context, params *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
			calls++
			if calls == 2 {
				return nil, testutil.APIError("InternalError")
			}
			return fake.ListObjectVersions(ctx, params, optFns...)
		},
		DeleteObjectsFunc: fake.DeleteObjects,
	}

	result := New(client).Purge(context.Background(), "tmp-flaky")

	require.Error(t, result.Err)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 2, result.Deleted)
	assert.Len(t, fake.Records("tmp-flaky"), 3)
}

func TestPurge_DeleteCallFailureStopsPurge(t *testing.T) {
	fake := testutil.NewFakeS3().
		AddBucket("tmp-broken", testutil.GenerateVersions(4, 0)...).
		FailDeleteObjects("tmp-broken", testutil.APIError("SlowDown"), -1)
	fake.PageSize = 2

	result := New(fake).Purge(context.Background(), "tmp-broken")

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, sweeperrors.ErrDeleteObjects)
	assert.ErrorIs(t, result.Err, sweeperrors.ErrThrottled)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 1, result.Batches)
	assert.Zero(t, result.Deleted)
}

func TestPurge_PerRecordFailuresAreCountedAndPurgeContinues(t *testing.T) {
	fake := testutil.NewFakeS3().
		AddBucket("tmp-locked",
			testutil.Version("locked.txt", "1"),
			testutil.Version("free.txt", "1"),
			testutil.Version("free.txt", "2"),
			testutil.Marker("other.txt", "1"),
		).
		RefuseKey("tmp-locked", "locked.txt")
	fake.PageSize = 2

	result := New(fake, WithPageSize(2)).Purge(context.Background(), "tmp-locked")

	require.NoError(t, result.Err)
	assert.False(t, result.Complete())
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 3, result.Deleted)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, sweeptypes.DeleteError{
		Key:       "locked.txt",
		VersionID: "1",
		Code:      "AccessDenied",
		Message:   "Access Denied",
	}, result.Errors[0])
}

func TestPurge_OversizedPageIsSplit(t *testing.T) {
	var sizes []int
	client := testutil.NewMockBuilder().
		WithVersionPages(testutil.VersionPage(testutil.GenerateVersions(5, 2)...)).
		WithDeleteObjects(func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			sizes = append(sizes, len(params.Delete.Objects))
			return testutil.DeletedOutput(params), nil
		}).
		Build()

	p := New(client)
	p.maxBatchSize = 2

	result := p.Purge(context.Background(), "tmp-big")

	require.True(t, result.Complete())
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 5, result.Deleted)
}

func TestPurge_ManyPagesAgainstFake(t *testing.T) {
	records := testutil.GenerateVersions(2500, 7)
	fake := testutil.NewFakeS3().AddBucket("tmp-many", records...)

	result := New(fake).Purge(context.Background(), "tmp-many")

	require.True(t, result.Complete())
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 2500, result.Deleted)
	assert.Empty(t, fake.Records("tmp-many"))
}

func TestPurge_RegionOverrideIsApplied(t *testing.T) {
	fake := testutil.NewFakeS3().AddBucket("tmp-eu", testutil.Version("a", "1"))

	result := New(fake).Purge(context.Background(), "tmp-eu", func(o *s3.Options) {
		o.Region = "eu-west-1"
	})

	require.True(t, result.Complete())
	for _, call := range fake.CallsFor("tmp-eu") {
		assert.Equal(t, "eu-west-1", call.Region, call.Op)
	}
}

func TestPurge_CanceledContext(t *testing.T) {
	fake := testutil.NewFakeS3().AddBucket("tmp-cancel", testutil.Version("a", "1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(fake).Purge(ctx, "tmp-cancel")

	assert.True(t, errors.Is(result.Err, context.Canceled))
	assert.Empty(t, fake.Calls())
}

func TestPaginator_PageSizeAndMarkers(t *testing.T) {
	var inputs []s3.ListObjectVersionsInput
	pages := testutil.ChainVersionPages(
		testutil.VersionPage(testutil.Version("a", "1")),
		testutil.VersionPage(testutil.Version("b", "1")),
	)
	client := &testutil.MockS3Client{
		ListObjectVersionsFunc: func(_ context.Context, params *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
			inputs = append(inputs, *params)
			return pages[len(inputs)-1], nil
		},
	}

	paginator := New(client, WithPageSize(50)).Paginate("tmp-page")
	for paginator.HasMorePages() {
		_, err := paginator.NextPage(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, inputs, 2)
	assert.Equal(t, int32(50), aws.ToInt32(inputs[0].MaxKeys))
	assert.Nil(t, inputs[0].KeyMarker)
	assert.Equal(t, "key-marker-0", aws.ToString(inputs[1].KeyMarker))
	assert.Equal(t, "version-marker-0", aws.ToString(inputs[1].VersionIdMarker))
}

func TestPaginator_TruncatedPageWithoutMarkersEnds(t *testing.T) {
	calls := 0
	client := &testutil.MockS3Client{
		ListObjectVersionsFunc: func(context.Context, *s3.ListObjectVersionsInput, ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
			calls++
			return &s3.ListObjectVersionsOutput{
				IsTruncated: testutil.BoolPtr(true),
				Versions:    []types.ObjectVersion{{Key: aws.String("a"), VersionId: aws.String("1")}},
			}, nil
		},
	}

	paginator := New(client).Paginate("tmp-loop")
	page, err := paginator.NextPage(context.Background())

	require.NoError(t, err)
	assert.Len(t, page.Records, 1)
	assert.False(t, paginator.HasMorePages())
	assert.Equal(t, 1, calls)
}

func TestWithPageSize_IgnoresOutOfRange(t *testing.T) {
	assert.Equal(t, int32(MaxBatchSize), New(nil, WithPageSize(0)).pageSize)
	assert.Equal(t, int32(MaxBatchSize), New(nil, WithPageSize(1001)).pageSize)
	assert.Equal(t, int32(10), New(nil, WithPageSize(10)).pageSize)
}
