// Package testutil provides stateful fakes of the sweep collaborators.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/awsapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// Call records one request made against a fake.
type Call struct {
	// Op is the API operation name, e.g. "DeleteObjects"
	Op string

	// Bucket is the bucket the call targeted, empty for ListBuckets
	Bucket string

	// Records is the number of records carried (DeleteObjects) or returned (ListObjectVersions)
	Records int

	// Region is the per-call region override, empty when none was set
	Region string
}

type fakeBucket struct {
	region string

	// records keeps deleted entries as tombstones so listing markers stay resolvable
	records []fakeRecord
}

type fakeRecord struct {
	sweeptypes.ObjectVersion
	deleted bool
}

func (b *fakeBucket) live() []sweeptypes.ObjectVersion {
	var out []sweeptypes.ObjectVersion
	for _, r := range b.records {
		if !r.deleted {
			out = append(out, r.ObjectVersion)
		}
	}
	return out
}

func (b *fakeBucket) remove(key, version string) {
	for i := range b.records {
		r := &b.records[i]
		if !r.deleted && r.Key == key && r.VersionID == version {
			r.deleted = true
			return
		}
	}
}

type injectedFailure struct {
	err   error
	times int // remaining failures; negative means always
}

func (f *injectedFailure) take() error {
	if f == nil || f.times == 0 {
		return nil
	}
	if f.times > 0 {
		f.times--
	}
	return f.err
}

// FakeS3 is an in-memory, versioned S3 account implementing awsapi.S3API.
// It is safe for concurrent use and records every call in order.
type FakeS3 struct {
	mu sync.Mutex

	// PageSize bounds the records returned per ListObjectVersions page (default 1000)
	PageSize int

	// IgnorePrefix makes ListBuckets ignore the server-side prefix filter
	IgnorePrefix bool

	order   []string
	buckets map[string]*fakeBucket

	listFailures         map[string]*injectedFailure
	deleteObjectFailures map[string]*injectedFailure
	deleteBucketFailures map[string]*injectedFailure
	refusedKeys          map[string]map[string]bool
	listBucketsFailure   *injectedFailure

	calls []Call
}

// NewFakeS3 creates an empty fake account.
func NewFakeS3() *FakeS3 {
	return &FakeS3{
		PageSize:             1000,
		buckets:              make(map[string]*fakeBucket),
		listFailures:         make(map[string]*injectedFailure),
		deleteObjectFailures: make(map[string]*injectedFailure),
		deleteBucketFailures: make(map[string]*injectedFailure),
		refusedKeys:          make(map[string]map[string]bool),
	}
}

// AddBucket adds a bucket holding the given records.
func (f *FakeS3) AddBucket(name string, records ...sweeptypes.ObjectVersion) *FakeS3 {
	return f.AddBucketInRegion(name, "", records...)
}

// AddBucketInRegion adds a bucket located in region holding the given records.
func (f *FakeS3) AddBucketInRegion(name, region string, records ...sweeptypes.ObjectVersion) *FakeS3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[name]; !ok {
		f.order = append(f.order, name)
	}
	b := &fakeBucket{region: region}
	for _, r := range records {
		b.records = append(b.records, fakeRecord{ObjectVersion: r})
	}
	f.buckets[name] = b
	return f
}

// FailListBuckets makes the next times ListBuckets calls fail with err (negative = always).
func (f *FakeS3) FailListBuckets(err error, times int) *FakeS3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listBucketsFailure = &injectedFailure{err: err, times: times}
	return f
}

// FailListVersions makes ListObjectVersions on bucket fail with err (negative times = always).
func (f *FakeS3) FailListVersions(bucket string, err error, times int) *FakeS3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFailures[bucket] = &injectedFailure{err: err, times: times}
	return f
}

// FailDeleteObjects makes DeleteObjects on bucket fail with err (negative times = always).
func (f *FakeS3) FailDeleteObjects(bucket string, err error, times int) *FakeS3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteObjectFailures[bucket] = &injectedFailure{err: err, times: times}
	return f
}

// FailDeleteBucket makes DeleteBucket on bucket fail with err (negative times = always).
func (f *FakeS3) FailDeleteBucket(bucket string, err error, times int) *FakeS3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteBucketFailures[bucket] = &injectedFailure{err: err, times: times}
	return f
}

// RefuseKey makes DeleteObjects report a per-record AccessDenied error for key in bucket.
func (f *FakeS3) RefuseKey(bucket, key string) *FakeS3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refusedKeys[bucket] == nil {
		f.refusedKeys[bucket] = make(map[string]bool)
	}
	f.refusedKeys[bucket][key] = true
	return f
}

// Calls returns a copy of every call made so far, in order.
func (f *FakeS3) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsFor returns the calls that targeted bucket, in order.
func (f *FakeS3) CallsFor(bucket string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Bucket == bucket {
			out = append(out, c)
		}
	}
	return out
}

// Buckets returns the names of the buckets that still exist, sorted.
func (f *FakeS3) Buckets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.buckets))
	for name := range f.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns the records still stored in bucket.
func (f *FakeS3) Records(bucket string) []sweeptypes.ObjectVersion {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[bucket]
	if !ok {
		return nil
	}
	return b.live()
}

func (f *FakeS3) record(call Call) {
	f.calls = append(f.calls, call)
}

// ListBuckets implements awsapi.S3API.
func (f *FakeS3) ListBuckets(
	_ context.Context,
	params *s3.ListBucketsInput,
	optFns ...func(*s3.Options),
) (*s3.ListBucketsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Op: "ListBuckets", Region: regionOf(optFns)})

	if err := f.listBucketsFailure.take(); err != nil {
		return nil, err
	}

	var names []string
	for _, name := range f.order {
		if _, ok := f.buckets[name]; !ok {
			continue
		}
		if !f.IgnorePrefix && params.Prefix != nil && !strings.HasPrefix(name, *params.Prefix) {
			continue
		}
		names = append(names, name)
	}

	start := 0
	if params.ContinuationToken != nil {
		n, err := strconv.Atoi(*params.ContinuationToken)
		if err != nil {
			return nil, APIError("InvalidArgument")
		}
		start = n
	}
	end := len(names)
	if params.MaxBuckets != nil && start+int(*params.MaxBuckets) < end {
		end = start + int(*params.MaxBuckets)
	}

	out := &s3.ListBucketsOutput{Prefix: params.Prefix}
	for _, name := range names[start:end] {
		b := f.buckets[name]
		bucket := types.Bucket{Name: aws.String(name)}
		if b.region != "" {
			bucket.BucketRegion = aws.String(b.region)
		}
		out.Buckets = append(out.Buckets, bucket)
	}
	if end < len(names) {
		out.ContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

// ListObjectVersions implements awsapi.S3API.
func (f *FakeS3) ListObjectVersions(
	_ context.Context,
	params *s3.ListObjectVersionsInput,
	optFns ...func(*s3.Options),
) (*s3.ListObjectVersionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.Bucket)
	call := Call{Op: "ListObjectVersions", Bucket: name, Region: regionOf(optFns)}

	if err := f.listFailures[name].take(); err != nil {
		f.record(call)
		return nil, err
	}

	b, ok := f.buckets[name]
	if !ok {
		f.record(call)
		return nil, APIError("NoSuchBucket")
	}

	start := 0
	if params.KeyMarker != nil {
		start = len(b.records)
		for i, r := range b.records {
			if r.Key == aws.ToString(params.KeyMarker) && r.VersionID == aws.ToString(params.VersionIdMarker) {
				start = i + 1
				break
			}
		}
	}

	pageSize := f.PageSize
	if params.MaxKeys != nil && int(*params.MaxKeys) < pageSize {
		pageSize = int(*params.MaxKeys)
	}

	var listed []sweeptypes.ObjectVersion
	next := start
	for ; next < len(b.records) && len(listed) < pageSize; next++ {
		if !b.records[next].deleted {
			listed = append(listed, b.records[next].ObjectVersion)
		}
	}
	truncated := false
	for _, r := range b.records[next:] {
		if !r.deleted {
			truncated = true
			break
		}
	}

	page := VersionPage(listed...)
	page.Name = params.Bucket
	page.IsTruncated = aws.Bool(truncated)
	if truncated {
		last := b.records[next-1]
		page.NextKeyMarker = aws.String(last.Key)
		page.NextVersionIdMarker = aws.String(last.VersionID)
	}

	call.Records = len(listed)
	f.record(call)
	return page, nil
}

// DeleteObjects implements awsapi.S3API.
func (f *FakeS3) DeleteObjects(
	_ context.Context,
	params *s3.DeleteObjectsInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.Bucket)
	var objects []types.ObjectIdentifier
	if params.Delete != nil {
		objects = params.Delete.Objects
	}
	f.record(Call{Op: "DeleteObjects", Bucket: name, Records: len(objects), Region: regionOf(optFns)})

	if err := f.deleteObjectFailures[name].take(); err != nil {
		return nil, err
	}
	if len(objects) > 1000 {
		return nil, APIError("MalformedXML")
	}

	b, ok := f.buckets[name]
	if !ok {
		return nil, APIError("NoSuchBucket")
	}

	out := &s3.DeleteObjectsOutput{}
	for _, obj := range objects {
		key, version := aws.ToString(obj.Key), aws.ToString(obj.VersionId)
		if f.refusedKeys[name][key] {
			out.Errors = append(out.Errors, types.Error{
				Key:       obj.Key,
				VersionId: obj.VersionId,
				Code:      aws.String("AccessDenied"),
				Message:   aws.String("Access Denied"),
			})
			continue
		}
		b.remove(key, version)
		out.Deleted = append(out.Deleted, types.DeletedObject{Key: obj.Key, VersionId: obj.VersionId})
	}
	return out, nil
}

// DeleteBucket implements awsapi.S3API.
func (f *FakeS3) DeleteBucket(
	_ context.Context,
	params *s3.DeleteBucketInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.Bucket)
	f.record(Call{Op: "DeleteBucket", Bucket: name, Region: regionOf(optFns)})

	if err := f.deleteBucketFailures[name].take(); err != nil {
		return nil, err
	}

	b, ok := f.buckets[name]
	if !ok {
		return nil, APIError("NoSuchBucket")
	}
	if len(b.live()) > 0 {
		return nil, APIError("BucketNotEmpty")
	}

	delete(f.buckets, name)
	return &s3.DeleteBucketOutput{}, nil
}

func regionOf(optFns []func(*s3.Options)) string {
	var o s3.Options
	for _, fn := range optFns {
		fn(&o)
	}
	return o.Region
}

// FakeSTS issues deterministic credentials and records every role ARN it was asked for.
type FakeSTS struct {
	mu       sync.Mutex
	failures map[string]error
	inputs   []sts.AssumeRoleInput
}

// NewFakeSTS creates a FakeSTS.
func NewFakeSTS() *FakeSTS {
	return &FakeSTS{failures: make(map[string]error)}
}

// FailAccount makes role assumption in accountID fail with err.
func (f *FakeSTS) FailAccount(accountID string, err error) *FakeSTS {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[accountID] = err
	return f
}

// Inputs returns every AssumeRole input received, in order.
func (f *FakeSTS) Inputs() []sts.AssumeRoleInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sts.AssumeRoleInput(nil), f.inputs...)
}

// RoleARNs returns the role ARNs of every AssumeRole call, in order.
func (f *FakeSTS) RoleARNs() []string {
	inputs := f.Inputs()
	arns := make([]string, 0, len(inputs))
	for _, in := range inputs {
		arns = append(arns, aws.ToString(in.RoleArn))
	}
	return arns
}

// AssumeRole implements awsapi.STSAPI.
func (f *FakeSTS) AssumeRole(
	_ context.Context,
	params *sts.AssumeRoleInput,
	_ ...func(*sts.Options),
) (*sts.AssumeRoleOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, *params)

	arn := aws.ToString(params.RoleArn)
	for accountID, err := range f.failures {
		if strings.Contains(arn, ":"+accountID+":") {
			return nil, err
		}
	}
	return AssumeRoleOutput(arn), nil
}

// AccountOf extracts the account id from an access key issued by FakeSTS.
func AccountOf(accessKeyID string) string {
	parts := strings.Split(accessKeyID, ":")
	if len(parts) < 5 {
		panic(fmt.Sprintf("testutil: unexpected access key %q", accessKeyID))
	}
	return parts[4]
}

var (
	_ awsapi.S3API  = (*FakeS3)(nil)
	_ awsapi.STSAPI = (*FakeSTS)(nil)
)
