// Package testutil provides test data generators.
package testutil

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// GenerateVersions returns count records spread over keys, every markerEvery-th
// record being a delete marker (0 disables markers).
func GenerateVersions(count, markerEvery int) []sweeptypes.ObjectVersion {
	records := make([]sweeptypes.ObjectVersion, 0, count)
	for i := 0; i < count; i++ {
		record := sweeptypes.ObjectVersion{
			Key:       fmt.Sprintf("objects/%04d.txt", i/3),
			VersionID: fmt.Sprintf("v%06d", i),
		}
		if markerEvery > 0 && (i+1)%markerEvery == 0 {
			record.DeleteMarker = true
		}
		records = append(records, record)
	}
	return records
}

// GenerateVersionPages splits records into chained listing pages of at most pageSize records.
func GenerateVersionPages(records []sweeptypes.ObjectVersion, pageSize int) []*s3.ListObjectVersionsOutput {
	if pageSize <= 0 {
		pageSize = 1000
	}
	pages := make([]*s3.ListObjectVersionsOutput, 0, (len(records)+pageSize-1)/pageSize)
	for i := 0; i < len(records); i += pageSize {
		end := i + pageSize
		if end > len(records) {
			end = len(records)
		}
		pages = append(pages, VersionPage(records[i:end]...))
	}
	if len(pages) == 0 {
		pages = append(pages, VersionPage())
	}
	return ChainVersionPages(pages...)
}
