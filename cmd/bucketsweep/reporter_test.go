package main

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

func TestColorReporter_Lines(t *testing.T) {
	var buf bytes.Buffer
	r := newColorReporter(&buf, true)

	r.AccountIgnored(sweeptypes.Account{ID: acctB, Status: sweeptypes.AccountStatusSuspended})
	r.AccountStarted(acctA)
	r.BucketDeleted(acctA, "tmp-one", sweeptypes.PurgeResult{Deleted: 3})
	r.PurgeFailed(acctA, "tmp-two", sweeptypes.PurgeResult{
		Failed: 1,
		Errors: []sweeptypes.DeleteError{{Key: "a", VersionID: "v1", Code: "AccessDenied", Message: "Access Denied"}},
	})
	r.BucketFailed(acctA, "tmp-three", fmt.Errorf("bucket not empty"))
	r.AccountFailed(acctB, fmt.Errorf("assume role failed"))

	want := []string{
		"Ignoring account " + acctB + ", which is SUSPENDED",
		"In account: " + acctA,
		"\tDeleted bucket: tmp-one",
		"\tCOULD NOT delete objects in bucket tmp-two: bucketsweep: purge incomplete: 1 record(s) not deleted, first a (version v1): AccessDenied: Access Denied",
		"\tCOULD NOT delete bucket tmp-three: bucket not empty",
		"COULD NOT process account " + acctB + ": assume role failed",
	}
	assert.Equal(t, strings.Join(want, "\n")+"\n", buf.String())
}

func TestColorReporter_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := newColorReporter(&buf, true)
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r.Summary(&sweeptypes.Report{
		RunID:    "run-1",
		Started:  started,
		Finished: started.Add(1500 * time.Millisecond),
		Ignored:  []sweeptypes.Account{{ID: acctB}},
		Accounts: []sweeptypes.AccountResult{{
			Account: sweeptypes.Account{ID: acctA},
			Buckets: []sweeptypes.BucketResult{
				{Name: "tmp-one", Deleted: true, Purge: sweeptypes.PurgeResult{Deleted: 4}},
				{Name: "tmp-two", Err: fmt.Errorf("denied")},
			},
		}},
	})

	assert.Equal(t,
		"Run run-1: 1 bucket(s) deleted, 4 object version(s) removed, 1 bucket(s) failed, 0 account(s) failed, 1 account(s) ignored in 1.5s\n",
		buf.String())
}

func TestColorReporter_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	r := newColorReporter(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.AccountStarted(fmt.Sprintf("%012d", i))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Regexp(t, `^In account: \d{12}$`, line)
	}
}
