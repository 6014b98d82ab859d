package sweeptypes

import "time"

// BucketResult is the outcome of sweeping one matching bucket.
type BucketResult struct {
	// Name is the bucket name
	Name string

	// Region is the region the bucket calls were sent to
	Region string

	// Purge is the outcome of draining the bucket's versions
	Purge PurgeResult

	// Deleted is true when the bucket itself was deleted
	Deleted bool

	// Attempts is the number of bucket deletion attempts made
	Attempts int

	// Err is the reason the bucket was not deleted, nil on success
	Err error
}

// Failed reports whether the bucket was left behind.
func (b BucketResult) Failed() bool {
	return b.Err != nil
}

// AccountResult is the outcome of sweeping one account.
type AccountResult struct {
	// Account is the swept account
	Account Account

	// Buckets holds one result per bucket matching the prefix, in listing order
	Buckets []BucketResult

	// Err is the account-level failure (role assumption, bucket listing), nil otherwise
	Err error
}

// Failed reports whether the account could not be processed.
func (a AccountResult) Failed() bool {
	return a.Err != nil
}

// Report summarises a complete sweep run.
type Report struct {
	// RunID uniquely identifies the run in logs
	RunID string

	// Prefix is the bucket name prefix that was matched
	Prefix string

	// Started and Finished bound the run
	Started  time.Time
	Finished time.Time

	// Ignored holds the accounts skipped because they were not ACTIVE
	Ignored []Account

	// Accounts holds one result per ACTIVE account, in directory order
	Accounts []AccountResult
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// AccountFailures returns the number of accounts that could not be processed.
func (r *Report) AccountFailures() int {
	n := 0
	for _, a := range r.Accounts {
		if a.Failed() {
			n++
		}
	}
	return n
}

// BucketFailures returns the number of matching buckets that were left behind.
func (r *Report) BucketFailures() int {
	n := 0
	for _, a := range r.Accounts {
		for _, b := range a.Buckets {
			if b.Failed() {
				n++
			}
		}
	}
	return n
}

// BucketsDeleted returns the number of buckets deleted during the run.
func (r *Report) BucketsDeleted() int {
	n := 0
	for _, a := range r.Accounts {
		for _, b := range a.Buckets {
			if b.Deleted {
				n++
			}
		}
	}
	return n
}

// ObjectsDeleted returns the number of object versions and delete markers removed.
func (r *Report) ObjectsDeleted() int {
	n := 0
	for _, a := range r.Accounts {
		for _, b := range a.Buckets {
			n += b.Purge.Deleted
		}
	}
	return n
}

// Failed reports whether any account or bucket failed.
func (r *Report) Failed() bool {
	return r.AccountFailures() > 0 || r.BucketFailures() > 0
}
