// Package bucketsweep deletes every bucket whose name starts with a prefix
// across all active accounts of an AWS organization.
//
// For each ACTIVE member account the Cleaner assumes a well-known role,
// lists the account's buckets, and for every match removes all object
// versions and delete markers before deleting the bucket itself. Failures
// are isolated per bucket and per account: a run keeps going and reports
// what it could not remove.
//
// Deletions are irreversible. There is no dry-run mode.
//
// Key features:
//   - Paginated account, bucket and version listings
//   - Per-page batched deletes bounded by the provider's 1000 record limit
//   - Bucket deletion only after a complete purge, retried while S3 catches up
//   - Bounded account concurrency and optional client-side rate limiting
//   - Structured logging through log/slog and a pluggable progress Reporter
//
// Example usage:
//
//	cleaner, err := bucketsweep.New(ctx, "tmp-",
//	    bucketsweep.WithRoleName("OrganizationAccountAccessRole"),
//	    bucketsweep.WithConcurrency(4),
//	)
//	if err != nil {
//	    return err
//	}
//
//	report, err := cleaner.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.BucketsDeleted(), "buckets deleted")
package bucketsweep
