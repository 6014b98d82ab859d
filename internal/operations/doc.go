// Package operations contains the core sweep operation implementations.
// These packages handle the low-level AWS SDK interactions: listing the
// organization's accounts, assuming a role in each account, listing and
// deleting buckets, and purging every object version from a bucket.
//
// Each operation is isolated into its own subpackage for better organization
// and testability.
package operations
