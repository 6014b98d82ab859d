// Package buckets lists an account's buckets and deletes emptied ones.
//
// Listing asks the provider to filter by name prefix and filters again on the
// client, so providers that ignore the server-side prefix are still safe.
// Deletion is retried while the provider reports the bucket as not yet empty
// or throttles the request.
package buckets
