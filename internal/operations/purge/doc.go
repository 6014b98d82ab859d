// Package purge drains every object version and delete marker from a bucket.
//
// Versions are listed one page at a time and each non-empty page is removed
// with S3's delete objects API, which accepts up to 1000 records per request.
// A bucket is only eligible for deletion once its purge is complete.
package purge
