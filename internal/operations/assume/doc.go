// Package assume obtains delegated credentials for a member account by
// assuming a well-known role in it.
package assume
