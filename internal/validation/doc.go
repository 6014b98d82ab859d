// Package validation provides centralized input validation logic.
// This includes bucket prefix checks, account id checks, IAM role and
// session naming rules, and the partition and page size limits.
//
// Caller inputs are validated before a sweep starts.
package validation
