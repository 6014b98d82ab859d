// Package accounts lists the member accounts of the organization.
//
// Every page of the organization's account listing is consumed. Accounts are
// returned in listing order; only ACTIVE accounts are eligible for sweeping.
package accounts
