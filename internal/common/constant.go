// Package common contains shared constants, sentinel errors and small helpers
// used across uptimekeeper components.
package common

// TokenHeaderName is the request header carrying the bearer token.
const TokenHeaderName = "token"

// Resource types. Each one is a logical table in the flat-file store.
const (
	ResourceUsers  = "users"
	ResourceTokens = "tokens"
	ResourceChecks = "checks"
)

const (
	// PhoneLength is the canonical length of a user's phone number.
	PhoneLength = 10

	// IDLength is the length of generated token and check identifiers.
	IDLength = 20
)
