package models

import "time"

// Token is a bearer credential. Expires holds Unix milliseconds.
type Token struct {
	ID      string `json:"id"`
	Phone   string `json:"phone"`
	Expires int64  `json:"expires"`
}

// ExpiresAt returns the expiry as a time.Time.
func (t Token) ExpiresAt() time.Time {
	return time.UnixMilli(t.Expires)
}

// ValidAt reports whether the token is still alive at now. Expiry is
// exclusive: a token expiring exactly at now is no longer valid.
func (t Token) ValidAt(now time.Time) bool {
	return t.Expires > now.UnixMilli()
}
