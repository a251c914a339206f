// Package models defines the records persisted in the store.
package models

// User is an account, keyed by phone number.
type User struct {
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Phone          string   `json:"phone"`
	HashedPassword string   `json:"hashedPassword,omitempty"`
	TOSAgreement   bool     `json:"tosAgreement"`
	Checks         []string `json:"checks"`
}

// Public returns a copy safe to hand to API callers. Checks is never nil.
func (u User) Public() User {
	u.HashedPassword = ""
	u.Checks = append([]string{}, u.Checks...)
	return u
}

// HasCheck reports whether id is in the user's check set.
func (u *User) HasCheck(id string) bool {
	for _, c := range u.Checks {
		if c == id {
			return true
		}
	}
	return false
}

// RemoveCheck drops id from the check set and reports whether it was there.
func (u *User) RemoveCheck(id string) bool {
	for i, c := range u.Checks {
		if c == id {
			u.Checks = append(u.Checks[:i:i], u.Checks[i+1:]...)
			return true
		}
	}
	return false
}
