package models

import "time"

// Account represents a guardian account owning dependent profiles.
// IDs are assigned locally before the server ever sees the account,
// drawn from the provisional range [0, 1000).
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	PIN          int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountChanges is a partial update to an Account. A nil field means
// "unchanged"; a non-nil field overwrites the stored value.
type AccountChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
	PIN          *int
}

// IsEmpty reports whether no field is set
func (c AccountChanges) IsEmpty() bool {
	return c.Name == nil && c.Email == nil && c.PasswordHash == nil && c.PIN == nil
}
