package models

import "time"

// Dependent represents a child profile owned by exactly one Account.
// AccountID is a lookup reference only; the account row is the owner
// and deleting it removes its dependents.
type Dependent struct {
	ID                 int64
	AccountID          int64
	Name               string
	Username           string
	PIN                int
	Grade              int
	Cohort             string
	DyslexiaPreference bool
	Avatar             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DependentChanges is a partial update to a Dependent. A nil field means
// "unchanged"; a non-nil field overwrites the stored value.
type DependentChanges struct {
	Name               *string
	Username           *string
	PIN                *int
	Grade              *int
	Cohort             *string
	DyslexiaPreference *bool
	Avatar             *string
}

// IsEmpty reports whether no field is set
func (c DependentChanges) IsEmpty() bool {
	return c.Name == nil && c.Username == nil && c.PIN == nil && c.Grade == nil &&
		c.Cohort == nil && c.DyslexiaPreference == nil && c.Avatar == nil
}
