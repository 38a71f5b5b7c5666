package models

import "errors"

// Transfer representations exchanged with the Story Squad service.
// The server returns subsets of the local entities; merge code must only
// touch the fields a representation actually carries. Each representation
// validates that its required fields survived the decode: a body that is
// valid JSON but missing them must not pass for a success.

// BearerToken is the payload of a successful register or login
type BearerToken struct {
	Token string `json:"token"`
}

func (b BearerToken) Validate() error {
	if b.Token == "" {
		return errors.New("response carries no token")
	}
	return nil
}

// AccountRepresentation is the server's view of the authenticated guardian.
// Only id and email are merged into the local account.
type AccountRepresentation struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func (r AccountRepresentation) Validate() error {
	if r.ID <= 0 {
		return errors.New("account representation carries no id")
	}
	if r.Email == "" {
		return errors.New("account representation carries no email")
	}
	return nil
}

// DependentRepresentation is the server's view of a child profile after a
// push update. The local id is never overwritten from it.
type DependentRepresentation struct {
	Username           string `json:"username"`
	Grade              int    `json:"grade"`
	Avatar             string `json:"avatar"`
	DyslexiaPreference bool   `json:"dyslexiaPreference"`
}

func (r DependentRepresentation) Validate() error {
	if r.Username == "" {
		return errors.New("dependent representation carries no username")
	}
	if r.Avatar == "" {
		return errors.New("dependent representation carries no avatar")
	}
	return nil
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	TermsOfService bool   `json:"termsOfService"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DependentUpdateRequest is the body of PUT /children/list/{id}
type DependentUpdateRequest struct {
	Username    string             `json:"username"`
	Preferences UpdatePreferences  `json:"preferences"`
	Grade       int                `json:"grade"`
}

// UpdatePreferences nests the dyslexia flag the way the endpoint expects
type UpdatePreferences struct {
	Dyslexia bool `json:"dyslexia"`
}

// Role distinguishes the guardian session from the dependent session
type Role string

const (
	RoleGuardian  Role = "guardian"
	RoleDependent Role = "dependent"
)

// Session is a persisted credential record for one role: the bearer token
// plus the email/password that produced it, kept for silent re-login.
type Session struct {
	Role     Role
	Token    string
	Email    string
	Password string
}
