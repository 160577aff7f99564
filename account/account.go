// Package account exposes the identity facts this service reads from the
// account subsystem: who a user is, whether they are verified, whether they
// are an admin, and whether they have opted into a second factor. User
// records are owned elsewhere; everything here is a read-only view.
package account

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by a Directory when no user matches.
var ErrUserNotFound = errors.New("user not found")

// User is the account record as read from the account subsystem.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Verified     bool   `json:"verified"`
	Admin        bool   `json:"admin"`
	MFAEnabled   bool   `json:"mfa_enabled"`
}

// Profile is the sanitized projection of a User that is safe to return to
// clients. It never carries the password hash.
type Profile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Verified   bool   `json:"verified"`
	Admin      bool   `json:"admin"`
	MFAEnabled bool   `json:"mfa_enabled"`
}

// Profile returns the client-safe projection of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Email:      u.Email,
		Verified:   u.Verified,
		Admin:      u.Admin,
		MFAEnabled: u.MFAEnabled,
	}
}

// Directory is the read-only view of the account subsystem. Emails passed to
// FindByEmail must already be normalized with util.NormalizeEmail.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
}
