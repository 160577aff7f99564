package account

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two causes are never distinguished externally.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountUnverified indicates correct credentials for an account
	// that has not completed email verification.
	ErrAccountUnverified = errors.New("account not verified")
)
