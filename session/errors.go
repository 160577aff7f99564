package session

import "errors"

var (
	// ErrSessionNotFound indicates no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates the session is past its absolute deadline.
	ErrSessionExpired = errors.New("session expired")
	// ErrSecretMismatch indicates the presented secret does not hash to the
	// stored value.
	ErrSecretMismatch = errors.New("session secret mismatch")
	// ErrForbidden indicates the requester neither owns the session nor is
	// an admin.
	ErrForbidden = errors.New("forbidden")
)
