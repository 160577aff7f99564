package mfa

import "errors"

var (
	// ErrChallengeNotFound indicates no challenge is pending for the user.
	ErrChallengeNotFound = errors.New("mfa challenge not found")
	// ErrChallengeExpired indicates the pending challenge is past its TTL.
	ErrChallengeExpired = errors.New("mfa challenge expired")
	// ErrChallengeMismatch indicates the submitted code is wrong.
	ErrChallengeMismatch = errors.New("mfa code mismatch")
	// ErrChallengeAlreadyUsed indicates the code has already authenticated once.
	ErrChallengeAlreadyUsed = errors.New("mfa challenge already used")
	// ErrChallengeBackend wraps challenge store infrastructure failures.
	ErrChallengeBackend = errors.New("mfa challenge backend unavailable")
)
