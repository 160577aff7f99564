package api

import (
	"time"

	"github.com/wordtrove/authd/account"
)

// Login response statuses. A login either yields a session immediately or
// parks in the pending-MFA state until the code is verified.
const (
	LoginStatusOK          = "ok"
	LoginStatusMFARequired = "mfa_required"
)

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned from POST /auth/login and POST /auth/mfa/verify.
// UserID is set only in the pending-MFA state, where no cookie is issued.
type LoginResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id,omitempty"`
}

// VerifyMFARequest is the JSON body for POST /auth/mfa/verify.
type VerifyMFARequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

// MeResponse is returned from GET /me.
type MeResponse struct {
	User account.Profile `json:"user"`
}

// SessionSummary describes one session in a listing. The secret hash is
// never part of any response.
type SessionSummary struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	IP        string           `json:"ip,omitempty"`
	UserAgent string           `json:"user_agent,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
	IsCurrent bool             `json:"is_current,omitempty"`
	Owner     *account.Profile `json:"owner,omitempty"`
}

// ListSessionsResponse is returned from GET /sessions.
type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// ErrorResponse is returned for all error cases.
type ErrorResponse struct {
	Error string `json:"error"`
}
