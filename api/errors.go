package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wordtrove/authd/account"
	"github.com/wordtrove/authd/mfa"
	"github.com/wordtrove/authd/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeInternalError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

// mapError translates domain sentinels into HTTP responses. It is only used
// on paths whose reasons are safe to surface; guard-side session validation
// failures never reach it.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, account.ErrAccountUnverified):
		writeError(w, http.StatusForbidden, "account not verified")
	case errors.Is(err, mfa.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, "no pending challenge")
	case errors.Is(err, mfa.ErrChallengeExpired):
		writeError(w, http.StatusUnauthorized, "challenge expired")
	case errors.Is(err, mfa.ErrChallengeMismatch):
		writeError(w, http.StatusUnauthorized, "invalid code")
	case errors.Is(err, mfa.ErrChallengeAlreadyUsed):
		writeError(w, http.StatusConflict, "challenge already used")
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed to revoke this session")
	default:
		writeInternalError(w, "internal error", err)
	}
}
