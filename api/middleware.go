package api

import (
	"context"
	"net/http"

	"github.com/wordtrove/authd/account"
)

type contextKey int

const (
	identityKey contextKey = iota
	sessionIDKey
)

func withIdentity(ctx context.Context, id account.Identity, sessionID string) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func identityFromContext(ctx context.Context) (account.Identity, bool) {
	id, ok := ctx.Value(identityKey).(account.Identity)
	return id, ok
}

// sessionIDFromContext returns the id of the session that authorized the
// current request. Used to flag IsCurrent in listings and to let logout
// revoke the caller's own session.
func sessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// SessionGuard authenticates the bearer cookie before every protected
// operation. Decode failures are reported distinctly (missing vs malformed)
// for client diagnostics; every validation failure collapses to one opaque
// "invalid session" response so the specific reason never reaches an
// attacker. The concrete reason goes to the audit log only.
func (a *API) SessionGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, rawSecret, err := bearerFromRequest(r)
		if err != nil {
			switch {
			case err == ErrCookieMissing:
				writeError(w, http.StatusUnauthorized, "session cookie missing")
			default:
				writeError(w, http.StatusUnauthorized, "malformed session cookie")
			}
			return
		}

		identity, err := a.sessions.Validate(r.Context(), sessionID, rawSecret)
		if err != nil {
			a.audit.logFailure(AuditSessionInvalid, r, err.Error())
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		ctx := withIdentity(r.Context(), identity, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
