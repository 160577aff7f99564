package api

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Login handles POST /auth/login.
//
// The outcome is a tagged result: either a full session (cookie set) or a
// pending-MFA response carrying only the user id, never both. Credential
// failures are uniform regardless of whether the email was unknown or the
// password wrong.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	res, err := a.verifier.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		a.audit.logFailure(AuditLoginFailure, r, err.Error())
		mapError(w, err)
		return
	}

	if res.RequiresSecondFactor {
		if _, err := a.mfa.Issue(r.Context(), res.Identity.UserID); err != nil {
			writeInternalError(w, "failed to issue mfa challenge", err)
			return
		}
		a.audit.logEvent(AuditMFAChallengeIssued, r, res.Identity.UserID)
		writeJSON(w, http.StatusAccepted, LoginResponse{
			Status: LoginStatusMFARequired,
			UserID: res.Identity.UserID,
		})
		return
	}

	if !a.issueSession(w, r, res.Identity.UserID) {
		return
	}
	a.audit.logEvent(AuditLoginSuccess, r, res.Identity.UserID)
	writeJSON(w, http.StatusOK, LoginResponse{Status: LoginStatusOK})
}

// VerifyMFA handles POST /auth/mfa/verify. On success the response shape is
// identical to the non-MFA login path.
func (a *API) VerifyMFA(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[VerifyMFARequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if req.UserID == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "user_id and code are required")
		return
	}

	if err := a.mfa.Verify(r.Context(), req.UserID, req.Code); err != nil {
		a.audit.logFailure(AuditMFAVerifyFailure, r, err.Error())
		mapError(w, err)
		return
	}

	if !a.issueSession(w, r, req.UserID) {
		return
	}
	a.audit.logEvent(AuditMFAVerifySuccess, r, req.UserID)
	writeJSON(w, http.StatusOK, LoginResponse{Status: LoginStatusOK})
}

// Logout handles POST /auth/logout. It revokes the caller's own session if
// the cookie still names a live one and always clears the cookie.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID, rawSecret, err := bearerFromRequest(r); err == nil {
		if identity, err := a.sessions.Validate(r.Context(), sessionID, rawSecret); err == nil {
			_ = a.sessions.Revoke(r.Context(), sessionID, identity.UserID, identity.IsAdmin)
			a.audit.logEvent(AuditLogout, r, identity.UserID)
		}
	}
	clearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, struct{}{})
}

// Me handles GET /me. Returns the sanitized user for the current session;
// the password hash is never included.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}
	user, err := a.dir.FindByID(r.Context(), identity.UserID)
	if err != nil {
		writeInternalError(w, "failed to load account", err)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{User: user.Profile()})
}

// ListSessions handles GET /sessions. Admins see every session system-wide
// with owner summaries; everyone else sees only their own.
func (a *API) ListSessions(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}
	entries, err := a.sessions.ListFor(r.Context(), identity.UserID, identity.IsAdmin, sessionIDFromContext(r.Context()))
	if err != nil {
		writeInternalError(w, "failed to list sessions", err)
		return
	}

	resp := ListSessionsResponse{Sessions: make([]SessionSummary, 0, len(entries))}
	for _, e := range entries {
		resp.Sessions = append(resp.Sessions, SessionSummary{
			ID:        e.ID,
			UserID:    e.UserID,
			IP:        e.IP,
			UserAgent: e.UserAgent,
			CreatedAt: e.CreatedAt,
			ExpiresAt: e.ExpiresAt,
			IsCurrent: e.IsCurrent,
			Owner:     e.Owner,
		})
	}
	a.audit.logEvent(AuditSessionsListed, r, identity.UserID)
	writeJSON(w, http.StatusOK, resp)
}

// RevokeSession handles DELETE /sessions/{sessionID}. Revoking the caller's
// own session still completes this request with success; the logout takes
// effect starting from the next request.
func (a *API) RevokeSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	if err := a.sessions.Revoke(r.Context(), sessionID, identity.UserID, identity.IsAdmin); err != nil {
		mapError(w, err)
		return
	}
	if sessionID == sessionIDFromContext(r.Context()) {
		clearSessionCookie(w, r)
	}
	a.audit.logEvent(AuditSessionRevoked, r, identity.UserID)
	writeJSON(w, http.StatusOK, struct{}{})
}

// issueSession creates a session row, sets the bearer cookie, and reports
// whether it succeeded (writing the error response itself when not).
func (a *API) issueSession(w http.ResponseWriter, r *http.Request, userID string) bool {
	created, err := a.sessions.Create(r.Context(), userID, clientIP(r), r.UserAgent())
	if err != nil {
		writeInternalError(w, "failed to create session", err)
		return false
	}
	writeSessionCookie(w, r, encodeSessionCookie(created.SessionID, created.RawSecret), created.ExpiresAt)
	a.audit.logEvent(AuditSessionCreated, r, userID)
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
