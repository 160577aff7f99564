package api

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "wordtrove_session"

// cookieDelimiter joins the session id and raw secret inside the cookie
// value. The id is a UUID (hex plus dashes) and the secret uses the URL-safe
// base64 alphabet, so '.' cannot appear in either part.
const cookieDelimiter = "."

var (
	// ErrCookieMissing indicates no session cookie was presented.
	ErrCookieMissing = errors.New("session cookie missing")
	// ErrMalformedCookie indicates a cookie value that does not split into
	// two non-empty parts.
	ErrMalformedCookie = errors.New("malformed session cookie")
)

// encodeSessionCookie packs a session id and raw secret into one cookie
// value. Pure and stateless; the inverse of decodeSessionCookie.
func encodeSessionCookie(sessionID, rawSecret string) string {
	return sessionID + cookieDelimiter + rawSecret
}

// decodeSessionCookie splits a cookie value back into id and secret.
func decodeSessionCookie(value string) (sessionID, rawSecret string, err error) {
	if value == "" {
		return "", "", ErrCookieMissing
	}
	sessionID, rawSecret, found := strings.Cut(value, cookieDelimiter)
	if !found || sessionID == "" || rawSecret == "" {
		return "", "", ErrMalformedCookie
	}
	return sessionID, rawSecret, nil
}

// bearerFromRequest extracts and decodes the session cookie.
func bearerFromRequest(r *http.Request) (sessionID, rawSecret string, err error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", "", ErrCookieMissing
	}
	return decodeSessionCookie(cookie.Value)
}

func writeSessionCookie(w http.ResponseWriter, r *http.Request, value string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
