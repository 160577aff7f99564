// Package mfa issues and verifies the single-use numeric codes required
// before a session is created for accounts with a second factor enabled.
//
// Each user has at most one active challenge: issuing a new code overwrites
// any unconsumed one, and a code authenticates at most once. A consumed
// challenge is kept until its record expires so a replay is reported as
// "already used" rather than "not found".
package mfa

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/wordtrove/authd/internal/util"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 5 * time.Minute

const codeDigits = 6

// Challenge is a pending (or consumed) second-factor proof for one user.
type Challenge struct {
	UserID    string    `json:"user_id"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}

// Sender delivers a one-time code to the user. Delivery (email, SMS, push)
// belongs to the notification subsystem; this package only hands the code over.
type Sender interface {
	SendCode(ctx context.Context, userID, code string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, userID, code string) error

func (f SenderFunc) SendCode(ctx context.Context, userID, code string) error {
	return f(ctx, userID, code)
}

// ChallengeStore persists at most one challenge per user. Save overwrites
// any existing challenge for the same user.
type ChallengeStore interface {
	Save(ctx context.Context, ch Challenge) error
	// Get returns the stored challenge or ErrChallengeNotFound.
	Get(ctx context.Context, userID string) (Challenge, error)
	// Consume atomically flips the user's challenge to consumed. Exactly
	// one of any set of concurrent callers succeeds; the rest observe
	// ErrChallengeAlreadyUsed. Returns ErrChallengeNotFound if no
	// challenge is stored.
	Consume(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

// Manager drives the per-user challenge state machine: {no-pending, pending}.
type Manager struct {
	store  ChallengeStore
	sender Sender
	ttl    time.Duration
	now    func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL overrides the challenge lifetime.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock overrides the time source. Tests use this to force expiry.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(store ChallengeStore, sender Sender, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		sender: sender,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue generates a fresh 6-digit code for the user, invalidating any prior
// unconsumed code, and hands it to the sender. Returns the challenge expiry.
func (m *Manager) Issue(ctx context.Context, userID string) (time.Time, error) {
	code, err := util.RandomDigits(codeDigits)
	if err != nil {
		return time.Time{}, err
	}
	now := m.now().UTC()
	ch := Challenge{
		UserID:    userID,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	// Save keys by user, so this atomically replaces any earlier challenge.
	if err := m.store.Save(ctx, ch); err != nil {
		return time.Time{}, err
	}
	if err := m.sender.SendCode(ctx, userID, code); err != nil {
		// The code is undeliverable; drop it rather than leave a pending
		// challenge nobody can answer.
		_ = m.store.Delete(ctx, userID)
		return time.Time{}, err
	}
	return ch.ExpiresAt, nil
}

// Verify checks the submitted code against the user's pending challenge.
// On success the challenge is marked consumed and can never verify again.
// The consume step is atomic in the store, so concurrent submissions of the
// same correct code yield exactly one success.
func (m *Manager) Verify(ctx context.Context, userID, code string) error {
	ch, err := m.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if m.now().After(ch.ExpiresAt) {
		_ = m.store.Delete(ctx, userID)
		return ErrChallengeExpired
	}
	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
		return ErrChallengeMismatch
	}
	if ch.Consumed {
		return ErrChallengeAlreadyUsed
	}
	return m.store.Consume(ctx, userID)
}
