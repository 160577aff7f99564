// Package session is the system of record for active bearer sessions:
// create, validate, revoke, list. A session pairs an opaque id with a
// high-entropy secret; only a slow salted hash of the secret is persisted,
// so a stolen database cannot be replayed as a cookie.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wordtrove/authd/account"
	"github.com/wordtrove/authd/internal/util"
	"github.com/wordtrove/authd/internal/uuid"
	"github.com/wordtrove/authd/storage"
)

// DefaultTTL is the absolute session lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

// secretLen is the raw secret size in bytes (256 bits of entropy).
const secretLen = 32

// Session is the persisted server-side session row. IP and UserAgent are
// descriptive metadata for the session list; they are never consulted during
// authorization.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SecretHash string    `json:"secret_hash"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Created is returned from Create. RawSecret exists only here and in
// transit; it is never persisted.
type Created struct {
	SessionID string
	RawSecret string
	ExpiresAt time.Time
}

// Entry is one row of a session listing. It deliberately omits the secret
// hash. Owner is populated only in admin listings.
type Entry struct {
	ID        string
	UserID    string
	IP        string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsCurrent bool
	Owner     *account.Profile
}

// Store manages session rows on top of a storage.Repository. The repository
// provides per-row atomicity; operations on different session ids never
// contend, and the slow secret hash is always computed outside any lock.
type Store struct {
	repo   storage.Repository
	dir    account.Directory
	ttl    time.Duration
	params util.Argon2idParams
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// WithHashParams overrides the Argon2id work factor.
func WithHashParams(params util.Argon2idParams) StoreOption {
	return func(s *Store) { s.params = params }
}

// WithClock overrides the time source. Tests use this to force expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(repo storage.Repository, dir account.Directory, opts ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		dir:    dir,
		ttl:    DefaultTTL,
		params: util.DefaultArgon2idParams(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create issues a new session for userID. The returned raw secret is the
// only copy that will ever exist outside the client.
func (s *Store) Create(ctx context.Context, userID, ip, userAgent string) (Created, error) {
	secret, err := util.RandomBytes(secretLen)
	if err != nil {
		return Created{}, err
	}
	rawSecret := base64.RawURLEncoding.EncodeToString(secret)
	util.WipeBytes(secret)

	secretHash, err := util.HashSecret(rawSecret, s.params)
	if err != nil {
		return Created{}, err
	}

	now := s.now().UTC()
	row := Session{
		ID:         uuid.New(),
		UserID:     userID,
		SecretHash: secretHash,
		IP:         ip,
		UserAgent:  userAgent,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
	data, err := json.Marshal(row)
	if err != nil {
		return Created{}, err
	}
	if err := s.repo.Put(storage.KindSession, row.ID, data); err != nil {
		return Created{}, err
	}
	return Created{SessionID: row.ID, RawSecret: rawSecret, ExpiresAt: row.ExpiresAt}, nil
}

// Validate authorizes a bearer token. Expiry is enforced here, lazily; an
// expired row is opportunistically deleted but validation never depends on
// the sweeper having run.
func (s *Store) Validate(ctx context.Context, sessionID, rawSecret string) (account.Identity, error) {
	row, err := s.load(sessionID)
	if err != nil {
		return account.Identity{}, err
	}
	if s.now().After(row.ExpiresAt) {
		_, _ = s.repo.Delete(storage.KindSession, sessionID)
		return account.Identity{}, ErrSessionExpired
	}
	ok, err := util.VerifySecret(rawSecret, row.SecretHash)
	if err != nil || !ok {
		return account.Identity{}, ErrSecretMismatch
	}
	user, err := s.dir.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			// The owning account is gone; the session authorizes nobody.
			_, _ = s.repo.Delete(storage.KindSession, sessionID)
			return account.Identity{}, ErrSessionNotFound
		}
		// A transient directory failure must not destroy the session.
		return account.Identity{}, fmt.Errorf("looking up session owner: %w", err)
	}
	return account.Identity{UserID: user.ID, IsAdmin: user.Admin}, nil
}

// Revoke deletes a session immediately and permanently. Only the owner or
// an admin may revoke. Two concurrent revokes of the same id both terminate:
// the repository's delete count decides which one reports ErrSessionNotFound.
func (s *Store) Revoke(ctx context.Context, sessionID, requesterID string, requesterIsAdmin bool) error {
	row, err := s.load(sessionID)
	if err != nil {
		return err
	}
	if s.now().After(row.ExpiresAt) {
		// An expired row is already absent as far as callers are concerned.
		_, _ = s.repo.Delete(storage.KindSession, sessionID)
		return ErrSessionNotFound
	}
	if row.UserID != requesterID && !requesterIsAdmin {
		return ErrForbidden
	}
	deleted, err := s.repo.Delete(storage.KindSession, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

// ListFor returns the sessions visible to the requester: all of them for an
// admin (each annotated with the owner's public profile), otherwise only the
// requester's own, flagged IsCurrent when the id matches currentSessionID.
func (s *Store) ListFor(ctx context.Context, requesterID string, requesterIsAdmin bool, currentSessionID string) ([]Entry, error) {
	ids, err := s.repo.List(storage.KindSession)
	if err != nil {
		return nil, err
	}
	now := s.now()
	profiles := make(map[string]*account.Profile)
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		row, err := s.load(id)
		if err != nil {
			continue
		}
		if now.After(row.ExpiresAt) {
			_, _ = s.repo.Delete(storage.KindSession, id)
			continue
		}
		if !requesterIsAdmin && row.UserID != requesterID {
			continue
		}
		e := Entry{
			ID:        row.ID,
			UserID:    row.UserID,
			IP:        row.IP,
			UserAgent: row.UserAgent,
			CreatedAt: row.CreatedAt,
			ExpiresAt: row.ExpiresAt,
			IsCurrent: row.ID == currentSessionID,
		}
		if requesterIsAdmin {
			profile, ok := profiles[row.UserID]
			if !ok {
				if user, err := s.dir.FindByID(ctx, row.UserID); err == nil {
					p := user.Profile()
					profile = &p
				}
				profiles[row.UserID] = profile
			}
			e.Owner = profile
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// SweepExpired deletes every expired session row and reports how many were
// removed. It exists purely to reclaim storage; correctness never depends
// on it (Validate enforces expiry on its own).
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.List(storage.KindSession)
	if err != nil {
		return 0, err
	}
	now := s.now()
	removed := 0
	for _, id := range ids {
		row, err := s.load(id)
		if err != nil {
			continue
		}
		if now.After(row.ExpiresAt) {
			deleted, err := s.repo.Delete(storage.KindSession, id)
			if err == nil && deleted {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *Store) load(sessionID string) (Session, error) {
	data, err := s.repo.Get(storage.KindSession, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	var row Session
	if err := json.Unmarshal(data, &row); err != nil {
		return Session{}, fmt.Errorf("decoding session row: %w", err)
	}
	return row, nil
}
