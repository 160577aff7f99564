package mfa

import (
	"context"
	"fmt"
	"sync"
)

// MemoryChallengeStore is a thread-safe in-memory ChallengeStore.
// Challenges are lost on restart, which is acceptable: the caller simply
// logs in again.
type MemoryChallengeStore struct {
	mu   sync.RWMutex
	data map[string]Challenge
}

var _ ChallengeStore = (*MemoryChallengeStore)(nil)

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{data: make(map[string]Challenge)}
}

func (s *MemoryChallengeStore) Save(_ context.Context, ch Challenge) error {
	s.mu.Lock()
	s.data[ch.UserID] = ch
	s.mu.Unlock()
	return nil
}

func (s *MemoryChallengeStore) Get(_ context.Context, userID string) (Challenge, error) {
	s.mu.RLock()
	ch, ok := s.data[userID]
	s.mu.RUnlock()
	if !ok {
		return Challenge{}, fmt.Errorf("%s: %w", userID, ErrChallengeNotFound)
	}
	return ch, nil
}

func (s *MemoryChallengeStore) Consume(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.data[userID]
	if !ok {
		return fmt.Errorf("%s: %w", userID, ErrChallengeNotFound)
	}
	if ch.Consumed {
		return ErrChallengeAlreadyUsed
	}
	ch.Consumed = true
	s.data[userID] = ch
	return nil
}

func (s *MemoryChallengeStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.data, userID)
	s.mu.Unlock()
	return nil
}
