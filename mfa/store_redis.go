package mfa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const challengeKeyPrefix = "mfa:challenge"

// challengeRetention is how long a record outlives its own expiry. The
// manager reports "expired" for such records; once the key itself is gone
// the same attempt reports "not found". The extra window keeps the two
// distinguishable for recent challenges without retaining rows forever.
const challengeRetention = 10 * time.Minute

// RedisChallengeStore keeps challenges in Redis so multiple authd replicas
// can share pending-MFA state. Key TTLs bound the table size; the manager
// still checks ExpiresAt itself and never depends on Redis eviction timing.
type RedisChallengeStore struct {
	client *redis.Client
}

var _ ChallengeStore = (*RedisChallengeStore)(nil)

func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{client: client}
}

func (s *RedisChallengeStore) key(userID string) string {
	return challengeKeyPrefix + ":" + userID
}

func (s *RedisChallengeStore) Save(ctx context.Context, ch Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	ttl := time.Until(ch.ExpiresAt) + challengeRetention
	if err := s.client.Set(ctx, s.key(ch.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	return nil
}

func (s *RedisChallengeStore) Get(ctx context.Context, userID string) (Challenge, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Challenge{}, fmt.Errorf("%s: %w", userID, ErrChallengeNotFound)
		}
		return Challenge{}, fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	var ch Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return Challenge{}, fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	return ch, nil
}

// consumeAttempts bounds the optimistic-lock retry loop in Consume.
const consumeAttempts = 5

// Consume flips the challenge to consumed under a WATCH transaction. If a
// concurrent writer touches the key the transaction aborts and the loop
// re-reads, at which point the earlier winner's consumed flag is visible.
func (s *RedisChallengeStore) Consume(ctx context.Context, userID string) error {
	key := s.key(userID)
	for i := 0; i < consumeAttempts; i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return fmt.Errorf("%s: %w", userID, ErrChallengeNotFound)
				}
				return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
			}
			var ch Challenge
			if err := json.Unmarshal(data, &ch); err != nil {
				return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
			}
			if ch.Consumed {
				return ErrChallengeAlreadyUsed
			}
			ch.Consumed = true
			updated, err := json.Marshal(ch)
			if err != nil {
				return err
			}
			ttl, err := tx.PTTL(ctx, key).Result()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
			}
			if ttl < 0 {
				ttl = 0
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("%w: consume retries exhausted", ErrChallengeBackend)
}

func (s *RedisChallengeStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	return nil
}
