package mfa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSender records delivered codes instead of sending them anywhere.
type captureSender struct {
	codes []string
	fail  error
}

func (c *captureSender) SendCode(_ context.Context, _ string, code string) error {
	if c.fail != nil {
		return c.fail
	}
	c.codes = append(c.codes, code)
	return nil
}

func (c *captureSender) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, c.codes, "no code was delivered")
	return c.codes[len(c.codes)-1]
}

func TestManager_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	sender := &captureSender{}
	m := NewManager(NewMemoryChallengeStore(), sender)

	expiresAt, err := m.Issue(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	code := sender.last(t)
	assert.Len(t, code, 6)

	require.NoError(t, m.Verify(ctx, "u-1", code))
}

func TestManager_VerifyFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("NoPendingChallenge", func(t *testing.T) {
		m := NewManager(NewMemoryChallengeStore(), &captureSender{})
		err := m.Verify(ctx, "u-1", "123456")
		assert.ErrorIs(t, err, ErrChallengeNotFound)
	})

	t.Run("Mismatch", func(t *testing.T) {
		sender := &captureSender{}
		m := NewManager(NewMemoryChallengeStore(), sender)
		_, err := m.Issue(ctx, "u-1")
		require.NoError(t, err)

		wrong := "000000"
		if sender.last(t) == wrong {
			wrong = "000001"
		}
		assert.ErrorIs(t, m.Verify(ctx, "u-1", wrong), ErrChallengeMismatch)
	})

	t.Run("Expired", func(t *testing.T) {
		sender := &captureSender{}
		now := time.Now()
		clock := func() time.Time { return now }
		m := NewManager(NewMemoryChallengeStore(), sender, WithClock(clock), WithTTL(time.Minute))
		_, err := m.Issue(ctx, "u-1")
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		assert.ErrorIs(t, m.Verify(ctx, "u-1", sender.last(t)), ErrChallengeExpired)
		// Expiry returns the user to no-pending.
		assert.ErrorIs(t, m.Verify(ctx, "u-1", sender.last(t)), ErrChallengeNotFound)
	})

	t.Run("Replay", func(t *testing.T) {
		sender := &captureSender{}
		m := NewManager(NewMemoryChallengeStore(), sender)
		_, err := m.Issue(ctx, "u-1")
		require.NoError(t, err)

		code := sender.last(t)
		require.NoError(t, m.Verify(ctx, "u-1", code))
		assert.ErrorIs(t, m.Verify(ctx, "u-1", code), ErrChallengeAlreadyUsed)
	})

	t.Run("ReissueInvalidatesPrior", func(t *testing.T) {
		sender := &captureSender{}
		m := NewManager(NewMemoryChallengeStore(), sender)
		_, err := m.Issue(ctx, "u-1")
		require.NoError(t, err)
		first := sender.last(t)

		_, err = m.Issue(ctx, "u-1")
		require.NoError(t, err)
		second := sender.last(t)

		if first == second {
			t.Skip("codes collided; nothing to distinguish")
		}
		assert.ErrorIs(t, m.Verify(ctx, "u-1", first), ErrChallengeMismatch)
		assert.NoError(t, m.Verify(ctx, "u-1", second))
	})

	t.Run("UndeliverableCodeLeavesNoPending", func(t *testing.T) {
		sender := &captureSender{fail: errors.New("smtp down")}
		m := NewManager(NewMemoryChallengeStore(), sender)
		_, err := m.Issue(ctx, "u-1")
		require.Error(t, err)
		assert.ErrorIs(t, m.Verify(ctx, "u-1", "123456"), ErrChallengeNotFound)
	})
}

func TestManager_ConcurrentVerifySingleSuccess(t *testing.T) {
	ctx := context.Background()
	sender := &captureSender{}
	m := NewManager(NewMemoryChallengeStore(), sender)

	_, err := m.Issue(ctx, "u-1")
	require.NoError(t, err)
	code := sender.last(t)

	const callers = 8
	results := make(chan error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		go func() {
			<-start
			results <- m.Verify(ctx, "u-1", code)
		}()
	}
	close(start)

	successes := 0
	for i := 0; i < callers; i++ {
		err := <-results
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrChallengeAlreadyUsed)
	}
	assert.Equal(t, 1, successes, "a code must authenticate at most once")
}

func TestManager_ChallengesAreIndependentPerUser(t *testing.T) {
	ctx := context.Background()
	sender := &captureSender{}
	m := NewManager(NewMemoryChallengeStore(), sender)

	_, err := m.Issue(ctx, "u-1")
	require.NoError(t, err)
	codeOne := sender.last(t)

	_, err = m.Issue(ctx, "u-2")
	require.NoError(t, err)
	codeTwo := sender.last(t)

	require.NoError(t, m.Verify(ctx, "u-1", codeOne))
	require.NoError(t, m.Verify(ctx, "u-2", codeTwo))
}
