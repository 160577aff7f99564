package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordtrove/authd/internal/util"
)

var testParams = util.Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func seedUser(t *testing.T, dir *MemoryDirectory, u User, password string) {
	t.Helper()
	hash, err := util.HashSecret(util.Normalize(password), testParams)
	require.NoError(t, err)
	u.PasswordHash = hash
	dir.Add(u)
}

func TestVerifier_Verify(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()
	seedUser(t, dir, User{ID: "u-1", Email: "ada@example.com", Verified: true}, "correct-password")
	seedUser(t, dir, User{ID: "u-2", Email: "grace@example.com", Verified: true, Admin: true, MFAEnabled: true}, "navy-password")
	seedUser(t, dir, User{ID: "u-3", Email: "new@example.com", Verified: false}, "fresh-password")
	v := NewVerifier(dir)

	t.Run("Success", func(t *testing.T) {
		res, err := v.Verify(ctx, "ada@example.com", "correct-password")
		require.NoError(t, err)
		assert.Equal(t, "u-1", res.Identity.UserID)
		assert.False(t, res.Identity.IsAdmin)
		assert.False(t, res.RequiresSecondFactor)
	})

	t.Run("NormalizedEmail", func(t *testing.T) {
		res, err := v.Verify(ctx, "  Ada@Example.COM ", "correct-password")
		require.NoError(t, err)
		assert.Equal(t, "u-1", res.Identity.UserID)
	})

	t.Run("SecondFactorFlag", func(t *testing.T) {
		res, err := v.Verify(ctx, "grace@example.com", "navy-password")
		require.NoError(t, err)
		assert.True(t, res.Identity.IsAdmin)
		assert.True(t, res.RequiresSecondFactor)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := v.Verify(ctx, "ada@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmailSameError", func(t *testing.T) {
		_, unknownErr := v.Verify(ctx, "nobody@example.com", "whatever")
		_, wrongErr := v.Verify(ctx, "ada@example.com", "wrong-password")
		assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		// An attacker must not be able to tell the two apart.
		assert.Equal(t, wrongErr.Error(), unknownErr.Error())
	})

	t.Run("Unverified", func(t *testing.T) {
		_, err := v.Verify(ctx, "new@example.com", "fresh-password")
		assert.ErrorIs(t, err, ErrAccountUnverified)
	})

	t.Run("NoSideEffects", func(t *testing.T) {
		before, err := dir.FindByID(ctx, "u-1")
		require.NoError(t, err)
		_, _ = v.Verify(ctx, "ada@example.com", "correct-password")
		after, err := dir.FindByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}
