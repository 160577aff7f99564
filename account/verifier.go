package account

import (
	"context"

	"github.com/wordtrove/authd/internal/util"
)

// Identity is the authenticated principal attached to a session.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// LoginResult is the tagged outcome of a successful credential check. When
// RequiresSecondFactor is set the caller must complete an MFA challenge
// before a session is issued; Identity is valid either way.
type LoginResult struct {
	Identity             Identity
	RequiresSecondFactor bool
}

// decoyHash is verified when no account matches the email, so a login
// attempt against an unknown address costs the same as one against a real
// account. The preimage is not retained anywhere.
const decoyHash = "$argon2id$v=19$m=65536,t=1,p=4$c2Vzc2lvbi1kZWNveS1zYWx0$VGOMBzOmGbM0KxPNyIoyLkG8pHRvDR2nYk5dqHJGE2o"

// Verifier checks email/password pairs against the account directory.
// It performs no writes.
type Verifier struct {
	dir Directory
}

func NewVerifier(dir Directory) *Verifier {
	return &Verifier{dir: dir}
}

// Verify authenticates the credential pair. Unknown email and wrong password
// both return ErrInvalidCredentials; the hash comparison is constant-time
// and runs even when the email is unknown. A correct pair against an
// unverified account returns ErrAccountUnverified.
func (v *Verifier) Verify(ctx context.Context, email, password string) (LoginResult, error) {
	user, lookupErr := v.dir.FindByEmail(ctx, util.NormalizeEmail(email))

	hash := user.PasswordHash
	if lookupErr != nil || hash == "" {
		hash = decoyHash
	}
	ok, err := util.VerifySecret(util.Normalize(password), hash)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if lookupErr != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !user.Verified {
		return LoginResult{}, ErrAccountUnverified
	}
	return LoginResult{
		Identity:             Identity{UserID: user.ID, IsAdmin: user.Admin},
		RequiresSecondFactor: user.MFAEnabled,
	}, nil
}
