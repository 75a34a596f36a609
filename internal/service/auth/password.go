package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnsupportedHash is returned for a stored hash in neither argon2id nor
// bcrypt format.
var ErrUnsupportedHash = errors.New("unsupported password hash format")

// HashPassword hashes plain with argon2id using the library defaults.
func HashPassword(plain string) (string, error) {
	hash, err := argon2id.CreateHash(plain, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether plain matches hash. Hashes written by the
// previous dashboard are bcrypt ($2a$, $2b$, $2y$); new ones are argon2id.
func VerifyPassword(plain, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		ok, err := argon2id.ComparePasswordAndHash(plain, hash)
		if err != nil {
			return false, fmt.Errorf("verify argon2id: %w", err)
		}
		return ok, nil
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("verify bcrypt: %w", err)
		}
		return true, nil
	default:
		return false, ErrUnsupportedHash
	}
}

// NeedsRehash reports whether hash should be replaced by an argon2id hash
// the next time the plain password is known.
func NeedsRehash(hash string) bool {
	return !strings.HasPrefix(hash, "$argon2id$")
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// burnVerify spends about as long as a real verification so unknown emails
// cannot be told apart from wrong passwords by timing.
func burnVerify(plain string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("portfolio-admin-dummy-password")
	})
	if dummyHash != "" {
		_, _ = VerifyPassword(plain, dummyHash)
	}
}
