package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrCredentialMismatch = errors.New("credential mismatch")

// MaxSecretBytes is the longest input bcrypt accepts.
const MaxSecretBytes = 72

// dummyHash keeps the unknown-account path as slow as a real comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-credential"), bcrypt.DefaultCost)

func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CompareSecret(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrCredentialMismatch
		}
		return err
	}
	return nil
}

// BurnComparison runs a comparison against a fixed hash and discards the result.
func BurnComparison(secret string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
}
