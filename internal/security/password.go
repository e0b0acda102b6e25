package security

import "golang.org/x/crypto/bcrypt"

// Cost 12 matches the hashes already present in production databases; changing
// it would only affect newly created accounts, but keep them comparable.
const bcryptCost = 12

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password. A mismatch
// returns bcrypt.ErrMismatchedHashAndPassword; a malformed hash returns a
// different error.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
