package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of the password using the given cost.
// bcrypt generates a fresh random salt on every call, so two hashes of the
// same password never compare equal as strings.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
// It returns false on any mismatch and never panics on malformed input.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
