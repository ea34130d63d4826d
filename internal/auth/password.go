package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const (
	// TokenLength is the length of bearer tokens and password salts.
	// 64 characters over a 62 symbol alphabet carry about 381 bits.
	TokenLength = 64

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// largest multiple of len(alphabet) that fits in a byte, used to reject
// values that would bias the distribution
const maxUnbiased = 256 - 256%len(alphabet)

// GenerateRandomString returns n characters drawn uniformly from [A-Za-z0-9]
// using crypto/rand
func GenerateRandomString(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}

// GenerateToken creates a new bearer token
func GenerateToken() (string, error) {
	return GenerateRandomString(TokenLength)
}

// GenerateSalt creates a new password salt
func GenerateSalt() (string, error) {
	return GenerateRandomString(TokenLength)
}

// HashPassword returns base64(SHA256(password + salt))
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// VerifyPassword recomputes the hash with the stored salt and compares it in
// constant time
func VerifyPassword(password, salt, storedHash string) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// TokensEqual compares two tokens in constant time
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
