package utils

import (
	"crypto/rand"
	"fmt"

	gosimpleslug "github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomToken returns a URL-safe random string of the given length.
func GenerateRandomToken(length int) (string, error) {
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	b := make([]byte, length)
	for i, rb := range randomBytes {
		b[i] = tokenCharset[int(rb)%len(tokenCharset)]
	}
	return string(b), nil
}

// GenerateTempPassword returns a short random credential suitable for a
// first-login password that must be changed.
func GenerateTempPassword() (string, error) {
	return GenerateRandomToken(12)
}

// NormalizeSlug turns free-form input into a URL-safe campaign slug.
func NormalizeSlug(raw string) string {
	return gosimpleslug.Make(raw)
}

// IsValidSlug reports whether the input is already in canonical slug form.
func IsValidSlug(s string) bool {
	return s != "" && gosimpleslug.IsSlug(s)
}
