package common

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// NA marks a config value as intentionally unset.
const NA = "N/A"

// DefaultBcryptCost is used when a non-positive cost is configured.
const DefaultBcryptCost = 10

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// IsEmptyOrNA reports whether a value is blank or the N/A placeholder.
func IsEmptyOrNA(val string) bool {
	v := strings.TrimSpace(val)
	return v == "" || v == NA
}
