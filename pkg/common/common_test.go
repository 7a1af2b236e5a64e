package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hashed)
	assert.True(t, CheckPassword(hashed, "hunter2"))
	assert.False(t, CheckPassword(hashed, "hunter3"))

	// a fresh salt every time
	again, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again)
}

func TestHashPasswordDefaultCost(t *testing.T) {
	hashed, err := HashPassword("secret", 0)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-hash", "secret"))
}

func TestIsEmptyOrNA(t *testing.T) {
	assert.True(t, IsEmptyOrNA(""))
	assert.True(t, IsEmptyOrNA("  "))
	assert.True(t, IsEmptyOrNA("N/A"))
	assert.False(t, IsEmptyOrNA("admin@example.com"))
}
