package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("Sleepy123"))

	for _, p := range []string{
		"Short1A",    // under 8 characters
		"alllower1",  // no uppercase
		"ALLUPPER1",  // no lowercase
		"NoDigitsAa", // no digit
	} {
		require.ErrorIs(t, ValidatePassword(p), ErrWeakPassword)
	}
}

func TestHashVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sleepy123", 4)
	require.NoError(t, err)
	require.NotEqual(t, "Sleepy123", hash)

	require.True(t, VerifyPassword(hash, "Sleepy123"))
	require.False(t, VerifyPassword(hash, "Sleepy124"))
	require.False(t, VerifyPassword("not-a-hash", "Sleepy123"))
}
