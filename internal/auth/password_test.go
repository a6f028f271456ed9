package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("c0rrect-horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "c0rrect-horse"))
	assert.False(t, CheckPassword(hash, "wrong-horse"))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{name: "acceptable", password: "c0rrect-horse"},
		{name: "short", password: "Xy7!a", want: []string{"This password is too short. It must contain at least 8 characters."}},
		{name: "numeric", password: "73920184", want: []string{"This password is entirely numeric."}},
		{name: "common", password: "Password1", want: []string{"This password is too common."}},
		{name: "like username", password: "grace-hopper-1", want: []string{"The password is too similar to the username."}},
		{name: "like email", password: "hopper.g.2024", want: []string{"The password is too similar to the email address."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePassword(tt.password, "grace-hopper", "hopper.g@example.com")
			assert.Equal(t, tt.want, got)
		})
	}
}
