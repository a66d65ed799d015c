package utils

import (
	"testing"

	"github.com/abenezer-t/CampusEats/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword("s3cret-pass", hash))
	assert.False(t, CheckPassword("wrong-pass", hash))
	assert.False(t, CheckPassword("s3cret-pass", "not-a-hash"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{Role: models.RoleUser}
	user.ID = 42

	token, err := GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	user := &models.User{Role: models.RoleUser}
	user.ID = 1
	token, err := GenerateToken(user)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		otp := GenerateOTP()
		require.Len(t, otp, 6)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9')
		}
		seen[otp] = true
	}
	// 20 draws from a million values colliding every time is not plausible
	assert.Greater(t, len(seen), 1)
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"student@aau.edu.et", true},
		{"a.b+c@example.com", true},
		{"", false},
		{"noatsign", false},
		{"missing@tld", false},
		{"@example.com", false},
	}
	for _, tt := range tests {
		valid, _ := ValidateEmail(tt.input)
		assert.Equal(t, tt.valid, valid, tt.input)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"abcd1234", true},
		{"short1", false},
		{"onlyletters", false},
		{"12345678", false},
	}
	for _, tt := range tests {
		valid, _ := ValidatePassword(tt.input)
		assert.Equal(t, tt.valid, valid, tt.input)
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"+251911223344", true},
		{"0911223344", true},
		{"123", false},
		{"not-a-phone", false},
	}
	for _, tt := range tests {
		valid, _ := ValidatePhone(tt.input)
		assert.Equal(t, tt.valid, valid, tt.input)
	}
}
