package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRData_Roundtrip(t *testing.T) {
	token := GenerateQRData(42)
	assert.True(t, strings.HasPrefix(token, "CE-42-"))

	orderID, err := ParseQRData(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), orderID)
}

func TestGenerateQRData_Unique(t *testing.T) {
	a := GenerateQRData(7)
	b := GenerateQRData(7)
	assert.NotEqual(t, a, b)
}

func TestParseQRData_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong prefix", "XX-1-1700000000000-abcdef0123456789"},
		{"missing parts", "CE-1-1700000000000"},
		{"too many parts", "CE-1-1700000000000-abcd-extra"},
		{"non numeric id", "CE-abc-1700000000000-abcdef0123456789"},
		{"zero id", "CE-0-1700000000000-abcdef0123456789"},
		{"non numeric timestamp", "CE-1-notatime-abcdef0123456789"},
		{"non hex suffix", "CE-1-1700000000000-zzzz"},
		{"empty suffix", "CE-1-1700000000000-"},
		{"bare order id", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQRData(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQRCode))
		})
	}
}

func TestGenerateQRImage(t *testing.T) {
	img, err := GenerateQRImage(GenerateQRData(1))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img, "data:image/png;base64,"))
	assert.Greater(t, len(img), 100)
}
