package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Pickup token format: CE-<orderID>-<unix ms>-<random hex>. The token is
// not signed; authenticity comes from exact-match lookup against the stored
// order, so the random suffix only has to be unguessable.
const qrPrefix = "CE"

// ErrInvalidQRCode is returned when a scanned string does not have the
// expected shape. Callers must not hit the database before this check.
var ErrInvalidQRCode = errors.New("invalid QR code")

// GenerateQRData produces a new pickup token for an order
func GenerateQRData(orderID uint) string {
	random := make([]byte, 8)
	_, _ = rand.Read(random)
	return fmt.Sprintf("%s-%d-%d-%s", qrPrefix, orderID, time.Now().UnixMilli(), hex.EncodeToString(random))
}

// ParseQRData validates the structure of a pickup token and returns the
// embedded order ID. The embedded ID is a hint only; resolution must go
// through an exact-match lookup of the full token.
func ParseQRData(qrData string) (uint, error) {
	parts := strings.Split(qrData, "-")
	if len(parts) != 4 || parts[0] != qrPrefix {
		return 0, ErrInvalidQRCode
	}

	orderID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || orderID == 0 {
		return 0, ErrInvalidQRCode
	}
	if _, err := strconv.ParseInt(parts[2], 10, 64); err != nil {
		return 0, ErrInvalidQRCode
	}
	if _, err := hex.DecodeString(parts[3]); err != nil || parts[3] == "" {
		return 0, ErrInvalidQRCode
	}

	return uint(orderID), nil
}

// GenerateQRImage renders the token as a PNG data URL for the client app
func GenerateQRImage(qrData string) (string, error) {
	png, err := qrcode.Encode(qrData, qrcode.High, 300)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
