package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// QRTokenBytes is the entropy of a ticket QR token.  32 bytes gives a
// 256-bit token; tokens must be unguessable because possession of the
// string alone admits the holder at the gate.
const QRTokenBytes = 32

// NewQRToken returns a fresh opaque redemption token for a ticket.  The
// token is upper-cased hex so it survives case-insensitive scanner
// pipelines and manual entry.
func NewQRToken() (string, error) {
	buf := make([]byte, QRTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// NormalizeQRToken canonicalizes a scanned or hand-typed token before
// lookup: surrounding whitespace is dropped and hex digits are
// upper-cased.
func NormalizeQRToken(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
