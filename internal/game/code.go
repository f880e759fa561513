package game

import (
	"crypto/rand"
	"regexp"
	"strings"
)

// Room codes exclude visually confusable glyphs (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed room code length.
const CodeLength = 6

var codeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// NewCode generates a random room code.
func NewCode() (string, error) {
	b := make([]byte, CodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := make([]byte, CodeLength)
	for i := range code {
		code[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(code), nil
}

// NormalizeCode canonicalizes user input: codes are case-insensitive on
// input and upper-cased canonically.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether a normalized code is well-formed.
func ValidCode(code string) bool {
	return codeRe.MatchString(code)
}
