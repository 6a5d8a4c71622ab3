// Package walletaddr validates and normalizes EVM wallet addresses.
// Addresses are stored lowercase so lookups are case-insensitive.
package walletaddr

import (
	"errors"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid wallet address")

// Valid reports whether s looks like a 0x-prefixed 20-byte hex address.
func Valid(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Normalize validates s and returns its canonical lowercase form.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !Valid(s) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(s), nil
}

// Short returns a shortened display form, e.g. 0x1234...abcd.
func Short(s string) string {
	if len(s) < 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
