package server

import (
	"crypto/rand"
	"fmt"
)

// ShortCodeLength is the number of characters in a paste's short code.
const ShortCodeLength = 12

// shortCodeAlphabet is the Word-safe Base32 alphabet, a Base32 extension
// of the Open Location Code Base20 alphabet. It avoids vowels and visually
// ambiguous characters, so codes never spell words and survive being read
// aloud.
const shortCodeAlphabet = "23456789CFGHJMPQRVWXcfghjmpqrvwx"

// GenerateShortCode returns a fresh random short code. Codes are drawn from
// the system CSPRNG so they are not guessable from earlier codes.
func GenerateShortCode() ([]byte, error) {
	raw := make([]byte, ShortCodeLength)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generating short code: %w", err)
	}
	code := make([]byte, ShortCodeLength)
	for i, b := range raw {
		code[i] = shortCodeAlphabet[int(b)%len(shortCodeAlphabet)]
	}
	return code, nil
}

// ValidateShortCode checks that a client-supplied code has the right length
// and stays within the alphabet.
func ValidateShortCode(code string) error {
	if len(code) != ShortCodeLength {
		return fmt.Errorf("short code must be %d characters, got %d", ShortCodeLength, len(code))
	}
	for _, c := range []byte(code) {
		if !isShortCodeChar(c) {
			return fmt.Errorf("invalid short code character %q", c)
		}
	}
	return nil
}

func isShortCodeChar(c byte) bool {
	for i := 0; i < len(shortCodeAlphabet); i++ {
		if shortCodeAlphabet[i] == c {
			return true
		}
	}
	return false
}
