package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the length in bytes of an XChaCha20-Poly1305 nonce.
const NonceSize = chacha20poly1305.NonceSizeX

// Nonce is a 24-byte value generated once per seal operation.
type Nonce [NonceSize]byte

// GenerateNonce returns a new random nonce from the system CSPRNG.
func GenerateNonce() (Nonce, error) {
	var nonce Nonce
	if _, err := rand.Read(nonce[:]); err != nil {
		return Nonce{}, fmt.Errorf("generating nonce: %w", err)
	}
	return nonce, nil
}

// Next returns the nonce used for the password layer. Only the first byte
// is incremented, wrapping at 255. That is enough to keep the two cipher
// passes of one seal from sharing a nonce, and both ends of the protocol
// must agree on this exact semantic, so it must not be replaced with a
// full multi-byte increment.
func (n Nonce) Next() Nonce {
	n[0]++
	return n
}
