package crypto

import (
	"crypto/rand"
	"fmt"
)

// KeySize is the length in bytes of a symmetric content or password key.
const KeySize = 32

// SaltSize is the length in bytes of the Argon2id salt appended to
// password-sealed blobs. 16 bytes follows current password-hashing
// recommendations.
const SaltSize = 16

// Key is a 32-byte symmetric key. A content key is generated randomly by
// Seal; a password key is derived by the KDF and never leaves this package.
//
// Keys are handled by pointer so that Wipe can destroy the single backing
// array. Do not copy the pointed-to value and do not log it; its String
// method deliberately hides the contents.
type Key [KeySize]byte

// GenerateKey returns a new random key from the system CSPRNG.
func GenerateKey() (*Key, error) {
	var key Key
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return &key, nil
}

// KeyFromBytes copies b into a new Key. It fails unless b is exactly
// KeySize bytes long.
func KeyFromBytes(b []byte) (*Key, error) {
	if len(b) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(b))
	}
	var key Key
	copy(key[:], b)
	return &key, nil
}

// Bytes returns a view of the key's backing array. The slice aliases the
// key; it becomes zeros once Wipe is called and must not outlive the key.
func (k *Key) Bytes() []byte {
	return k[:]
}

// Wipe overwrites the key material. The key must not be used afterwards.
func (k *Key) Wipe() {
	ZeroBytes(k[:])
}

// String masks the key so accidental formatting cannot leak it.
func (k *Key) String() string {
	return "Key(****)"
}

// Salt is the random per-seal input to the KDF. It travels with the
// ciphertext and is not secret.
type Salt [SaltSize]byte

// GenerateSalt returns a new random salt from the system CSPRNG.
func GenerateSalt() (Salt, error) {
	var salt Salt
	if _, err := rand.Read(salt[:]); err != nil {
		return Salt{}, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}
