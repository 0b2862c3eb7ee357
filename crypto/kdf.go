package crypto

import "golang.org/x/crypto/argon2"

// Argon2id parameters, the OWASP minimum recommendation for interactive
// use. Both sides of the protocol hard-code these; changing them breaks
// every existing password-protected paste.
const (
	kdfMemory  = 15 * 1024 // KiB, i.e. 15 MiB
	kdfTime    = 2
	kdfThreads = 2
)

// deriveKey stretches a password and salt into a cipher key. Deterministic
// for identical inputs, and deliberately slow (tens of milliseconds) as a
// brute-force deterrent.
func deriveKey(password []byte, salt Salt) *Key {
	var key Key
	raw := argon2.IDKey(password, salt[:], kdfTime, kdfMemory, kdfThreads, KeySize)
	copy(key[:], raw)
	ZeroBytes(raw)
	return &key
}
