// Package crypto implements the authenticated encryption envelope used for
// zero-knowledge pastes.
//
// A paste is sealed locally before upload: the plaintext is encrypted with
// XChaCha20-Poly1305 under a freshly generated 32-byte content key and a
// 24-byte random nonce, and the nonce (plus, when a password is supplied, a
// 16-byte Argon2id salt) is appended to the ciphertext. The server only ever
// sees the resulting self-describing blob; the content key travels in the
// URL fragment and never reaches the server.
//
// # Sealing
//
//	sealed, key, err := crypto.Seal(plaintext, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer key.Wipe()
//
// With a password, a second cipher pass wraps the already-encrypted buffer
// under a key derived from the password:
//
//	sealed, key, err := crypto.Seal(plaintext, []byte("hunter2"))
//
// The buffer layout after sealing is one of:
//
//	C(message, key, nonce) || nonce
//	C(C(message, key, nonce), kdf(pw, salt), nonce+1) || nonce || salt
//
// where nonce+1 increments only the first nonce byte, guaranteeing the two
// passes never reuse a (key, nonce) pair within one seal.
//
// # Opening
//
// Open reverses the layers in the opposite order, password layer first:
//
//	plaintext, err := crypto.Open(sealed, key, password)
//	if errors.Is(err, crypto.ErrPassword) {
//	    // wrong password
//	}
//
// Whether a password layer exists cannot be inferred from the blob alone;
// the caller learns it from the URL fragment's pw flag and must pass the
// password accordingly.
//
// # Key derivation
//
// Password keys are derived with Argon2id at 15 MiB memory, 2 iterations
// and 2 lanes. Seal and Open are synchronous and CPU-bound; a derivation
// takes tens of milliseconds by design. Hosts with cooperative schedulers
// should dispatch calls to a worker goroutine. Calls share no state and
// need no locking.
//
// # Secret handling
//
// Keys are wiped with ZeroBytes-style overwrites on Wipe. Callers must not
// copy Key values, log them, or retain the slices returned by Bytes beyond
// the key's lifetime.
package crypto
