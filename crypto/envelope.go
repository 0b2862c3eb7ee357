package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Overhead is the number of bytes Seal adds to a message before the
// trailing nonce and salt: the Poly1305 authentication tag.
const Overhead = chacha20poly1305.Overhead

// Seal encrypts message in place, reusing its backing array where capacity
// allows, and returns the sealed blob together with the freshly generated
// content key. A nil password seals without a password layer; otherwise the
// already-encrypted buffer is wrapped a second time under an Argon2id key
// and the salt is appended after the nonce.
//
// The returned blob is self-describing except for one bit: whether a
// password layer exists. That bit must travel out of band, in the URL
// fragment's pw flag. The caller owns the returned key and should Wipe it
// once encoded.
func Seal(message, password []byte) ([]byte, *Key, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	nonce, err := GenerateNonce()
	if err != nil {
		key.Wipe()
		return nil, nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		key.Wipe()
		return nil, nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	sealed := aead.Seal(message[:0], nonce[:], message, nil)

	var salt Salt
	withPassword := password != nil
	if withPassword {
		salt, err = GenerateSalt()
		if err != nil {
			key.Wipe()
			return nil, nil, fmt.Errorf("%w: %v", ErrKdf, err)
		}
		pwKey := deriveKey(password, salt)
		pwAEAD, err := chacha20poly1305.NewX(pwKey.Bytes())
		pwKey.Wipe()
		if err != nil {
			key.Wipe()
			return nil, nil, fmt.Errorf("%w: %v", ErrEncryption, err)
		}
		next := nonce.Next()
		sealed = pwAEAD.Seal(sealed[:0], next[:], sealed, nil)
	}

	sealed = append(sealed, nonce[:]...)
	if withPassword {
		sealed = append(sealed, salt[:]...)
	}
	return sealed, key, nil
}

// Open decrypts a blob produced by Seal, mutating it in place. The password
// must be non-nil exactly when the blob was sealed with one; Open cannot
// tell from the blob itself. The two decryption stages run in reverse order
// of sealing: password layer first, then the content layer.
//
// On failure the buffer contents are unspecified. Open returns ErrPassword
// when the password layer rejects (wrong password), ErrSecretKey when the
// content layer rejects (wrong key or corrupted blob), and ErrKdf when a
// password was given but the blob cannot carry a salt.
func Open(sealed []byte, key *Key, password []byte) ([]byte, error) {
	var pwKey *Key
	if password != nil {
		if len(sealed) < SaltSize {
			return nil, fmt.Errorf("%w: blob too short for salt", ErrKdf)
		}
		var salt Salt
		copy(salt[:], sealed[len(sealed)-SaltSize:])
		sealed = sealed[:len(sealed)-SaltSize]
		pwKey = deriveKey(password, salt)
		defer pwKey.Wipe()
	}

	if len(sealed) < NonceSize {
		return nil, fmt.Errorf("%w: blob too short for nonce", ErrSecretKey)
	}
	var nonce Nonce
	copy(nonce[:], sealed[len(sealed)-NonceSize:])
	sealed = sealed[:len(sealed)-NonceSize]

	if pwKey != nil {
		aead, err := chacha20poly1305.NewX(pwKey.Bytes())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
		}
		next := nonce.Next()
		sealed, err = aead.Open(sealed[:0], next[:], sealed, nil)
		if err != nil {
			return nil, ErrPassword
		}
	}

	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	plaintext, err := aead.Open(sealed[:0], nonce[:], sealed, nil)
	if err != nil {
		return nil, ErrSecretKey
	}
	return plaintext, nil
}
