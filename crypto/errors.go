package crypto

import "errors"

// Sentinel errors for errors.Is() checks. The set is closed: every failure
// of Seal and Open maps onto exactly one of these.
var (
	// ErrPassword is returned when the password layer fails authentication,
	// meaning the supplied password is wrong.
	ErrPassword = errors.New("invalid password")

	// ErrSecretKey is returned when the content layer fails authentication,
	// meaning the key is wrong or the blob was corrupted or tampered with.
	ErrSecretKey = errors.New("invalid secret key")

	// ErrEncryption is returned when the cipher itself fails during sealing.
	// With a well-formed key this does not happen.
	ErrEncryption = errors.New("encryption failure")

	// ErrKdf is returned when key derivation cannot run, such as when the
	// blob is too short to carry a salt.
	ErrKdf = errors.New("key derivation failure")
)
