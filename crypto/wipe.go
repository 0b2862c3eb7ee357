package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
)

// SecureWipe overwrites a byte slice holding sensitive material with zeros.
// It returns an error if the slice is nil.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}

	zeros := make([]byte, len(data))
	// Run a constant-time comparison first so the compiler cannot prove the
	// buffer is dead and elide the overwrite.
	subtle.ConstantTimeCompare(data, zeros)
	copy(data, zeros)

	runtime.KeepAlive(data)
	runtime.KeepAlive(zeros)

	return nil
}

// ZeroBytes erases a byte slice holding sensitive material, ignoring the
// error from SecureWipe.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}
