package crypto

import (
	"bytes"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error: %v", err)
	}

	key1 := deriveKey([]byte("hunter2"), salt)
	defer key1.Wipe()
	key2 := deriveKey([]byte("hunter2"), salt)
	defer key2.Wipe()

	if !bytes.Equal(key1.Bytes(), key2.Bytes()) {
		t.Error("deriveKey() is not deterministic for identical password and salt")
	}
}

func TestDeriveKeySaltSensitivity(t *testing.T) {
	salt1, _ := GenerateSalt()
	salt2, _ := GenerateSalt()

	key1 := deriveKey([]byte("hunter2"), salt1)
	defer key1.Wipe()
	key2 := deriveKey([]byte("hunter2"), salt2)
	defer key2.Wipe()

	if bytes.Equal(key1.Bytes(), key2.Bytes()) {
		t.Error("deriveKey() ignored the salt")
	}
}

func TestDeriveKeyPasswordSensitivity(t *testing.T) {
	salt, _ := GenerateSalt()

	key1 := deriveKey([]byte("hunter2"), salt)
	defer key1.Wipe()
	key2 := deriveKey([]byte("hunter3"), salt)
	defer key2.Wipe()

	if bytes.Equal(key1.Bytes(), key2.Bytes()) {
		t.Error("deriveKey() ignored the password")
	}
}
