package crypto

import (
	"bytes"
	"testing"
)

func TestGenerateNonce(t *testing.T) {
	nonce, err := GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce() error: %v", err)
	}

	if nonce == (Nonce{}) {
		t.Error("GenerateNonce() returned zero nonce")
	}

	nonce2, _ := GenerateNonce()
	if nonce == nonce2 {
		t.Error("Multiple GenerateNonce() calls produced identical nonces")
	}
}

func TestNonceNext(t *testing.T) {
	cases := []struct {
		name      string
		first     byte
		wantFirst byte
	}{
		{name: "Simple increment", first: 0x00, wantFirst: 0x01},
		{name: "Mid-range", first: 0x7f, wantFirst: 0x80},
		{name: "Wraparound", first: 0xff, wantFirst: 0x00},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var nonce Nonce
			nonce[0] = tc.first
			for i := 1; i < NonceSize; i++ {
				nonce[i] = byte(i)
			}

			next := nonce.Next()

			if next[0] != tc.wantFirst {
				t.Errorf("Next() first byte = %#x, want %#x", next[0], tc.wantFirst)
			}
			// Only the first byte changes; a carry never propagates.
			if !bytes.Equal(next[1:], nonce[1:]) {
				t.Error("Next() modified bytes past the first")
			}
			if nonce[0] != tc.first {
				t.Error("Next() mutated the receiver")
			}
		})
	}
}

func TestNonceNextDiffersFromOriginal(t *testing.T) {
	nonce, err := GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce() error: %v", err)
	}
	if nonce.Next() == nonce {
		t.Error("Next() returned an identical nonce")
	}
}
