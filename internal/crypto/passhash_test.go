package crypto

import (
	"bytes"
	"testing"
)

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	a, err := RandBytes(32)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	b, err := RandBytes(32)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if len(a) != 32 || bytes.Equal(a, b) {
		t.Fatalf("unexpected random output: len=%d equal=%v", len(a), bytes.Equal(a, b))
	}
}

func TestNewHash_VerifyRoundTrip(t *testing.T) {
	t.Parallel()

	hash, salt, err := NewHash("secret-pw")
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}
	if len(salt) != SaltLen || len(hash) != 32 {
		t.Fatalf("salt=%d hash=%d", len(salt), len(hash))
	}
	if !Verify("secret-pw", salt, hash) {
		t.Fatalf("Verify rejected the right password")
	}
	if Verify("secret-px", salt, hash) {
		t.Fatalf("Verify accepted a wrong password")
	}
}

func TestHash_SaltMatters(t *testing.T) {
	t.Parallel()

	h1 := Hash("pw", []byte("salt-one--------"))
	h2 := Hash("pw", []byte("salt-two--------"))
	if bytes.Equal(h1, h2) {
		t.Fatalf("different salts produced the same hash")
	}
	if !bytes.Equal(h1, Hash("pw", []byte("salt-one--------"))) {
		t.Fatalf("hash not deterministic")
	}
}
