package encryption

import (
	"bytes"
	"errors"
	"testing"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() failed: %v", err)
	}
	engine, err := NewEngine(key)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return engine
}

func TestGenerateKey(t *testing.T) {
	key1, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() failed: %v", err)
	}
	if len(key1) != KeySize {
		t.Errorf("Key length = %d, want %d", len(key1), KeySize)
	}

	key2, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() failed: %v", err)
	}
	if bytes.Equal(key1, key2) {
		t.Error("Generated keys are identical (should be random)")
	}
}

func TestNewEngineInvalidKey(t *testing.T) {
	if _, err := NewEngine(make([]byte, 16)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("NewEngine(short key) error = %v, want %v", err, ErrInvalidKey)
	}
	if _, err := NewEngine(nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("NewEngine(nil) error = %v, want %v", err, ErrInvalidKey)
	}
}

func TestNewEngineFromPassphrase(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() failed: %v", err)
	}

	engine1, err := NewEngineFromPassphrase("test-passphrase-12345", salt)
	if err != nil {
		t.Fatalf("NewEngineFromPassphrase() failed: %v", err)
	}
	engine2, err := NewEngineFromPassphrase("test-passphrase-12345", salt)
	if err != nil {
		t.Fatalf("NewEngineFromPassphrase() failed: %v", err)
	}

	// Same passphrase and salt produce the same key
	seq := NewRandomSequencer()
	blob, err := engine1.Seal(seq, []byte("test data"))
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}
	plaintext, err := engine2.Open(blob)
	if err != nil {
		t.Fatalf("Open() with second engine failed: %v", err)
	}
	if !bytes.Equal(plaintext, []byte("test data")) {
		t.Error("Engines from same passphrase produced different keys")
	}

	if _, err := NewEngineFromPassphrase("p", []byte("short")); err == nil {
		t.Error("NewEngineFromPassphrase() accepted a short salt")
	}
}

func TestSealOpen(t *testing.T) {
	engine := testEngine(t)
	seq := NewRandomSequencer()

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"Empty", []byte{}},
		{"Small", []byte("Hello, World!")},
		{"Medium", bytes.Repeat([]byte("A"), 1024)},
		{"Large", bytes.Repeat([]byte("B"), 65536)},
		{"Binary", []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := engine.Seal(seq, tt.plaintext)
			if err != nil {
				t.Fatalf("Seal() failed: %v", err)
			}
			if len(blob) != len(tt.plaintext)+NonceSize+TagSize {
				t.Errorf("Blob length = %d, want %d", len(blob), len(tt.plaintext)+NonceSize+TagSize)
			}

			plaintext, err := engine.Open(blob)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			if !bytes.Equal(plaintext, tt.plaintext) {
				t.Error("Round trip mismatch")
			}
		})
	}
}

func TestOpenTampered(t *testing.T) {
	engine := testEngine(t)
	seq := NewRandomSequencer()

	blob, err := engine.Seal(seq, []byte("sensitive data"))
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}

	// Flip one bit in every region of the blob in turn
	offsets := map[string]int{
		"nonce":      0,
		"ciphertext": NonceSize,
		"tag":        len(blob) - 1,
	}
	for region, offset := range offsets {
		t.Run(region, func(t *testing.T) {
			tampered := make([]byte, len(blob))
			copy(tampered, blob)
			tampered[offset] ^= 0x01

			if _, err := engine.Open(tampered); !errors.Is(err, ErrEncryption) {
				t.Errorf("Open(tampered %s) error = %v, want %v", region, err, ErrEncryption)
			}
		})
	}
}

func TestOpenWrongKey(t *testing.T) {
	engineA := testEngine(t)
	engineB := testEngine(t)
	seq := NewRandomSequencer()

	blob, err := engineA.Seal(seq, []byte("secret"))
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}

	if _, err := engineB.Open(blob); !errors.Is(err, ErrEncryption) {
		t.Errorf("Open() under wrong key error = %v, want %v", err, ErrEncryption)
	}
}

func TestOpenShortBlob(t *testing.T) {
	engine := testEngine(t)

	for _, n := range []int{0, 1, NonceSize, MinBlobSize - 1} {
		if _, err := engine.Open(make([]byte, n)); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Open(%d bytes) error = %v, want %v", n, err, ErrInvalidValue)
		}
	}
}

func TestOpenSwappedNonce(t *testing.T) {
	engine := testEngine(t)
	seq := NewRandomSequencer()

	blobA, err := engine.Seal(seq, []byte("first"))
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}
	blobB, err := engine.Seal(seq, []byte("second"))
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}

	// Graft A's nonce onto B's ciphertext: the nonce is bound into the
	// tag as associated data, so this must not open
	grafted := make([]byte, len(blobB))
	copy(grafted, blobA[:NonceSize])
	copy(grafted[NonceSize:], blobB[NonceSize:])

	if _, err := engine.Open(grafted); !errors.Is(err, ErrEncryption) {
		t.Errorf("Open(grafted nonce) error = %v, want %v", err, ErrEncryption)
	}
}
