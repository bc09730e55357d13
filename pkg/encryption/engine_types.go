package encryption

import "fmt"

const (
	// Encryption constants
	KeySize          = 32     // AES-256
	NonceSize        = 12     // GCM standard nonce size
	TagSize          = 16     // GCM authentication tag size
	SaltSize         = 32     // Salt for PBKDF2
	PBKDF2Iterations = 600000 // OWASP recommended minimum

	// MinBlobSize is the smallest valid encrypted blob: nonce + tag
	// around an empty plaintext
	MinBlobSize = NonceSize + TagSize
)

var (
	ErrInvalidKey     = fmt.Errorf("invalid encryption key")
	ErrInvalidValue   = fmt.Errorf("invalid encrypted value")
	ErrEncryption     = fmt.Errorf("encryption failed - data may be tampered or key is wrong")
	ErrSerialization  = fmt.Errorf("value serialization failed")
	ErrNonceExhausted = fmt.Errorf("nonce sequence exhausted")
)

// Nonce is a single-use value consumed by exactly one encryption.
// A (key, nonce) pair must never repeat; the sequencer owns that invariant.
type Nonce [NonceSize]byte
