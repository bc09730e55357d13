package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Engine performs AES-256-GCM sealing and opening of single values.
// The nonce is prepended to the ciphertext and also fed in as associated
// data, so a swapped nonce fails authentication instead of silently
// decrypting to garbage. A constructed engine is immutable; one engine
// corresponds to exactly one key.
type Engine struct {
	aead cipher.AEAD
}

// NewEngine creates an encryption engine bound to the given 256-bit key
func NewEngine(key []byte) (*Engine, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	// Copy so later mutation of the caller's slice cannot change the key
	k := make([]byte, KeySize)
	copy(k, key)

	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Engine{aead: aead}, nil
}

// NewEngineFromPassphrase creates an engine with a key derived from a passphrase
func NewEngineFromPassphrase(passphrase string, salt []byte) (*Engine, error) {
	key, err := KeyFromPassphrase(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return NewEngine(key)
}

// KeyFromPassphrase derives a 256-bit key from a passphrase using PBKDF2
func KeyFromPassphrase(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes", SaltSize)
	}
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New), nil
}

// GenerateSalt generates a cryptographically secure random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateKey generates a cryptographically secure random encryption key
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under a nonce drawn from seq.
// Returns: nonce + ciphertext + tag concatenated.
func (e *Engine) Seal(seq NonceSequencer, plaintext []byte) ([]byte, error) {
	nonce, err := seq.Advance()
	if err != nil {
		return nil, err
	}

	blob := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	copy(blob, nonce[:])

	// Nonce doubles as associated data: moving a nonce between blobs
	// breaks the tag check
	return e.aead.Seal(blob, nonce[:], plaintext, nonce[:]), nil
}

// Open decrypts a blob produced by Seal.
// Input format: nonce + ciphertext + tag concatenated.
func (e *Engine) Open(blob []byte) ([]byte, error) {
	if len(blob) < MinBlobSize {
		return nil, ErrInvalidValue
	}

	nonce := blob[:NonceSize]
	ct := blob[NonceSize:]

	plaintext, err := e.aead.Open(nil, nonce, ct, nonce)
	if err != nil {
		return nil, ErrEncryption
	}
	return plaintext, nil
}
