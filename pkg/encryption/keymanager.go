package encryption

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrKeyNotFound = fmt.Errorf("key not found")
	ErrNoActiveKey = fmt.Errorf("no active key version")
)

// KeyStatus represents the lifecycle state of a managed key
type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "active"  // Currently used for new encryption
	KeyStatusRotated KeyStatus = "rotated" // Rotated out; still usable for decryption
	KeyStatusRevoked KeyStatus = "revoked" // Must not be used
)

// KeyMetadata contains metadata about a managed key
type KeyMetadata struct {
	ID          string    `json:"id"` // Stable identifier, survives re-versioning
	Version     uint32    `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	ActivatedAt time.Time `json:"activated_at,omitempty"`
	RotatedAt   time.Time `json:"rotated_at,omitempty"`
	Status      KeyStatus `json:"status"`
	Algorithm   string    `json:"algorithm"`
}

// KeyEntry is a stored key with its metadata. The key material is
// sealed under the manager's master key; only metadata is plaintext.
type KeyEntry struct {
	Metadata     KeyMetadata `json:"metadata"`
	EncryptedKey []byte      `json:"encrypted_key"`
}

// KeyManager holds the versioned keys a store encrypts rows with. Keys
// are sealed under a master engine and persisted as JSON in a key
// directory. The manager only vends key material; binding a key to a
// store happens in the decorator layer.
type KeyManager struct {
	masterEngine  *Engine
	masterSeq     NonceSequencer
	keys          map[uint32]*KeyEntry
	activeVersion uint32
	keyDir        string
	mu            sync.RWMutex
}

// KeyManagerConfig holds configuration for the key manager
type KeyManagerConfig struct {
	KeyDir    string // Directory to store key entries
	MasterKey []byte // Master key sealing the managed keys
}

// NewKeyManager creates a key manager and loads any persisted keys
func NewKeyManager(config KeyManagerConfig) (*KeyManager, error) {
	masterEngine, err := NewEngine(config.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create master engine: %w", err)
	}

	if err := os.MkdirAll(config.KeyDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	km := &KeyManager{
		masterEngine: masterEngine,
		masterSeq:    NewRandomSequencer(),
		keys:         make(map[uint32]*KeyEntry),
		keyDir:       config.KeyDir,
	}

	if err := km.loadKeys(); err != nil {
		return nil, fmt.Errorf("failed to load keys: %w", err)
	}

	return km, nil
}

// GenerateKey creates a new managed key, activates it, and marks the
// previous active key as rotated. Returns the new key's version.
func (km *KeyManager) GenerateKey() (uint32, error) {
	km.mu.Lock()
	defer km.mu.Unlock()

	key, err := GenerateKey()
	if err != nil {
		return 0, fmt.Errorf("failed to generate key: %w", err)
	}

	sealed, err := km.masterEngine.Seal(km.masterSeq, key)
	if err != nil {
		return 0, fmt.Errorf("failed to seal key: %w", err)
	}

	version := km.nextVersion()
	now := time.Now()
	entry := &KeyEntry{
		Metadata: KeyMetadata{
			ID:          uuid.NewString(),
			Version:     version,
			CreatedAt:   now,
			ActivatedAt: now,
			Status:      KeyStatusActive,
			Algorithm:   "AES-256-GCM",
		},
		EncryptedKey: sealed,
	}

	if km.activeVersion != 0 {
		if old, exists := km.keys[km.activeVersion]; exists {
			old.Metadata.Status = KeyStatusRotated
			old.Metadata.RotatedAt = now
			if err := km.saveKey(old); err != nil {
				return 0, fmt.Errorf("failed to save rotated key: %w", err)
			}
		}
	}

	km.keys[version] = entry
	km.activeVersion = version

	if err := km.saveKey(entry); err != nil {
		return 0, fmt.Errorf("failed to save key: %w", err)
	}

	// Zero the plaintext copy
	for i := range key {
		key[i] = 0
	}

	return version, nil
}

// RotateKey creates and activates a new key; the old active key is
// automatically marked as rotated
func (km *KeyManager) RotateKey() (uint32, error) {
	return km.GenerateKey()
}

// KeyByVersion retrieves and unseals a managed key
func (km *KeyManager) KeyByVersion(version uint32) ([]byte, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	entry, exists := km.keys[version]
	if !exists {
		return nil, ErrKeyNotFound
	}
	if entry.Metadata.Status == KeyStatusRevoked {
		return nil, fmt.Errorf("key version %d is revoked", version)
	}

	key, err := km.masterEngine.Open(entry.EncryptedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal key: %w", err)
	}
	return key, nil
}

// ActiveKey retrieves the currently active key and its version
func (km *KeyManager) ActiveKey() ([]byte, uint32, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.activeVersion == 0 {
		return nil, 0, ErrNoActiveKey
	}
	entry, exists := km.keys[km.activeVersion]
	if !exists {
		return nil, 0, ErrKeyNotFound
	}

	key, err := km.masterEngine.Open(entry.EncryptedKey)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to unseal key: %w", err)
	}
	return key, km.activeVersion, nil
}

// ActiveVersion returns the current active key version
func (km *KeyManager) ActiveVersion() uint32 {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.activeVersion
}

// RevokeKey marks a non-active key as revoked
func (km *KeyManager) RevokeKey(version uint32) error {
	km.mu.Lock()
	defer km.mu.Unlock()

	entry, exists := km.keys[version]
	if !exists {
		return ErrKeyNotFound
	}
	if version == km.activeVersion {
		return fmt.Errorf("cannot revoke active key, rotate first")
	}

	entry.Metadata.Status = KeyStatusRevoked
	if err := km.saveKey(entry); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}
	return nil
}

// ListKeys returns metadata for all managed keys
func (km *KeyManager) ListKeys() []KeyMetadata {
	km.mu.RLock()
	defer km.mu.RUnlock()

	result := make([]KeyMetadata, 0, len(km.keys))
	for _, entry := range km.keys {
		result = append(result, entry.Metadata)
	}
	return result
}
