package encryption

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func (km *KeyManager) nextVersion() uint32 {
	maxVersion := uint32(0)
	for version := range km.keys {
		if version > maxVersion {
			maxVersion = version
		}
	}
	return maxVersion + 1
}

func (km *KeyManager) keyPath(version uint32) string {
	return filepath.Join(km.keyDir, fmt.Sprintf("key_v%d.json", version))
}

func (km *KeyManager) saveKey(entry *KeyEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key entry: %w", err)
	}

	// Restrictive permissions: entries are sealed but metadata is not
	if err := os.WriteFile(km.keyPath(entry.Metadata.Version), data, 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

func (km *KeyManager) loadKeys() error {
	entries, err := os.ReadDir(km.keyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read key directory: %w", err)
	}

	maxActive := uint32(0)
	for _, dirEntry := range entries {
		if dirEntry.IsDir() || filepath.Ext(dirEntry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(km.keyDir, dirEntry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read key file %s: %w", path, err)
		}

		var entry KeyEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("failed to unmarshal key file %s: %w", path, err)
		}

		km.keys[entry.Metadata.Version] = &entry
		if entry.Metadata.Status == KeyStatusActive && entry.Metadata.Version > maxActive {
			maxActive = entry.Metadata.Version
		}
	}

	// Exactly one key may be active. Stale active entries (a crash
	// between saving the new key and demoting the old one) lose to the
	// highest version and are demoted here.
	for version, entry := range km.keys {
		if entry.Metadata.Status != KeyStatusActive || version == maxActive {
			continue
		}
		entry.Metadata.Status = KeyStatusRotated
		entry.Metadata.RotatedAt = time.Now()
		if err := km.saveKey(entry); err != nil {
			return fmt.Errorf("failed to demote stale active key v%d: %w", version, err)
		}
	}

	km.activeVersion = maxActive
	return nil
}

// ExportKeyMetadata exports metadata for all keys as JSON, without any
// key material. Intended for audit trails.
func (km *KeyManager) ExportKeyMetadata() ([]byte, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	metadata := make([]KeyMetadata, 0, len(km.keys))
	for _, entry := range km.keys {
		metadata = append(metadata, entry.Metadata)
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return data, nil
}
