package encryption

import "github.com/dd0wney/cluso-sealstore/pkg/store"

// ValueEncrypter encrypts single values in place. Implemented by
// ValueCrypto; split out so decorating layers can be tested against a
// stub.
type ValueEncrypter interface {
	EncryptValue(seq NonceSequencer, v *store.Value) error
}

// ValueDecrypter decrypts single values in place, reporting whether
// decryption was applied.
type ValueDecrypter interface {
	DecryptValue(v *store.Value) (bool, error)
}

// KeyProvider vends versioned key material. Implemented by KeyManager.
type KeyProvider interface {
	// ActiveKey returns the currently active key and its version
	ActiveKey() ([]byte, uint32, error)
	// KeyByVersion returns a key by version number, for decrypting data
	// written under an older key
	KeyByVersion(version uint32) ([]byte, error)
	// ActiveVersion returns the current active key version
	ActiveVersion() uint32
}

// Verify implementations
var _ ValueEncrypter = (*ValueCrypto)(nil)
var _ ValueDecrypter = (*ValueCrypto)(nil)
var _ KeyProvider = (*KeyManager)(nil)
