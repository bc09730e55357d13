package encryption

import (
	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// ValueCrypto composes the codec and the cipher engine to encrypt and
// decrypt single values in place. One ValueCrypto corresponds to one
// key; rotation runs two side by side.
type ValueCrypto struct {
	engine *Engine
	codec  *Codec
}

// NewValueCrypto creates value-level crypto over an engine. A nil codec
// selects DefaultCodec.
func NewValueCrypto(engine *Engine, codec *Codec) *ValueCrypto {
	if codec == nil {
		codec = DefaultCodec()
	}
	return &ValueCrypto{engine: engine, codec: codec}
}

// EncryptValue replaces v with its encrypted form: the serialized
// plaintext sealed under a fresh nonce, carried in the bytes variant.
func (vc *ValueCrypto) EncryptValue(seq NonceSequencer, v *store.Value) error {
	plaintext, err := vc.codec.Encode(*v)
	if err != nil {
		return err
	}

	blob, err := vc.engine.Seal(seq, plaintext)
	if err != nil {
		return err
	}

	*v = store.BytesValue(blob)
	return nil
}

// DecryptValue restores an encrypted value in place. It reports whether
// decryption was applied: a value that is not the bytes variant is
// treated as already-plaintext (a default column literal) and left
// untouched.
func (vc *ValueCrypto) DecryptValue(v *store.Value) (bool, error) {
	if v.Type != store.TypeBytes {
		return false, nil
	}

	plaintext, err := vc.engine.Open(v.Data)
	if err != nil {
		return false, err
	}

	decoded, err := vc.codec.Decode(plaintext)
	if err != nil {
		return false, err
	}

	*v = decoded
	return true, nil
}
