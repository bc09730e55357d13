package encryption

import (
	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// EncryptRow encrypts every value of a row in place, regardless of
// representation. The first failing value aborts the pass; the caller
// must not persist a partially encrypted row.
func (vc *ValueCrypto) EncryptRow(seq NonceSequencer, row *store.Row) error {
	switch row.Kind {
	case store.RowMap:
		for name, v := range row.Named {
			if err := vc.EncryptValue(seq, &v); err != nil {
				return err
			}
			row.Named[name] = v
		}
	default:
		for i := range row.Values {
			if err := vc.EncryptValue(seq, &row.Values[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecryptRow decrypts every value of a row in place. Values that were
// never encrypted (default column literals) pass through unchanged.
// The first failing value aborts the pass.
func (vc *ValueCrypto) DecryptRow(row *store.Row) error {
	switch row.Kind {
	case store.RowMap:
		for name, v := range row.Named {
			if _, err := vc.DecryptValue(&v); err != nil {
				return err
			}
			row.Named[name] = v
		}
	default:
		for i := range row.Values {
			if _, err := vc.DecryptValue(&row.Values[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
