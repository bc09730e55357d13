package encryption

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

func testValueCrypto(t *testing.T) *ValueCrypto {
	t.Helper()
	return NewValueCrypto(testEngine(t), nil)
}

func TestEncryptDecryptValue(t *testing.T) {
	vc := testValueCrypto(t)
	seq := NewRandomSequencer()

	original := store.TextValue("confidential")
	v := original.Clone()

	if err := vc.EncryptValue(seq, &v); err != nil {
		t.Fatalf("EncryptValue() failed: %v", err)
	}
	if v.Type != store.TypeBytes {
		t.Fatalf("Encrypted value type = %v, want bytes", v.Type)
	}
	if v.Equal(original) {
		t.Fatal("Encrypted value equals plaintext")
	}
	if len(v.Data) < MinBlobSize {
		t.Fatalf("Encrypted blob too short: %d bytes", len(v.Data))
	}

	applied, err := vc.DecryptValue(&v)
	if err != nil {
		t.Fatalf("DecryptValue() failed: %v", err)
	}
	if !applied {
		t.Error("DecryptValue() reported not applied for an encrypted value")
	}
	if !v.Equal(original) {
		t.Errorf("Round trip mismatch: got %v, want %v", v, original)
	}
}

func TestDecryptValuePassthrough(t *testing.T) {
	vc := testValueCrypto(t)

	// Non-bytes variants are treated as plaintext defaults and left alone
	tests := []store.Value{
		store.NullValue(),
		store.IntValue(42),
		store.TextValue("default"),
		store.BoolValue(true),
	}

	for _, original := range tests {
		v := original.Clone()
		applied, err := vc.DecryptValue(&v)
		if err != nil {
			t.Fatalf("DecryptValue(%v) failed: %v", original.Type, err)
		}
		if applied {
			t.Errorf("DecryptValue(%v) reported applied for plaintext", original.Type)
		}
		if !v.Equal(original) {
			t.Errorf("Plaintext value changed: got %v, want %v", v, original)
		}
	}
}

func TestDecryptValueWrongKey(t *testing.T) {
	vcA := testValueCrypto(t)
	vcB := testValueCrypto(t)
	seq := NewRandomSequencer()

	v := store.IntValue(7)
	if err := vcA.EncryptValue(seq, &v); err != nil {
		t.Fatalf("EncryptValue() failed: %v", err)
	}

	if _, err := vcB.DecryptValue(&v); !errors.Is(err, ErrEncryption) {
		t.Errorf("DecryptValue() under wrong key error = %v, want %v", err, ErrEncryption)
	}
}

func TestDecryptValueShortBlob(t *testing.T) {
	vc := testValueCrypto(t)

	v := store.BytesValue(make([]byte, MinBlobSize-1))
	if _, err := vc.DecryptValue(&v); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("DecryptValue(short blob) error = %v, want %v", err, ErrInvalidValue)
	}
}

func TestEncryptRowPreservesShape(t *testing.T) {
	vc := testValueCrypto(t)
	seq := NewRandomSequencer()

	t.Run("Vec", func(t *testing.T) {
		original := store.VecRow(
			store.IntValue(1),
			store.TextValue("alice"),
			store.BoolValue(true),
			store.NullValue(),
		)
		row := original.Clone()

		if err := vc.EncryptRow(seq, &row); err != nil {
			t.Fatalf("EncryptRow() failed: %v", err)
		}
		if row.Kind != store.RowVec || len(row.Values) != 4 {
			t.Fatalf("Row shape changed: kind=%v len=%d", row.Kind, len(row.Values))
		}
		for i, v := range row.Values {
			if v.Type != store.TypeBytes {
				t.Errorf("Value %d not encrypted: type=%v", i, v.Type)
			}
		}

		if err := vc.DecryptRow(&row); err != nil {
			t.Fatalf("DecryptRow() failed: %v", err)
		}
		for i := range original.Values {
			if !row.Values[i].Equal(original.Values[i]) {
				t.Errorf("Value %d mismatch after round trip", i)
			}
		}
	})

	t.Run("Map", func(t *testing.T) {
		original := store.MapRow(map[string]store.Value{
			"id":     store.IntValue(1),
			"name":   store.TextValue("bob"),
			"active": store.BoolValue(false),
		})
		row := original.Clone()

		if err := vc.EncryptRow(seq, &row); err != nil {
			t.Fatalf("EncryptRow() failed: %v", err)
		}
		if row.Kind != store.RowMap || len(row.Named) != 3 {
			t.Fatalf("Row shape changed: kind=%v len=%d", row.Kind, len(row.Named))
		}
		for name, v := range row.Named {
			if v.Type != store.TypeBytes {
				t.Errorf("Value %q not encrypted: type=%v", name, v.Type)
			}
		}

		if err := vc.DecryptRow(&row); err != nil {
			t.Fatalf("DecryptRow() failed: %v", err)
		}
		for name, want := range original.Named {
			if !row.Named[name].Equal(want) {
				t.Errorf("Value %q mismatch after round trip", name)
			}
		}
	})
}

func TestEncryptedValuesDiffer(t *testing.T) {
	vc := testValueCrypto(t)
	seq := NewRandomSequencer()

	// Identical plaintexts must produce distinct ciphertexts: the nonce
	// differs per encryption
	a := store.TextValue("same")
	b := store.TextValue("same")
	if err := vc.EncryptValue(seq, &a); err != nil {
		t.Fatalf("EncryptValue() failed: %v", err)
	}
	if err := vc.EncryptValue(seq, &b); err != nil {
		t.Fatalf("EncryptValue() failed: %v", err)
	}
	if a.Equal(b) {
		t.Error("Two encryptions of the same plaintext produced identical blobs")
	}
}
