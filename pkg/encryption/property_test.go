package encryption

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// TestCryptoInvariants uses property-based testing to verify the
// invariants that must hold for any representable value
func TestCryptoInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	vc := testValueCrypto(t)
	seq := NewCounterSequencer(0)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	// Property 1: encrypt then decrypt reproduces any text value exactly
	properties.Property("text values round trip", prop.ForAll(
		func(s string) bool {
			original := store.TextValue(s)
			v := original.Clone()
			if err := vc.EncryptValue(seq, &v); err != nil {
				return false
			}
			applied, err := vc.DecryptValue(&v)
			return err == nil && applied && v.Equal(original)
		},
		gen.AnyString(),
	))

	// Property 2: the same holds for ints and floats
	properties.Property("int values round trip", prop.ForAll(
		func(i int64) bool {
			original := store.IntValue(i)
			v := original.Clone()
			if err := vc.EncryptValue(seq, &v); err != nil {
				return false
			}
			applied, err := vc.DecryptValue(&v)
			return err == nil && applied && v.Equal(original)
		},
		gen.Int64(),
	))

	properties.Property("float values round trip", prop.ForAll(
		func(f float64) bool {
			original := store.FloatValue(f)
			v := original.Clone()
			if err := vc.EncryptValue(seq, &v); err != nil {
				return false
			}
			applied, err := vc.DecryptValue(&v)
			return err == nil && applied && v.Equal(original)
		},
		gen.Float64(),
	))

	// Property 3: arbitrary byte payloads round trip through codec and
	// cipher without loss
	properties.Property("byte values round trip", prop.ForAll(
		func(data []byte) bool {
			original := store.Value{Type: store.TypeText, Data: data}
			v := original.Clone()
			if err := vc.EncryptValue(seq, &v); err != nil {
				return false
			}
			applied, err := vc.DecryptValue(&v)
			if err != nil || !applied {
				return false
			}
			if len(data) == 0 {
				return v.Type == store.TypeText && len(v.Data) == 0
			}
			return v.Equal(original)
		},
		gen.SliceOf(gen.UInt8()),
	))

	// Property 4: row shape is invariant under encrypt/decrypt
	properties.Property("row shape preserved", prop.ForAll(
		func(texts []string) bool {
			values := make([]store.Value, len(texts))
			for i, s := range texts {
				values[i] = store.TextValue(s)
			}
			row := store.VecRow(values...)
			if err := vc.EncryptRow(seq, &row); err != nil {
				return false
			}
			if row.Kind != store.RowVec || len(row.Values) != len(texts) {
				return false
			}
			if err := vc.DecryptRow(&row); err != nil {
				return false
			}
			for i, s := range texts {
				if !row.Values[i].Equal(store.TextValue(s)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
