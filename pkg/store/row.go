package store

import (
	"bytes"
	"encoding/binary"
)

// RowKind distinguishes the two row representations
type RowKind uint8

const (
	// RowVec is a positional row: values ordered by column position
	RowVec RowKind = iota
	// RowMap is a named row: values keyed by column name
	RowMap
)

// Row is the unit of stored data. Exactly one of Values or Named is
// populated, selected by Kind. Crypto passes preserve the kind, the
// value count, and the key set; only value content changes.
type Row struct {
	Kind   RowKind
	Values []Value
	Named  map[string]Value
}

// VecRow creates a positional row
func VecRow(values ...Value) Row {
	return Row{Kind: RowVec, Values: values}
}

// MapRow creates a named row
func MapRow(named map[string]Value) Row {
	return Row{Kind: RowMap, Named: named}
}

// Len returns the number of values in the row
func (r Row) Len() int {
	if r.Kind == RowMap {
		return len(r.Named)
	}
	return len(r.Values)
}

// Clone returns a deep copy of the row
func (r Row) Clone() Row {
	out := Row{Kind: r.Kind}
	if r.Kind == RowMap {
		out.Named = make(map[string]Value, len(r.Named))
		for k, v := range r.Named {
			out.Named[k] = v.Clone()
		}
		return out
	}
	out.Values = make([]Value, len(r.Values))
	for i, v := range r.Values {
		out.Values[i] = v.Clone()
	}
	return out
}

// Key identifies a row within a table. Keys are stored and compared as
// raw bytes and are never encrypted.
type Key []byte

// IntKey encodes an integer row key
func IntKey(i int64) Key {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(i))
	return Key(data)
}

// TextKey encodes a string row key
func TextKey(s string) Key {
	return Key(s)
}

// Equal reports whether two keys are identical
func (k Key) Equal(other Key) bool {
	return bytes.Equal(k, other)
}

// ColumnDef describes a single column of a table
type ColumnDef struct {
	Name     string
	Type     ValueType
	Nullable bool
	Default  *Value // Literal default, stored in plaintext
}

// Schema describes a table: its name and column definitions.
// Schemas are owned by the underlying store and are never encrypted.
type Schema struct {
	TableName string
	Columns   []ColumnDef
}

// TableMeta is an opaque metadata record surfaced by ScanTableMeta
type TableMeta struct {
	TableName string
	Meta      map[string]string
}

// FunctionKind is the closed set of custom function bodies
type FunctionKind uint8

const (
	FuncScalar FunctionKind = iota
	FuncAggregate
)

// Function is a registered custom function
type Function struct {
	Name string
	Kind FunctionKind
	Args []string
	Body string
}
