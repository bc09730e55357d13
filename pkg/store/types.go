package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// ValueType represents the type of a column value
type ValueType uint8

const (
	TypeNull ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeText
	TypeBytes // Opaque binary; also the carrier for encrypted blobs
	TypeTimestamp
)

// String returns a human-readable name for the value type
func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeText:
		return "text"
	case TypeBytes:
		return "bytes"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Value represents a typed column value
type Value struct {
	Type ValueType
	Data []byte
}

// Helper functions to create typed values
func NullValue() Value {
	return Value{Type: TypeNull}
}

func BoolValue(b bool) Value {
	data := []byte{0}
	if b {
		data[0] = 1
	}
	return Value{Type: TypeBool, Data: data}
}

func IntValue(i int64) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(i))
	return Value{Type: TypeInt, Data: data}
}

func FloatValue(f float64) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, math.Float64bits(f))
	return Value{Type: TypeFloat, Data: data}
}

func TextValue(s string) Value {
	return Value{Type: TypeText, Data: []byte(s)}
}

func BytesValue(b []byte) Value {
	return Value{Type: TypeBytes, Data: b}
}

func TimestampValue(t time.Time) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(t.UnixNano()))
	return Value{Type: TypeTimestamp, Data: data}
}

// Decode methods
func (v Value) AsBool() (bool, error) {
	if v.Type != TypeBool || len(v.Data) != 1 {
		return false, fmt.Errorf("value is not a bool")
	}
	return v.Data[0] == 1, nil
}

func (v Value) AsInt() (int64, error) {
	if v.Type != TypeInt || len(v.Data) != 8 {
		return 0, fmt.Errorf("value is not an int")
	}
	return int64(binary.LittleEndian.Uint64(v.Data)), nil
}

func (v Value) AsFloat() (float64, error) {
	if v.Type != TypeFloat || len(v.Data) != 8 {
		return 0, fmt.Errorf("value is not a float")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.Data)), nil
}

func (v Value) AsText() (string, error) {
	if v.Type != TypeText {
		return "", fmt.Errorf("value is not text")
	}
	return string(v.Data), nil
}

func (v Value) AsBytes() ([]byte, error) {
	if v.Type != TypeBytes {
		return nil, fmt.Errorf("value is not bytes")
	}
	return v.Data, nil
}

func (v Value) AsTimestamp() (time.Time, error) {
	if v.Type != TypeTimestamp || len(v.Data) != 8 {
		return time.Time{}, fmt.Errorf("value is not a timestamp")
	}
	return time.Unix(0, int64(binary.LittleEndian.Uint64(v.Data))), nil
}

// IsNull reports whether the value is the null variant
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// Equal reports whether two values have the same type and content
func (v Value) Equal(other Value) bool {
	return v.Type == other.Type && bytes.Equal(v.Data, other.Data)
}

// Clone returns a deep copy of the value
func (v Value) Clone() Value {
	if v.Data == nil {
		return Value{Type: v.Type}
	}
	data := make([]byte, len(v.Data))
	copy(data, v.Data)
	return Value{Type: v.Type, Data: data}
}
