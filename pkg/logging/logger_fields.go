package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint32(key string, value uint32) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Field helpers for common domain fields
func Component(name string) Field {
	return String("component", name)
}

func Table(name string) Field {
	return String("table", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Rows(n int) Field {
	return Int("rows", n)
}

func KeyVersion(v uint32) Field {
	return Uint32("key_version", v)
}
