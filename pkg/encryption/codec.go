package encryption

import (
	"fmt"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// Codec flag bits (second frame byte)
const (
	flagCompressed = 1 << 0
)

// compressThreshold is the smallest payload worth compressing; tiny
// scalar payloads only grow under snappy
const compressThreshold = 64

// Codec converts a typed value to and from a stable, self-describing
// byte frame: [type byte][flags byte][payload]. The payload is the
// value's raw little-endian data, optionally snappy-compressed for
// larger text/bytes payloads. The frame is only ever interpreted by
// this layer; the underlying store sees it as opaque bytes.
type Codec struct {
	compress bool
}

// NewCodec creates a codec. With compress enabled, payloads at or above
// 64 bytes are snappy-compressed before sealing.
func NewCodec(compress bool) *Codec {
	return &Codec{compress: compress}
}

// DefaultCodec returns the codec used when none is configured:
// compression enabled.
func DefaultCodec() *Codec {
	return &Codec{compress: true}
}

// Encode serializes a value into its frame
func (c *Codec) Encode(v store.Value) ([]byte, error) {
	if v.Type > store.TypeTimestamp {
		return nil, fmt.Errorf("%w: unknown value type %d", ErrSerialization, v.Type)
	}

	payload := v.Data
	var flags byte
	if c.compress && len(payload) >= compressThreshold {
		payload = snappy.Encode(nil, payload)
		flags |= flagCompressed
	}

	frame := make([]byte, 2+len(payload))
	frame[0] = byte(v.Type)
	frame[1] = flags
	copy(frame[2:], payload)
	return frame, nil
}

// Decode deserializes a frame back into a typed value
func (c *Codec) Decode(frame []byte) (store.Value, error) {
	if len(frame) < 2 {
		return store.Value{}, fmt.Errorf("%w: frame too short", ErrSerialization)
	}

	vt := store.ValueType(frame[0])
	if vt > store.TypeTimestamp {
		return store.Value{}, fmt.Errorf("%w: unknown value type %d", ErrSerialization, frame[0])
	}
	flags := frame[1]

	payload := frame[2:]
	if flags&flagCompressed != 0 {
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return store.Value{}, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		payload = decoded
	}

	if err := checkPayload(vt, payload); err != nil {
		return store.Value{}, err
	}

	data := make([]byte, len(payload))
	copy(data, payload)
	if len(data) == 0 {
		data = nil
	}
	return store.Value{Type: vt, Data: data}, nil
}

// checkPayload validates fixed-width payloads so a corrupt frame fails
// here instead of on a later accessor
func checkPayload(vt store.ValueType, payload []byte) error {
	want := -1
	switch vt {
	case store.TypeNull:
		want = 0
	case store.TypeBool:
		want = 1
	case store.TypeInt, store.TypeFloat, store.TypeTimestamp:
		want = 8
	}
	if want >= 0 && len(payload) != want {
		return fmt.Errorf("%w: %s payload is %d bytes, want %d", ErrSerialization, vt, len(payload), want)
	}
	return nil
}
