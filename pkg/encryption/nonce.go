package encryption

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// NonceSequencer produces a fresh nonce for every encryption performed
// under one key. Implementations must be safe for concurrent use; the
// engine calls Advance once per sealed value.
type NonceSequencer interface {
	// Advance returns the next nonce, or ErrNonceExhausted when no
	// fresh nonce can be produced
	Advance() (Nonce, error)
}

// RandomSequencer draws each nonce from crypto/rand. With a 96-bit
// nonce the collision probability stays negligible at realistic write
// volumes, and no state survives restarts. This is the production
// default.
type RandomSequencer struct{}

// NewRandomSequencer creates a stateless random nonce sequencer
func NewRandomSequencer() *RandomSequencer {
	return &RandomSequencer{}
}

func (s *RandomSequencer) Advance() (Nonce, error) {
	var nonce Nonce
	if _, err := rand.Read(nonce[:]); err != nil {
		return Nonce{}, fmt.Errorf("%w: %v", ErrNonceExhausted, err)
	}
	return nonce, nil
}

// CounterSequencer encodes a monotonically increasing counter into the
// nonce. Deterministic, so useful for tests; unsafe to restart from
// zero under an unchanged key. Callers that reuse a key across restarts
// must persist the counter (see Counter) and resume from it.
type CounterSequencer struct {
	counter uint64
	mu      sync.Mutex
}

// NewCounterSequencer creates a counter sequencer starting after start:
// the first Advance returns start+1
func NewCounterSequencer(start uint64) *CounterSequencer {
	return &CounterSequencer{counter: start}
}

func (s *CounterSequencer) Advance() (Nonce, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counter == math.MaxUint64 {
		return Nonce{}, ErrNonceExhausted
	}
	s.counter++

	var nonce Nonce
	binary.LittleEndian.PutUint64(nonce[:8], s.counter)
	return nonce, nil
}

// Counter returns the last counter value handed out, for external
// persistence across restarts
func (s *CounterSequencer) Counter() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// Verify sequencer implementations
var _ NonceSequencer = (*RandomSequencer)(nil)
var _ NonceSequencer = (*CounterSequencer)(nil)
