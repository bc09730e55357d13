// Package encryptedstore wraps a row store with transparent field-level
// AES-256-GCM encryption. Every value written through the decorator is
// sealed before it reaches the inner store; every value read is opened
// on the way back, so the inner store never observes plaintext. Keys,
// schemas, and all non-data operations pass through untouched.
package encryptedstore

import (
	"context"

	"github.com/dd0wney/cluso-sealstore/pkg/encryption"
	"github.com/dd0wney/cluso-sealstore/pkg/logging"
	"github.com/dd0wney/cluso-sealstore/pkg/metrics"
	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// Options configures the decorator. The zero value selects a random
// nonce sequencer, the default codec, and no logging or metrics.
type Options struct {
	// Codec overrides the value serialization codec
	Codec *encryption.Codec
	// Sequencer overrides the nonce source. Counter sequencers are
	// deterministic and only safe when the caller persists the counter
	// or changes the key on every restart.
	Sequencer encryption.NonceSequencer
	// Logger receives structured logs; nil means silent
	Logger logging.Logger
	// Metrics receives operation counters; nil disables them
	Metrics *metrics.Registry
	// ValidateKey probes one existing encrypted row at construction
	// and fails with ErrInvalidKey when the supplied key cannot open it
	ValidateKey bool
}

// EncryptedStore decorates a FullStore with value-level encryption.
// One instance is bound to exactly one key; ChangeKey produces a new
// instance bound to the next key.
type EncryptedStore struct {
	inner   store.FullStore
	crypto  *encryption.ValueCrypto
	seq     encryption.NonceSequencer
	codec   *encryption.Codec
	logger  logging.Logger
	metrics *metrics.Registry
}

// New wraps inner with encryption under the given 256-bit key
func New(ctx context.Context, inner store.FullStore, key []byte, opts *Options) (*EncryptedStore, error) {
	if opts == nil {
		opts = &Options{}
	}

	engine, err := encryption.NewEngine(key)
	if err != nil {
		return nil, err
	}

	codec := opts.Codec
	if codec == nil {
		codec = encryption.DefaultCodec()
	}
	seq := opts.Sequencer
	if seq == nil {
		seq = encryption.NewRandomSequencer()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	es := &EncryptedStore{
		inner:   inner,
		crypto:  encryption.NewValueCrypto(engine, codec),
		seq:     seq,
		codec:   codec,
		logger:  logger.With(logging.Component("encryptedstore")),
		metrics: opts.Metrics,
	}

	if opts.ValidateKey {
		if err := es.validateKey(ctx); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// validateKey scans for a row carrying at least one encrypted value and
// attempts to decrypt it. Rows holding only plaintext literals (backfilled
// column defaults) prove nothing about the key and are skipped. A store
// with no encrypted values anywhere validates vacuously.
func (es *EncryptedStore) validateKey(ctx context.Context) error {
	schemas, err := es.inner.FetchAllSchemas(ctx)
	if err != nil {
		return err
	}

	for _, schema := range schemas {
		it, err := es.inner.ScanData(ctx, schema.TableName)
		if err != nil {
			return err
		}
		for {
			_, row, ok, err := it.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if !hasEncryptedValue(&row) {
				continue
			}

			probe := row.Clone()
			if err := es.crypto.DecryptRow(&probe); err != nil {
				es.logger.Warn("key validation failed",
					logging.Table(schema.TableName), logging.Error(err))
				return encryption.ErrInvalidKey
			}
			return nil
		}
	}
	return nil
}

func hasEncryptedValue(row *store.Row) bool {
	if row.Kind == store.RowMap {
		for _, v := range row.Named {
			if v.Type == store.TypeBytes {
				return true
			}
		}
		return false
	}
	for _, v := range row.Values {
		if v.Type == store.TypeBytes {
			return true
		}
	}
	return false
}

// decryptRow runs row decryption and maintains counters
func (es *EncryptedStore) decryptRow(op string, row *store.Row) error {
	if err := es.crypto.DecryptRow(row); err != nil {
		es.countFailure(err)
		return err
	}
	if es.metrics != nil {
		es.metrics.RowsReadTotal.WithLabelValues(op).Inc()
		es.metrics.ValuesDecryptedTotal.Add(float64(row.Len()))
	}
	return nil
}

// encryptRow runs row encryption and maintains counters
func (es *EncryptedStore) encryptRow(op string, row *store.Row) error {
	if err := es.crypto.EncryptRow(es.seq, row); err != nil {
		es.countFailure(err)
		return err
	}
	if es.metrics != nil {
		es.metrics.RowsWrittenTotal.WithLabelValues(op).Inc()
		es.metrics.ValuesEncryptedTotal.Add(float64(row.Len()))
	}
	return nil
}

func (es *EncryptedStore) countFailure(err error) {
	if es.metrics == nil {
		return
	}
	kind := "encryption"
	switch {
	case isSerialization(err):
		kind = "serialization"
	case isInvalidValue(err):
		kind = "invalid_value"
	}
	es.metrics.CryptoFailuresTotal.WithLabelValues(kind).Inc()
}

// Read path

func (es *EncryptedStore) FetchSchema(ctx context.Context, table string) (*store.Schema, error) {
	return es.inner.FetchSchema(ctx, table)
}

func (es *EncryptedStore) FetchAllSchemas(ctx context.Context) ([]store.Schema, error) {
	return es.inner.FetchAllSchemas(ctx)
}

func (es *EncryptedStore) FetchData(ctx context.Context, table string, key store.Key) (*store.Row, error) {
	row, err := es.inner.FetchData(ctx, table, key)
	if err != nil || row == nil {
		return row, err
	}

	if err := es.decryptRow("fetch", row); err != nil {
		return nil, store.NewError("FetchData", table, err)
	}
	return row, nil
}

func (es *EncryptedStore) ScanData(ctx context.Context, table string) (store.RowIter, error) {
	it, err := es.inner.ScanData(ctx, table)
	if err != nil {
		return nil, err
	}
	return &decryptIter{es: es, table: table, op: "scan", errOp: "ScanData", inner: it}, nil
}

func (es *EncryptedStore) ScanIndexedData(ctx context.Context, table, index string, asc *bool, filter *store.IndexFilter) (store.RowIter, error) {
	it, err := es.inner.ScanIndexedData(ctx, table, index, asc, filter)
	if err != nil {
		return nil, err
	}
	return &decryptIter{es: es, table: table, op: "scan_indexed", errOp: "ScanIndexedData", inner: it}, nil
}

// decryptIter decrypts rows lazily as the caller pulls them. The first
// crypto failure terminates the iteration.
type decryptIter struct {
	es    *EncryptedStore
	table string
	op    string // metrics label
	errOp string // operation reported in store errors
	inner store.RowIter
	err   error
}

func (it *decryptIter) Next() (store.Key, store.Row, bool, error) {
	if it.err != nil {
		return nil, store.Row{}, false, it.err
	}

	key, row, ok, err := it.inner.Next()
	if err != nil || !ok {
		return key, row, ok, err
	}

	if err := it.es.decryptRow(it.op, &row); err != nil {
		it.err = store.NewError(it.errOp, it.table, err)
		return nil, store.Row{}, false, it.err
	}
	return key, row, true, nil
}
