package encryptedstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-sealstore/pkg/encryption"
	"github.com/dd0wney/cluso-sealstore/pkg/logging"
	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// ChangeKey re-encrypts every stored row under newKey and returns a new
// decorator bound to it. The receiver must not be used afterwards.
//
// Rotation is not atomic: each row is read, re-encrypted, and written
// back individually. A failure aborts immediately and leaves the store
// in a mixed state, some rows under the new key and the rest under the
// old one, with no rollback. Take a backup or wrap the call in the
// inner store's transaction before rotating. Concurrent writers during
// rotation land under whichever key was active for them at that
// instant; callers needing strict consistency must exclude writes for
// the duration.
func (es *EncryptedStore) ChangeKey(ctx context.Context, newKey []byte) (*EncryptedStore, error) {
	newEngine, err := encryption.NewEngine(newKey)
	if err != nil {
		return nil, err
	}
	newCrypto := encryption.NewValueCrypto(newEngine, es.codec)

	start := time.Now()
	tables, rows, err := es.rewriteAll(ctx, newCrypto)

	if es.metrics != nil {
		es.metrics.RotationDuration.Observe(time.Since(start).Seconds())
		es.metrics.RotationTablesTotal.Add(float64(tables))
		es.metrics.RotationRowsTotal.Add(float64(rows))
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		es.metrics.RotationsTotal.WithLabelValues(outcome).Inc()
	}

	if err != nil {
		es.logger.Error("key rotation aborted, store left in mixed-key state",
			logging.Int("tables_done", tables), logging.Int("rows_done", rows),
			logging.Error(err))
		return nil, err
	}

	es.logger.Info("key rotation complete",
		logging.Int("tables", tables), logging.Int("rows", rows),
		logging.Duration("elapsed", time.Since(start)))

	return &EncryptedStore{
		inner:   es.inner,
		crypto:  newCrypto,
		seq:     es.seq,
		codec:   es.codec,
		logger:  es.logger,
		metrics: es.metrics,
	}, nil
}

// rewriteAll walks every table and rewrites every row under the new
// crypto. Returns the number of tables and rows completed.
func (es *EncryptedStore) rewriteAll(ctx context.Context, newCrypto *encryption.ValueCrypto) (int, int, error) {
	schemas, err := es.inner.FetchAllSchemas(ctx)
	if err != nil {
		return 0, 0, err
	}

	tables, rows := 0, 0
	for _, schema := range schemas {
		table := schema.TableName

		// Materialize the key list first; the rewrite below mutates
		// the table we would otherwise be scanning
		it, err := es.inner.ScanData(ctx, table)
		if err != nil {
			return tables, rows, err
		}
		keys, _, err := store.CollectRows(it)
		if err != nil {
			return tables, rows, err
		}

		for _, key := range keys {
			if err := es.rewriteRow(ctx, newCrypto, table, key); err != nil {
				return tables, rows, err
			}
			rows++
		}
		tables++
	}
	return tables, rows, nil
}

// rewriteRow re-encrypts a single row in place. Values that were never
// encrypted (default column literals) stay plaintext.
func (es *EncryptedStore) rewriteRow(ctx context.Context, newCrypto *encryption.ValueCrypto, table string, key store.Key) error {
	row, err := es.inner.FetchData(ctx, table, key)
	if err != nil {
		return err
	}
	if row == nil {
		// The scan said this key exists; a missing row means the store
		// changed underneath us
		return store.NewError("ChangeKey", table,
			fmt.Errorf("%w: row vanished during rotation", encryption.ErrInvalidValue))
	}

	rewrite := func(v *store.Value) error {
		applied, err := es.crypto.DecryptValue(v)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}
		return newCrypto.EncryptValue(es.seq, v)
	}

	switch row.Kind {
	case store.RowMap:
		for name, v := range row.Named {
			if err := rewrite(&v); err != nil {
				return store.NewError("ChangeKey", table, err)
			}
			row.Named[name] = v
		}
	default:
		for i := range row.Values {
			if err := rewrite(&row.Values[i]); err != nil {
				return store.NewError("ChangeKey", table, err)
			}
		}
	}

	return es.inner.InsertData(ctx, table, []store.KeyedRow{{Key: key, Row: *row}})
}
