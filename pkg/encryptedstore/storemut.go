package encryptedstore

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-sealstore/pkg/encryption"
	"github.com/dd0wney/cluso-sealstore/pkg/logging"
	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

func isSerialization(err error) bool {
	return errors.Is(err, encryption.ErrSerialization)
}

func isInvalidValue(err error) bool {
	return errors.Is(err, encryption.ErrInvalidValue)
}

// Write path. Rows are encrypted before anything is forwarded, so a
// failing value aborts the whole call with the inner store untouched.

func (es *EncryptedStore) InsertSchema(ctx context.Context, schema *store.Schema) error {
	return es.inner.InsertSchema(ctx, schema)
}

func (es *EncryptedStore) DeleteSchema(ctx context.Context, table string) error {
	return es.inner.DeleteSchema(ctx, table)
}

func (es *EncryptedStore) InsertData(ctx context.Context, table string, rows []store.KeyedRow) error {
	encrypted := make([]store.KeyedRow, len(rows))
	for i, kr := range rows {
		row := kr.Row.Clone()
		if err := es.encryptRow("insert", &row); err != nil {
			return store.NewError("InsertData", table, err)
		}
		encrypted[i] = store.KeyedRow{Key: kr.Key, Row: row}
	}

	es.logger.Debug("inserting rows", logging.Table(table), logging.Rows(len(rows)))
	return es.inner.InsertData(ctx, table, encrypted)
}

func (es *EncryptedStore) AppendData(ctx context.Context, table string, rows []store.Row) error {
	encrypted := make([]store.Row, len(rows))
	for i := range rows {
		row := rows[i].Clone()
		if err := es.encryptRow("append", &row); err != nil {
			return store.NewError("AppendData", table, err)
		}
		encrypted[i] = row
	}

	es.logger.Debug("appending rows", logging.Table(table), logging.Rows(len(rows)))
	return es.inner.AppendData(ctx, table, encrypted)
}

// DeleteData passes through: row keys are never encrypted
func (es *EncryptedStore) DeleteData(ctx context.Context, table string, keys []store.Key) error {
	return es.inner.DeleteData(ctx, table, keys)
}
