// Package pgstore implements the row-store capability set over
// PostgreSQL. Rows are stored as opaque byte blobs keyed by (table,
// key), so an encrypting decorator on top of it never leaks plaintext
// into the database. Indexed scans are not supported.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// PGStore persists rows in PostgreSQL using a connection pool
type PGStore struct {
	pool *pgxpool.Pool

	mu sync.Mutex
	tx pgx.Tx // active explicit transaction, nil outside Begin/Commit
}

// New creates a PostgreSQL-backed store and runs migrations
func New(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

var _ store.FullStore = (*PGStore)(nil)

func (s *PGStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sealstore_schemas (
			table_name TEXT PRIMARY KEY,
			schema     BYTEA NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sealstore_rows (
			table_name TEXT  NOT NULL,
			key        BYTEA NOT NULL,
			row        BYTEA NOT NULL,
			seq        BIGSERIAL,
			PRIMARY KEY (table_name, key)
		);
		CREATE TABLE IF NOT EXISTS sealstore_functions (
			name TEXT PRIMARY KEY,
			def  BYTEA NOT NULL
		);
	`)
	return err
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// q returns the active transaction if one is open, else the pool
func (s *PGStore) q() queryRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return s.tx
	}
	return s.pool
}

// queryRunner is the query surface shared by pgxpool.Pool and pgx.Tx
type queryRunner interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// exec runs a statement on the transaction if open, else the pool
func (s *PGStore) exec(ctx context.Context, sql string, args ...any) error {
	s.mu.Lock()
	tx := s.tx
	s.mu.Unlock()

	var err error
	if tx != nil {
		_, err = tx.Exec(ctx, sql, args...)
	} else {
		_, err = s.pool.Exec(ctx, sql, args...)
	}
	return err
}

func (s *PGStore) FetchSchema(ctx context.Context, table string) (*store.Schema, error) {
	var blob []byte
	err := s.q().QueryRow(ctx,
		`SELECT schema FROM sealstore_schemas WHERE table_name = $1`, table).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewError("FetchSchema", table, err)
	}
	return decodeSchema(blob)
}

func (s *PGStore) FetchAllSchemas(ctx context.Context) ([]store.Schema, error) {
	rows, err := s.q().Query(ctx,
		`SELECT schema FROM sealstore_schemas ORDER BY table_name`)
	if err != nil {
		return nil, store.NewError("FetchAllSchemas", "", err)
	}
	defer rows.Close()

	var schemas []store.Schema
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, store.NewError("FetchAllSchemas", "", err)
		}
		schema, err := decodeSchema(blob)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, *schema)
	}
	return schemas, rows.Err()
}

func (s *PGStore) FetchData(ctx context.Context, table string, key store.Key) (*store.Row, error) {
	var blob []byte
	err := s.q().QueryRow(ctx,
		`SELECT row FROM sealstore_rows WHERE table_name = $1 AND key = $2`,
		table, []byte(key)).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewError("FetchData", table, err)
	}
	row, err := decodeRow(blob)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *PGStore) ScanData(ctx context.Context, table string) (store.RowIter, error) {
	rows, err := s.q().Query(ctx,
		`SELECT key, row FROM sealstore_rows WHERE table_name = $1 ORDER BY seq`, table)
	if err != nil {
		return nil, store.NewError("ScanData", table, err)
	}
	defer rows.Close()

	// Buffer the scan: the pool connection goes back before the caller
	// starts pulling rows
	var keys []store.Key
	var decoded []store.Row
	for rows.Next() {
		var key, blob []byte
		if err := rows.Scan(&key, &blob); err != nil {
			return nil, store.NewError("ScanData", table, err)
		}
		row, err := decodeRow(blob)
		if err != nil {
			return nil, err
		}
		keys = append(keys, store.Key(key))
		decoded = append(decoded, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewError("ScanData", table, err)
	}
	return store.NewSliceIter(keys, decoded), nil
}

func (s *PGStore) InsertSchema(ctx context.Context, schema *store.Schema) error {
	blob, err := encodeSchema(schema)
	if err != nil {
		return err
	}
	var exists bool
	err = s.q().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sealstore_schemas WHERE table_name = $1)`,
		schema.TableName).Scan(&exists)
	if err != nil {
		return store.NewError("InsertSchema", schema.TableName, err)
	}
	if exists {
		return store.NewError("InsertSchema", schema.TableName, store.ErrTableExists)
	}
	if err := s.exec(ctx,
		`INSERT INTO sealstore_schemas (table_name, schema) VALUES ($1, $2)`,
		schema.TableName, blob); err != nil {
		return store.NewError("InsertSchema", schema.TableName, err)
	}
	return nil
}

func (s *PGStore) DeleteSchema(ctx context.Context, table string) error {
	if err := s.exec(ctx,
		`DELETE FROM sealstore_rows WHERE table_name = $1`, table); err != nil {
		return store.NewError("DeleteSchema", table, err)
	}
	if err := s.exec(ctx,
		`DELETE FROM sealstore_schemas WHERE table_name = $1`, table); err != nil {
		return store.NewError("DeleteSchema", table, err)
	}
	return nil
}

func (s *PGStore) InsertData(ctx context.Context, table string, rows []store.KeyedRow) error {
	for _, kr := range rows {
		blob, err := encodeRow(&kr.Row)
		if err != nil {
			return err
		}
		if err := s.exec(ctx, `
			INSERT INTO sealstore_rows (table_name, key, row) VALUES ($1, $2, $3)
			ON CONFLICT (table_name, key) DO UPDATE SET row = EXCLUDED.row`,
			table, []byte(kr.Key), blob); err != nil {
			return store.NewError("InsertData", table, err)
		}
	}
	return nil
}

func (s *PGStore) AppendData(ctx context.Context, table string, rows []store.Row) error {
	for i := range rows {
		blob, err := encodeRow(&rows[i])
		if err != nil {
			return err
		}
		var next int64
		if err := s.q().QueryRow(ctx,
			`SELECT nextval(pg_get_serial_sequence('sealstore_rows', 'seq'))`).Scan(&next); err != nil {
			return store.NewError("AppendData", table, err)
		}
		if err := s.exec(ctx, `
			INSERT INTO sealstore_rows (table_name, key, row, seq) VALUES ($1, $2, $3, $4)`,
			table, []byte(store.IntKey(next)), blob, next); err != nil {
			return store.NewError("AppendData", table, err)
		}
	}
	return nil
}

func (s *PGStore) DeleteData(ctx context.Context, table string, keys []store.Key) error {
	for _, key := range keys {
		if err := s.exec(ctx,
			`DELETE FROM sealstore_rows WHERE table_name = $1 AND key = $2`,
			table, []byte(key)); err != nil {
			return store.NewError("DeleteData", table, err)
		}
	}
	return nil
}

func (s *PGStore) ScanIndexedData(_ context.Context, table, _ string, _ *bool, _ *store.IndexFilter) (store.RowIter, error) {
	return nil, store.NewError("ScanIndexedData", table, store.ErrIndexNotSupported)
}

func (s *PGStore) CreateIndex(_ context.Context, table, _ string, _ store.OrderBy) error {
	return store.NewError("CreateIndex", table, store.ErrIndexNotSupported)
}

func (s *PGStore) DropIndex(_ context.Context, table, _ string) error {
	return store.NewError("DropIndex", table, store.ErrIndexNotSupported)
}

func (s *PGStore) Begin(ctx context.Context, autocommit bool) (bool, error) {
	if autocommit {
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return false, store.NewError("Begin", "", fmt.Errorf("transaction already open"))
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, store.NewError("Begin", "", err)
	}
	s.tx = tx
	return false, nil
}

func (s *PGStore) Commit(ctx context.Context) error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()

	if tx == nil {
		return nil
	}
	if err := tx.Commit(ctx); err != nil {
		return store.NewError("Commit", "", err)
	}
	return nil
}

func (s *PGStore) Rollback(ctx context.Context) error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()

	if tx == nil {
		return nil
	}
	if err := tx.Rollback(ctx); err != nil {
		return store.NewError("Rollback", "", err)
	}
	return nil
}

func (s *PGStore) ScanTableMeta(ctx context.Context) ([]store.TableMeta, error) {
	rows, err := s.q().Query(ctx, `
		SELECT s.table_name, COUNT(r.key)
		FROM sealstore_schemas s
		LEFT JOIN sealstore_rows r ON r.table_name = s.table_name
		GROUP BY s.table_name ORDER BY s.table_name`)
	if err != nil {
		return nil, store.NewError("ScanTableMeta", "", err)
	}
	defer rows.Close()

	var metas []store.TableMeta
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, store.NewError("ScanTableMeta", "", err)
		}
		metas = append(metas, store.TableMeta{
			TableName: name,
			Meta:      map[string]string{"rows": fmt.Sprintf("%d", count)},
		})
	}
	return metas, rows.Err()
}
