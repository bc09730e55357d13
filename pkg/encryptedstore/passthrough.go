package encryptedstore

import (
	"context"

	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// Everything below carries no row data and forwards verbatim.

func (es *EncryptedStore) RenameSchema(ctx context.Context, table, newTable string) error {
	return es.inner.RenameSchema(ctx, table, newTable)
}

func (es *EncryptedStore) RenameColumn(ctx context.Context, table, column, newColumn string) error {
	return es.inner.RenameColumn(ctx, table, column, newColumn)
}

func (es *EncryptedStore) AddColumn(ctx context.Context, table string, def store.ColumnDef) error {
	return es.inner.AddColumn(ctx, table, def)
}

func (es *EncryptedStore) DropColumn(ctx context.Context, table, column string, ifExists bool) error {
	return es.inner.DropColumn(ctx, table, column, ifExists)
}

func (es *EncryptedStore) CreateIndex(ctx context.Context, table, index string, column store.OrderBy) error {
	return es.inner.CreateIndex(ctx, table, index, column)
}

func (es *EncryptedStore) DropIndex(ctx context.Context, table, index string) error {
	return es.inner.DropIndex(ctx, table, index)
}

func (es *EncryptedStore) Begin(ctx context.Context, autocommit bool) (bool, error) {
	return es.inner.Begin(ctx, autocommit)
}

func (es *EncryptedStore) Commit(ctx context.Context) error {
	return es.inner.Commit(ctx)
}

func (es *EncryptedStore) Rollback(ctx context.Context) error {
	return es.inner.Rollback(ctx)
}

func (es *EncryptedStore) ScanTableMeta(ctx context.Context) ([]store.TableMeta, error) {
	return es.inner.ScanTableMeta(ctx)
}

func (es *EncryptedStore) FetchFunction(ctx context.Context, name string) (*store.Function, error) {
	return es.inner.FetchFunction(ctx, name)
}

func (es *EncryptedStore) FetchAllFunctions(ctx context.Context) ([]store.Function, error) {
	return es.inner.FetchAllFunctions(ctx)
}

func (es *EncryptedStore) InsertFunction(ctx context.Context, fn store.Function) error {
	return es.inner.InsertFunction(ctx, fn)
}

func (es *EncryptedStore) DeleteFunction(ctx context.Context, name string) error {
	return es.inner.DeleteFunction(ctx, name)
}

// Verify the decorator covers the full capability set
var _ store.FullStore = (*EncryptedStore)(nil)
