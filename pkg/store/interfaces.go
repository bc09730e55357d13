package store

import "context"

// IndexOperator is the comparison applied by an indexed scan
type IndexOperator uint8

const (
	OpEq IndexOperator = iota
	OpLt
	OpLtEq
	OpGt
	OpGtEq
)

// IndexFilter narrows an indexed scan to values matching the comparison
type IndexFilter struct {
	Operator IndexOperator
	Value    Value
}

// OrderBy describes the column an index is built over
type OrderBy struct {
	Column string
	Asc    bool
}

// Store is the read side of the row-store capability set
type Store interface {
	// FetchSchema returns the schema for a table, or nil if it does not exist
	FetchSchema(ctx context.Context, table string) (*Schema, error)
	// FetchAllSchemas returns every schema known to the store
	FetchAllSchemas(ctx context.Context) ([]Schema, error)
	// FetchData returns the row stored under key, or nil if absent
	FetchData(ctx context.Context, table string, key Key) (*Row, error)
	// ScanData returns a lazy iterator over every (key, row) in the table
	ScanData(ctx context.Context, table string) (RowIter, error)
}

// StoreMut is the write side of the row-store capability set
type StoreMut interface {
	InsertSchema(ctx context.Context, schema *Schema) error
	DeleteSchema(ctx context.Context, table string) error
	// InsertData writes rows under explicit keys, overwriting existing rows
	InsertData(ctx context.Context, table string, rows []KeyedRow) error
	// AppendData writes rows under store-assigned keys
	AppendData(ctx context.Context, table string, rows []Row) error
	DeleteData(ctx context.Context, table string, keys []Key) error
}

// KeyedRow pairs a row with its key for InsertData
type KeyedRow struct {
	Key Key
	Row Row
}

// AlterTable covers schema alteration operations
type AlterTable interface {
	RenameSchema(ctx context.Context, table, newTable string) error
	RenameColumn(ctx context.Context, table, column, newColumn string) error
	AddColumn(ctx context.Context, table string, def ColumnDef) error
	DropColumn(ctx context.Context, table, column string, ifExists bool) error
}

// Index is the indexed read capability
type Index interface {
	// ScanIndexedData scans rows through a named index. asc selects the
	// direction when non-nil; filter narrows the scan when non-nil.
	ScanIndexedData(ctx context.Context, table, index string, asc *bool, filter *IndexFilter) (RowIter, error)
}

// IndexMut is the index maintenance capability
type IndexMut interface {
	CreateIndex(ctx context.Context, table, index string, column OrderBy) error
	DropIndex(ctx context.Context, table, index string) error
}

// Transaction is the transaction control capability. Implementations
// without native transactions report ErrTransactionNotSupported.
type Transaction interface {
	Begin(ctx context.Context, autocommit bool) (bool, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Metadata exposes per-table metadata records
type Metadata interface {
	ScanTableMeta(ctx context.Context) ([]TableMeta, error)
}

// Functions is the custom-function registry capability
type Functions interface {
	FetchFunction(ctx context.Context, name string) (*Function, error)
	FetchAllFunctions(ctx context.Context) ([]Function, error)
	InsertFunction(ctx context.Context, fn Function) error
	DeleteFunction(ctx context.Context, name string) error
}

// FullStore is the complete capability set a decorating layer wraps
type FullStore interface {
	Store
	StoreMut
	AlterTable
	Index
	IndexMut
	Transaction
	Metadata
	Functions
}
