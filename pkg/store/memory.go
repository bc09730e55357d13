package store

import (
	"context"
	"encoding/binary"
	"sync"
)

// memTable holds one table's rows with insertion order preserved
type memTable struct {
	schema Schema
	order  []string // key bytes, in insertion order
	rows   map[string]Row
	nextID int64 // next auto-assigned key for AppendData
}

// MemoryStore is a map-backed FullStore. It keeps everything in process
// memory and supports the core read/write surface; index scans and
// transactions report not-supported, matching what a minimal reference
// backend is expected to do.
type MemoryStore struct {
	tables    map[string]*memTable
	functions map[string]Function
	mu        sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:    make(map[string]*memTable),
		functions: make(map[string]Function),
	}
}

var _ FullStore = (*MemoryStore)(nil)

func (m *MemoryStore) FetchSchema(_ context.Context, table string) (*Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok {
		return nil, nil
	}
	schema := t.schema
	return &schema, nil
}

func (m *MemoryStore) FetchAllSchemas(_ context.Context) ([]Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	schemas := make([]Schema, 0, len(m.tables))
	for _, t := range m.tables {
		schemas = append(schemas, t.schema)
	}
	return schemas, nil
}

func (m *MemoryStore) FetchData(_ context.Context, table string, key Key) (*Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok {
		return nil, nil
	}
	row, ok := t.rows[string(key)]
	if !ok {
		return nil, nil
	}
	out := row.Clone()
	return &out, nil
}

func (m *MemoryStore) ScanData(_ context.Context, table string) (RowIter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok {
		// Scanning a missing table yields an empty sequence
		return NewSliceIter(nil, nil), nil
	}

	keys := make([]Key, 0, len(t.order))
	rows := make([]Row, 0, len(t.order))
	for _, k := range t.order {
		keys = append(keys, Key(k))
		rows = append(rows, t.rows[k].Clone())
	}
	return NewSliceIter(keys, rows), nil
}

func (m *MemoryStore) InsertSchema(_ context.Context, schema *Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[schema.TableName]; exists {
		return NewError("InsertSchema", schema.TableName, ErrTableExists)
	}
	m.tables[schema.TableName] = &memTable{
		schema: *schema,
		rows:   make(map[string]Row),
	}
	return nil
}

func (m *MemoryStore) DeleteSchema(_ context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tables, table)
	return nil
}

func (m *MemoryStore) InsertData(_ context.Context, table string, rows []KeyedRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return NewError("InsertData", table, ErrTableNotFound)
	}
	for _, kr := range rows {
		k := string(kr.Key)
		if _, exists := t.rows[k]; !exists {
			t.order = append(t.order, k)
		}
		t.rows[k] = kr.Row.Clone()

		// Keep auto-assigned append keys ahead of explicit integer keys
		if id, ok := decodeIntKey(kr.Key); ok && id > t.nextID {
			t.nextID = id
		}
	}
	return nil
}

func decodeIntKey(key Key) (int64, bool) {
	if len(key) != 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(key)), true
}

func (m *MemoryStore) AppendData(_ context.Context, table string, rows []Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return NewError("AppendData", table, ErrTableNotFound)
	}
	for _, row := range rows {
		t.nextID++
		k := string(IntKey(t.nextID))
		for {
			if _, occupied := t.rows[k]; !occupied {
				break
			}
			t.nextID++
			k = string(IntKey(t.nextID))
		}
		t.order = append(t.order, k)
		t.rows[k] = row.Clone()
	}
	return nil
}

func (m *MemoryStore) DeleteData(_ context.Context, table string, keys []Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return NewError("DeleteData", table, ErrTableNotFound)
	}
	for _, key := range keys {
		k := string(key)
		if _, exists := t.rows[k]; !exists {
			continue
		}
		delete(t.rows, k)
		for i, ord := range t.order {
			if ord == k {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (m *MemoryStore) RenameSchema(_ context.Context, table, newTable string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return NewError("RenameSchema", table, ErrTableNotFound)
	}
	t.schema.TableName = newTable
	delete(m.tables, table)
	m.tables[newTable] = t
	return nil
}

func (m *MemoryStore) RenameColumn(_ context.Context, table, column, newColumn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return NewError("RenameColumn", table, ErrTableNotFound)
	}
	for i := range t.schema.Columns {
		if t.schema.Columns[i].Name == column {
			t.schema.Columns[i].Name = newColumn
			return nil
		}
	}
	return NewError("RenameColumn", table, ErrColumnNotFound)
}

func (m *MemoryStore) AddColumn(_ context.Context, table string, def ColumnDef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return NewError("AddColumn", table, ErrTableNotFound)
	}
	t.schema.Columns = append(t.schema.Columns, def)

	// Backfill existing positional rows with the column default
	fill := NullValue()
	if def.Default != nil {
		fill = def.Default.Clone()
	}
	for k, row := range t.rows {
		switch row.Kind {
		case RowVec:
			row.Values = append(row.Values, fill.Clone())
			t.rows[k] = row
		case RowMap:
			row.Named[def.Name] = fill.Clone()
		}
	}
	return nil
}

func (m *MemoryStore) DropColumn(_ context.Context, table, column string, ifExists bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return NewError("DropColumn", table, ErrTableNotFound)
	}
	idx := -1
	for i := range t.schema.Columns {
		if t.schema.Columns[i].Name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		if ifExists {
			return nil
		}
		return NewError("DropColumn", table, ErrColumnNotFound)
	}
	t.schema.Columns = append(t.schema.Columns[:idx], t.schema.Columns[idx+1:]...)
	for k, row := range t.rows {
		switch row.Kind {
		case RowVec:
			if idx < len(row.Values) {
				row.Values = append(row.Values[:idx], row.Values[idx+1:]...)
				t.rows[k] = row
			}
		case RowMap:
			delete(row.Named, column)
		}
	}
	return nil
}

func (m *MemoryStore) ScanIndexedData(_ context.Context, table, _ string, _ *bool, _ *IndexFilter) (RowIter, error) {
	return nil, NewError("ScanIndexedData", table, ErrIndexNotSupported)
}

func (m *MemoryStore) CreateIndex(_ context.Context, table, _ string, _ OrderBy) error {
	return NewError("CreateIndex", table, ErrIndexNotSupported)
}

func (m *MemoryStore) DropIndex(_ context.Context, table, _ string) error {
	return NewError("DropIndex", table, ErrIndexNotSupported)
}

func (m *MemoryStore) Begin(_ context.Context, autocommit bool) (bool, error) {
	if autocommit {
		return true, nil
	}
	return false, NewError("Begin", "", ErrTransactionNotSupported)
}

func (m *MemoryStore) Commit(_ context.Context) error {
	return nil
}

func (m *MemoryStore) Rollback(_ context.Context) error {
	return nil
}

func (m *MemoryStore) ScanTableMeta(_ context.Context) ([]TableMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metas := make([]TableMeta, 0, len(m.tables))
	for name := range m.tables {
		metas = append(metas, TableMeta{TableName: name, Meta: map[string]string{}})
	}
	return metas, nil
}

func (m *MemoryStore) FetchFunction(_ context.Context, name string) (*Function, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fn, ok := m.functions[name]
	if !ok {
		return nil, nil
	}
	return &fn, nil
}

func (m *MemoryStore) FetchAllFunctions(_ context.Context) ([]Function, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fns := make([]Function, 0, len(m.functions))
	for _, fn := range m.functions {
		fns = append(fns, fn)
	}
	return fns, nil
}

func (m *MemoryStore) InsertFunction(_ context.Context, fn Function) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.functions[fn.Name] = fn
	return nil
}

func (m *MemoryStore) DeleteFunction(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.functions[name]; !ok {
		return NewError("DeleteFunction", "", ErrFunctionNotFound)
	}
	delete(m.functions, name)
	return nil
}
