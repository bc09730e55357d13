package pgstore

import (
	"context"

	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

// Schema alteration rewrites the stored schema blob; stored rows are
// opaque to this layer, so positional rows keep their shape and the
// decorating layer above stays responsible for value content.

func (s *PGStore) RenameSchema(ctx context.Context, table, newTable string) error {
	schema, err := s.FetchSchema(ctx, table)
	if err != nil {
		return err
	}
	if schema == nil {
		return store.NewError("RenameSchema", table, store.ErrTableNotFound)
	}
	schema.TableName = newTable

	blob, err := encodeSchema(schema)
	if err != nil {
		return err
	}
	if err := s.exec(ctx, `
		UPDATE sealstore_schemas SET table_name = $1, schema = $2 WHERE table_name = $3`,
		newTable, blob, table); err != nil {
		return store.NewError("RenameSchema", table, err)
	}
	if err := s.exec(ctx, `
		UPDATE sealstore_rows SET table_name = $1 WHERE table_name = $2`,
		newTable, table); err != nil {
		return store.NewError("RenameSchema", table, err)
	}
	return nil
}

func (s *PGStore) RenameColumn(ctx context.Context, table, column, newColumn string) error {
	return s.updateSchema(ctx, "RenameColumn", table, func(schema *store.Schema) error {
		for i := range schema.Columns {
			if schema.Columns[i].Name == column {
				schema.Columns[i].Name = newColumn
				return nil
			}
		}
		return store.ErrColumnNotFound
	})
}

func (s *PGStore) AddColumn(ctx context.Context, table string, def store.ColumnDef) error {
	return s.updateSchema(ctx, "AddColumn", table, func(schema *store.Schema) error {
		schema.Columns = append(schema.Columns, def)
		return nil
	})
}

func (s *PGStore) DropColumn(ctx context.Context, table, column string, ifExists bool) error {
	return s.updateSchema(ctx, "DropColumn", table, func(schema *store.Schema) error {
		for i := range schema.Columns {
			if schema.Columns[i].Name == column {
				schema.Columns = append(schema.Columns[:i], schema.Columns[i+1:]...)
				return nil
			}
		}
		if ifExists {
			return nil
		}
		return store.ErrColumnNotFound
	})
}

// updateSchema applies fn to the stored schema and writes it back
func (s *PGStore) updateSchema(ctx context.Context, op, table string, fn func(*store.Schema) error) error {
	schema, err := s.FetchSchema(ctx, table)
	if err != nil {
		return err
	}
	if schema == nil {
		return store.NewError(op, table, store.ErrTableNotFound)
	}
	if err := fn(schema); err != nil {
		return store.NewError(op, table, err)
	}

	blob, err := encodeSchema(schema)
	if err != nil {
		return err
	}
	if err := s.exec(ctx,
		`UPDATE sealstore_schemas SET schema = $1 WHERE table_name = $2`,
		blob, table); err != nil {
		return store.NewError(op, table, err)
	}
	return nil
}

func (s *PGStore) FetchFunction(ctx context.Context, name string) (*store.Function, error) {
	var blob []byte
	err := s.q().QueryRow(ctx,
		`SELECT def FROM sealstore_functions WHERE name = $1`, name).Scan(&blob)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, store.NewError("FetchFunction", "", err)
	}
	return decodeFunction(blob)
}

func (s *PGStore) FetchAllFunctions(ctx context.Context) ([]store.Function, error) {
	rows, err := s.q().Query(ctx, `SELECT def FROM sealstore_functions ORDER BY name`)
	if err != nil {
		return nil, store.NewError("FetchAllFunctions", "", err)
	}
	defer rows.Close()

	var fns []store.Function
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, store.NewError("FetchAllFunctions", "", err)
		}
		fn, err := decodeFunction(blob)
		if err != nil {
			return nil, err
		}
		fns = append(fns, *fn)
	}
	return fns, rows.Err()
}

func (s *PGStore) InsertFunction(ctx context.Context, fn store.Function) error {
	blob, err := encodeFunction(&fn)
	if err != nil {
		return err
	}
	if err := s.exec(ctx, `
		INSERT INTO sealstore_functions (name, def) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET def = EXCLUDED.def`,
		fn.Name, blob); err != nil {
		return store.NewError("InsertFunction", "", err)
	}
	return nil
}

func (s *PGStore) DeleteFunction(ctx context.Context, name string) error {
	var exists bool
	if err := s.q().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sealstore_functions WHERE name = $1)`, name).Scan(&exists); err != nil {
		return store.NewError("DeleteFunction", "", err)
	}
	if !exists {
		return store.NewError("DeleteFunction", "", store.ErrFunctionNotFound)
	}
	if err := s.exec(ctx, `DELETE FROM sealstore_functions WHERE name = $1`, name); err != nil {
		return store.NewError("DeleteFunction", "", err)
	}
	return nil
}
