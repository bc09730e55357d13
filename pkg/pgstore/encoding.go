package pgstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Rows, schemas, and function definitions are persisted as JSON blobs.
// Value payloads are []byte and marshal to base64, so encrypted blobs
// survive the round trip byte for byte.

type jsonValue struct {
	Type uint8  `json:"type"`
	Data []byte `json:"data,omitempty"`
}

type jsonRow struct {
	Kind   uint8                `json:"kind"`
	Values []jsonValue          `json:"values,omitempty"`
	Named  map[string]jsonValue `json:"named,omitempty"`
}

func encodeRow(row *store.Row) ([]byte, error) {
	jr := jsonRow{Kind: uint8(row.Kind)}
	switch row.Kind {
	case store.RowMap:
		jr.Named = make(map[string]jsonValue, len(row.Named))
		for name, v := range row.Named {
			jr.Named[name] = jsonValue{Type: uint8(v.Type), Data: v.Data}
		}
	default:
		jr.Values = make([]jsonValue, len(row.Values))
		for i, v := range row.Values {
			jr.Values[i] = jsonValue{Type: uint8(v.Type), Data: v.Data}
		}
	}

	blob, err := json.Marshal(jr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	return blob, nil
}

func decodeRow(blob []byte) (*store.Row, error) {
	var jr jsonRow
	if err := json.Unmarshal(blob, &jr); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}

	row := store.Row{Kind: store.RowKind(jr.Kind)}
	switch row.Kind {
	case store.RowMap:
		row.Named = make(map[string]store.Value, len(jr.Named))
		for name, v := range jr.Named {
			row.Named[name] = store.Value{Type: store.ValueType(v.Type), Data: v.Data}
		}
	default:
		row.Values = make([]store.Value, len(jr.Values))
		for i, v := range jr.Values {
			row.Values[i] = store.Value{Type: store.ValueType(v.Type), Data: v.Data}
		}
	}
	return &row, nil
}

func encodeSchema(schema *store.Schema) ([]byte, error) {
	blob, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return blob, nil
}

func decodeSchema(blob []byte) (*store.Schema, error) {
	var schema store.Schema
	if err := json.Unmarshal(blob, &schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return &schema, nil
}

func encodeFunction(fn *store.Function) ([]byte, error) {
	blob, err := json.Marshal(fn)
	if err != nil {
		return nil, fmt.Errorf("failed to encode function: %w", err)
	}
	return blob, nil
}

func decodeFunction(blob []byte) (*store.Function, error) {
	var fn store.Function
	if err := json.Unmarshal(blob, &fn); err != nil {
		return nil, fmt.Errorf("failed to decode function: %w", err)
	}
	return &fn, nil
}
