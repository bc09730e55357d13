package store

// RowIter is a lazy, finite, one-shot sequence of (key, row) pairs
// produced by a scan. Next returns ok=false once the sequence is
// exhausted or after the first error.
type RowIter interface {
	// Next advances the iterator. It returns the next key and row, or
	// ok=false when the sequence ends. A non-nil error terminates the
	// iteration; subsequent calls keep returning the same error.
	Next() (Key, Row, bool, error)
}

// sliceIter iterates over an in-memory slice of (key, row) pairs
type sliceIter struct {
	keys []Key
	rows []Row
	pos  int
}

// NewSliceIter builds a RowIter over pre-materialized pairs. Mostly
// useful for store implementations that buffer scans, and for tests.
func NewSliceIter(keys []Key, rows []Row) RowIter {
	return &sliceIter{keys: keys, rows: rows}
}

func (it *sliceIter) Next() (Key, Row, bool, error) {
	if it.pos >= len(it.keys) {
		return nil, Row{}, false, nil
	}
	k, r := it.keys[it.pos], it.rows[it.pos]
	it.pos++
	return k, r, true, nil
}

// errIter yields a single error and nothing else
type errIter struct {
	err  error
	done bool
}

// NewErrIter builds a RowIter that fails immediately with err
func NewErrIter(err error) RowIter {
	return &errIter{err: err}
}

func (it *errIter) Next() (Key, Row, bool, error) {
	return nil, Row{}, false, it.err
}

// CollectRows drains an iterator into slices. Intended for tests and
// small administrative scans; production reads should stream.
func CollectRows(it RowIter) ([]Key, []Row, error) {
	var keys []Key
	var rows []Row
	for {
		k, r, ok, err := it.Next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return keys, rows, nil
		}
		keys = append(keys, k)
		rows = append(rows, r)
	}
}
