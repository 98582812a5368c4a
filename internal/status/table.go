// Package status stores per-time-step simulation state: a columnar table of
// variable values (one row per time step, one schema for all rows) and live
// row views handed to models during execution.
package status

import (
	"context"
	"fmt"
	"iter"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/variables"
)

// Table is an ordered sequence of time-step rows sharing one schema. All
// numeric storage is float64; the schema's kinds select sentinels and
// export formatting.
type Table struct {
	schema  variables.Contract
	columns map[string][]float64
	rows    int
}

// NewTable builds a table of n rows from a merged contract, every cell set
// to its variable's default (usually the uninitialized sentinel).
func NewTable(schema variables.Contract, n int) *Table {
	t := &Table{
		schema:  schema,
		columns: make(map[string][]float64, len(schema)),
		rows:    n,
	}
	for _, v := range schema {
		col := make([]float64, n)
		for i := range col {
			col[i] = v.Default
		}
		t.columns[v.Name] = col
	}
	return t
}

// NewTableFromValues builds a table from user-supplied per-variable values.
// A value may be a scalar (float64, float32, int) or a []float64 sequence.
// Scalars broadcast to the row count, which is the maximum sequence length
// among the supplied variables (1 when only scalars are given). Sequences of
// differing lengths greater than one are a construction error. Keys unknown
// to the schema are logged and ignored, never silently added.
func NewTableFromValues(ctx context.Context, schema variables.Contract, values map[string]any) (*Table, error) {
	logger := ctxlog.FromContext(ctx)

	seqs := make(map[string][]float64, len(values))
	rows := 1
	lengths := make(map[string]int)
	for name, raw := range values {
		if !schema.Contains(name) {
			logger.Warn("Ignoring initial value for unknown variable.", "variable", name)
			continue
		}
		seq, err := toSequence(raw)
		if err != nil {
			return nil, fmt.Errorf("initial value for %q: %w", name, err)
		}
		seqs[name] = seq
		if len(seq) > 1 {
			lengths[name] = len(seq)
			if rows > 1 && len(seq) != rows {
				return nil, &InconsistentStepCountError{Lengths: lengths}
			}
			rows = len(seq)
		}
	}

	t := NewTable(schema, rows)
	for name, seq := range seqs {
		switch len(seq) {
		case rows:
			copy(t.columns[name], seq)
		case 1:
			col := t.columns[name]
			for i := range col {
				col[i] = seq[0]
			}
		default:
			lengths[name] = len(seq)
			return nil, &InconsistentStepCountError{Lengths: lengths}
		}
	}
	return t, nil
}

func toSequence(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case float64:
		return []float64{v}, nil
	case float32:
		return []float64{float64(v)}, nil
	case int:
		return []float64{float64(v)}, nil
	case []float64:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty value sequence")
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Schema returns the table's variable declarations.
func (t *Table) Schema() variables.Contract { return t.schema }

// RowCount returns the number of time steps the table holds.
func (t *Table) RowCount() int { return t.rows }

// Row returns a live view of row i. Mutations through the view mutate the
// table.
func (t *Table) Row(i int) (*Status, error) {
	if i < 0 || i >= t.rows {
		return nil, &IndexOutOfBoundsError{Index: i, Rows: t.rows}
	}
	return &Status{table: t, row: i}, nil
}

// Column returns a copy of the named column across all rows.
func (t *Table) Column(name string) ([]float64, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, &NoSuchVariableError{Name: name}
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// SetColumn replaces the named column. The sequence length must equal the
// row count.
func (t *Table) SetColumn(name string, values []float64) error {
	col, ok := t.columns[name]
	if !ok {
		return &NoSuchVariableError{Name: name}
	}
	if len(values) != t.rows {
		return &InconsistentStepCountError{Lengths: map[string]int{name: len(values), "table": t.rows}}
	}
	copy(col, values)
	return nil
}

// GetAt returns the value at (row, name).
func (t *Table) GetAt(row int, name string) (float64, error) {
	if row < 0 || row >= t.rows {
		return 0, &IndexOutOfBoundsError{Index: row, Rows: t.rows}
	}
	col, ok := t.columns[name]
	if !ok {
		return 0, &NoSuchVariableError{Name: name}
	}
	return col[row], nil
}

// SetAt writes the value at (row, name).
func (t *Table) SetAt(row int, name string, value float64) error {
	if row < 0 || row >= t.rows {
		return &IndexOutOfBoundsError{Index: row, Rows: t.rows}
	}
	col, ok := t.columns[name]
	if !ok {
		return &NoSuchVariableError{Name: name}
	}
	col[row] = value
	return nil
}

// All iterates row views in order. Each call starts again at row 0.
func (t *Table) All() iter.Seq2[int, *Status] {
	return func(yield func(int, *Status) bool) {
		for i := 0; i < t.rows; i++ {
			if !yield(i, &Status{table: t, row: i}) {
				return
			}
		}
	}
}

// Expand returns a table of n rows whose every row is a copy of the
// receiver's single row. The receiver must have exactly one row.
func (t *Table) Expand(n int) (*Table, error) {
	if t.rows != 1 {
		return nil, &InconsistentStepCountError{Lengths: map[string]int{"table": t.rows, "target": n}}
	}
	out := NewTable(t.schema, n)
	for name, col := range t.columns {
		dst := out.columns[name]
		for i := range dst {
			dst[i] = col[0]
		}
	}
	return out, nil
}

// Clone returns a deep copy sharing nothing with the receiver.
func (t *Table) Clone() *Table {
	out := &Table{
		schema:  t.schema,
		columns: make(map[string][]float64, len(t.columns)),
		rows:    t.rows,
	}
	for name, col := range t.columns {
		dst := make([]float64, len(col))
		copy(dst, col)
		out.columns[name] = dst
	}
	return out
}
