package status

import (
	"github.com/plantfab/leafsim/internal/variables"
)

// Status is a live view of one table row: the mutable variable store models
// read and write during a single time step. Exactly one view should be
// handed out per row at a time; the execution driver enforces this.
type Status struct {
	table *Table
	row   int
}

// New builds a standalone single-step store from a merged contract, every
// slot at its default.
func New(schema variables.Contract) *Status {
	t := NewTable(schema, 1)
	return &Status{table: t, row: 0}
}

// Table returns the table backing the view.
func (s *Status) Table() *Table { return s.table }

// RowIndex returns the index of the viewed row.
func (s *Status) RowIndex() int { return s.row }

// Schema returns the underlying schema.
func (s *Status) Schema() variables.Contract { return s.table.schema }

// Get returns the current value of name.
func (s *Status) Get(name string) (float64, error) {
	return s.table.GetAt(s.row, name)
}

// Set writes a new value for name.
func (s *Status) Set(name string, value float64) error {
	return s.table.SetAt(s.row, name, value)
}

// GetOr returns the current value of name, or fallback when the variable
// is absent from the schema or still holds its uninitialized sentinel.
// Models use this to seed coupled variables from the forcing record on the
// first pass of a time step.
func (s *Status) GetOr(name string, fallback float64) float64 {
	v, ok := s.table.schema.Lookup(name)
	if !ok {
		return fallback
	}
	val, err := s.Get(name)
	if err != nil || v.IsSentinel(val) {
		return fallback
	}
	return val
}

// GetInt returns the current value of an Int-kind variable.
func (s *Status) GetInt(name string) (int, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// Initialized reports whether every required variable currently holds a
// value other than its kind's uninitialized sentinel.
func (s *Status) Initialized(required variables.Contract) bool {
	return len(s.Uninitialized(required)) == 0
}

// Uninitialized returns the names among required still holding their
// sentinel, in the required contract's order.
func (s *Status) Uninitialized(required variables.Contract) []string {
	var names []string
	for _, v := range required {
		val, err := s.Get(v.Name)
		if err != nil {
			// Absent from the schema counts as uninitialized.
			names = append(names, v.Name)
			continue
		}
		if val == v.Kind.Sentinel() {
			names = append(names, v.Name)
		}
	}
	return names
}
