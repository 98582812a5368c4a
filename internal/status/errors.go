package status

import (
	"fmt"
	"strings"
)

// NoSuchVariableError reports access to a variable name absent from the
// table's schema.
type NoSuchVariableError struct {
	Name string
}

func (e *NoSuchVariableError) Error() string {
	return fmt.Sprintf("no such variable: %q", e.Name)
}

// IndexOutOfBoundsError reports row access outside [0, RowCount).
type IndexOutOfBoundsError struct {
	Index int
	Rows  int
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("row index %d out of bounds (table has %d rows)", e.Index, e.Rows)
}

// InconsistentStepCountError reports construction from per-variable value
// sequences whose finite lengths (> 1) disagree.
type InconsistentStepCountError struct {
	Lengths map[string]int
}

func (e *InconsistentStepCountError) Error() string {
	parts := make([]string, 0, len(e.Lengths))
	for name, n := range e.Lengths {
		parts = append(parts, fmt.Sprintf("%s=%d", name, n))
	}
	return fmt.Sprintf("inconsistent step counts across variables: %s", strings.Join(parts, ", "))
}
