package driver

import (
	"fmt"
	"strings"
)

// UninitializedVariablesError is raised before any model runs when required
// input variables still hold their uninitialized sentinel. Fully
// recoverable: supply the named values and retry.
type UninitializedVariablesError struct {
	Role  string
	Names []string
}

func (e *UninitializedVariablesError) Error() string {
	return fmt.Sprintf("cannot run %q: uninitialized variables: %s",
		e.Role, strings.Join(e.Names, ", "))
}

// StepCountMismatchError is raised when the status table and the forcing
// sequence have incompatible, non-broadcastable lengths.
type StepCountMismatchError struct {
	Rows  int
	Steps int
}

func (e *StepCountMismatchError) Error() string {
	return fmt.Sprintf("status table has %d rows but forcing sequence has %d records", e.Rows, e.Steps)
}
