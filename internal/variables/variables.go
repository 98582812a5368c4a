// Package variables defines the declarative I/O surface of a model: named
// variables with a numeric kind and a default value, grouped into contracts
// that can be merged across a whole model list.
package variables

import (
	"fmt"
	"math"
)

// Kind is the numeric kind of a variable. Storage is always float64; the
// kind selects the uninitialized sentinel and the export formatting.
type Kind int

const (
	// Float64 is the default kind for physical quantities.
	Float64 Kind = iota
	// Float32 marks variables a model only needs at single precision.
	Float32
	// Int marks counters and flags (e.g. solver iteration counts).
	Int
)

// String returns the kind's name for diagnostics.
func (k Kind) String() string {
	switch k {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int:
		return "int"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinel returns the reserved "not yet initialized" value for the kind.
// Realistic physical values never collide with these.
func (k Kind) Sentinel() float64 {
	switch k {
	case Int:
		return float64(math.MinInt64)
	default:
		return math.Inf(-1)
	}
}

// Promote returns the common kind two declarations of the same variable
// resolve to. A float joined with anything wider, or with an integer,
// promotes to double precision.
func Promote(a, b Kind) Kind {
	if a == b {
		return a
	}
	return Float64
}

// Variable is one named slot in a model's contract.
type Variable struct {
	Name    string
	Kind    Kind
	Default float64
}

// New returns a double-precision variable whose default is the
// uninitialized sentinel. This is the common case.
func New(name string) Variable {
	return Variable{Name: name, Kind: Float64, Default: Float64.Sentinel()}
}

// NewWithDefault returns a double-precision variable with an explicit
// default value.
func NewWithDefault(name string, def float64) Variable {
	return Variable{Name: name, Kind: Float64, Default: def}
}

// NewKind returns a variable of the given kind defaulting to that kind's
// sentinel.
func NewKind(name string, kind Kind) Variable {
	return Variable{Name: name, Kind: kind, Default: kind.Sentinel()}
}

// IsSentinel reports whether v is the uninitialized sentinel for the
// variable's kind.
func (v Variable) IsSentinel(val float64) bool {
	return val == v.Kind.Sentinel()
}
