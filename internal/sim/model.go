// Package sim defines the contract between the coupling engine and the
// numerical models it drives: the Model interface, the capability labels
// used for dependency matching, and the ModelList that binds models to a
// shared per-step state table.
package sim

import (
	"context"
	"fmt"

	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/internal/variables"
)

// Capability labels the abstract process a model implements. A dependency
// declaration names the capability it requires of the model filling that
// role, never a concrete model kind.
type Capability string

const (
	LightInterception   Capability = "light_interception"
	Photosynthesis      Capability = "photosynthesis"
	StomatalConductance Capability = "stomatal_conductance"
	EnergyBalance       Capability = "energy_balance"
)

// Model is one immutable unit of computation. Implementations hold only
// parameters; all per-step state lives in the Status handed to Run.
type Model interface {
	// Name identifies the model kind (e.g. "Medlyn").
	Name() string
	// Capability labels the process the model implements.
	Capability() Capability
	// Inputs declares the variables the model reads.
	Inputs() variables.Contract
	// Outputs declares the variables the model writes.
	Outputs() variables.Contract
	// Dependencies maps a logical role name to the capability required of
	// the model filling that role. May be empty.
	Dependencies() map[string]Capability
	// Run computes one time step, mutating s in place. The forcing record
	// and constants are read-only.
	Run(ctx context.Context, s *status.Status, atmo *meteo.Record, c physics.Constants) error
}

// NonConvergenceError is the numeric failure an iterative solve inside a
// model reports when it exhausts its iteration budget. The driver logs it
// and continues with the next time step.
type NonConvergenceError struct {
	Model    string
	MaxIter  int
	Residual float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge after %d iterations (residual %g)", e.Model, e.MaxIter, e.Residual)
}

// IterationsVar is the conventional name of the iteration-counter output an
// iterative model exposes. The driver writes the Int sentinel there when a
// step does not converge.
const IterationsVar = "Iter"
