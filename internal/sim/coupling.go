package sim

import (
	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/status"
)

// Binder is implemented by models whose computation needs the model
// instances filling their declared dependency roles (e.g. a photosynthesis
// model iterating against its conductance closure). After resolution the
// driver calls Bind with the resolved models keyed by dependency role and
// executes the returned bound copy; the original stays immutable and
// reusable.
type Binder interface {
	Model
	Bind(deps map[string]Model) (Model, error)
}

// ConductanceClosure is the capability interface a stomatal-conductance
// model exposes to the photosynthesis model coupled to it: the linear form
// Gs = G0 + Slope * A, evaluated against the current step state. Gs and G0
// are CO2 conductances (mol m-2 s-1).
type ConductanceClosure interface {
	Model
	Closure(s *status.Status, atmo *meteo.Record) (g0, slope float64, err error)
}
