// Package constantgs provides a fixed stomatal conductance. It is the
// simplest StomatalConductance provider: useful for prescribed-conductance
// experiments and as a second candidate when testing ambiguous couplings.
package constantgs

import (
	"context"

	"github.com/hashicorp/hcl/v2"

	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/registry"
	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/internal/variables"
)

// Params holds the prescribed conductance.
type Params struct {
	// Gs is the constant stomatal conductance (mol CO2 m-2 s-1).
	Gs float64 `hcl:"gs,optional" validate:"gt=0"`
}

// DefaultParams returns a mid-range conductance.
func DefaultParams() Params {
	return Params{Gs: 0.1}
}

// Model writes the prescribed conductance every step.
type Model struct {
	params Params
}

// New builds the model from explicit parameters.
func New(p Params) *Model {
	return &Model{params: p}
}

// Name implements sim.Model.
func (m *Model) Name() string { return "ConstantGs" }

// Capability implements sim.Model.
func (m *Model) Capability() sim.Capability { return sim.StomatalConductance }

// Inputs implements sim.Model. The model reads nothing.
func (m *Model) Inputs() variables.Contract { return nil }

// Outputs implements sim.Model.
func (m *Model) Outputs() variables.Contract {
	return variables.NewContract(variables.New("Gs"))
}

// Dependencies implements sim.Model.
func (m *Model) Dependencies() map[string]sim.Capability { return nil }

// Run implements sim.Model.
func (m *Model) Run(ctx context.Context, s *status.Status, atmo *meteo.Record, c physics.Constants) error {
	return s.Set("Gs", m.params.Gs)
}

// Closure implements sim.ConductanceClosure with a zero assimilation slope.
func (m *Model) Closure(s *status.Status, atmo *meteo.Record) (float64, float64, error) {
	return m.params.Gs, 0, nil
}

// Module registers the model kind.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterModel("ConstantGs", func(ctx context.Context, body hcl.Body) (sim.Model, error) {
		p := DefaultParams()
		if err := registry.DecodeParams(body, &p); err != nil {
			return nil, err
		}
		return New(p), nil
	})
}
