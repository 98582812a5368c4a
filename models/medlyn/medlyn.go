// Package medlyn implements the Medlyn et al. (2011) optimal stomatal
// conductance model. It runs standalone against an assimilation value
// already in the status, and exposes the linear closure a photosynthesis
// model couples to.
package medlyn

import (
	"context"
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"

	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/registry"
	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/internal/variables"
)

// Params are the fitted Medlyn coefficients.
type Params struct {
	// G0 is the residual conductance (mol CO2 m-2 s-1).
	G0 float64 `hcl:"g0,optional" validate:"gte=0"`
	// G1 is the slope parameter (kPa^0.5).
	G1 float64 `hcl:"g1,optional" validate:"gte=0"`
}

// DefaultParams returns coefficients in the range reported for C3 trees.
func DefaultParams() Params {
	return Params{G0: 0.03, G1: 12.0}
}

// Model is the Medlyn conductance model.
type Model struct {
	params Params
}

// New builds the model from explicit parameters.
func New(p Params) *Model {
	return &Model{params: p}
}

// Name implements sim.Model.
func (m *Model) Name() string { return "Medlyn" }

// Capability implements sim.Model.
func (m *Model) Capability() sim.Capability { return sim.StomatalConductance }

// Inputs implements sim.Model.
func (m *Model) Inputs() variables.Contract {
	return variables.NewContract(
		variables.New("A"),
		variables.New("Cs"),
		variables.New("Dleaf"),
	)
}

// Outputs implements sim.Model.
func (m *Model) Outputs() variables.Contract {
	return variables.NewContract(variables.New("Gs"))
}

// Dependencies implements sim.Model. The closure itself needs nothing; the
// coupling runs the other way around.
func (m *Model) Dependencies() map[string]sim.Capability { return nil }

// Run implements sim.Model: Gs = g0 + (1 + g1/sqrt(Dleaf)) * A / Cs.
func (m *Model) Run(ctx context.Context, s *status.Status, atmo *meteo.Record, c physics.Constants) error {
	g0, slope, err := m.Closure(s, atmo)
	if err != nil {
		return err
	}
	a, err := s.Get("A")
	if err != nil {
		return err
	}
	return s.Set("Gs", g0+slope*a)
}

// Closure implements sim.ConductanceClosure: the intercept and the
// assimilation slope of Gs = g0 + slope * A.
func (m *Model) Closure(s *status.Status, atmo *meteo.Record) (float64, float64, error) {
	dlFallback, caFallback := math.NaN(), math.NaN()
	if atmo != nil {
		dlFallback, caFallback = atmo.VPD, atmo.Ca
	}
	dleaf := s.GetOr("Dleaf", dlFallback)
	cs := s.GetOr("Cs", caFallback)
	if math.IsNaN(dleaf) || math.IsNaN(cs) {
		return 0, 0, fmt.Errorf("Dleaf and Cs are uninitialized and no forcing record is available")
	}
	if dleaf <= 0 {
		// The optimality argument breaks down at zero deficit; clamp to a
		// small value as field implementations do.
		dleaf = 1e-3
	}
	if cs <= 0 {
		return 0, 0, fmt.Errorf("leaf surface CO2 must be positive, got %g", cs)
	}
	return m.params.G0, (1.0 + m.params.G1/math.Sqrt(dleaf)) / cs, nil
}

// Module registers the model kind.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterModel("Medlyn", func(ctx context.Context, body hcl.Body) (sim.Model, error) {
		p := DefaultParams()
		if err := registry.DecodeParams(body, &p); err != nil {
			return nil, err
		}
		return New(p), nil
	})
}
