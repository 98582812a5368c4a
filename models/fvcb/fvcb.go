// Package fvcb implements the Farquhar-von Caemmerer-Berry model of C3
// photosynthesis, coupled at run time to a stomatal conductance closure: an
// internal fixed-point iteration solves assimilation, conductance and
// intercellular CO2 together for each time step.
package fvcb

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

// Params are the FvCB parameters at the 25 Celsius reference temperature
// plus the temperature-response coefficients.
type Params struct {
	// VcMaxRef is the maximum carboxylation rate (umol m-2 s-1).
	VcMaxRef float64 `hcl:"vcmax,optional" validate:"gt=0"`
	// JMaxRef is the maximum electron transport rate (umol m-2 s-1).
	JMaxRef float64 `hcl:"jmax,optional" validate:"gt=0"`
	// RdRef is the mitochondrial respiration in the light (umol m-2 s-1).
	RdRef float64 `hcl:"rd,optional" validate:"gt=0"`
	// Alpha is the apparent quantum yield of electron transport.
	Alpha float64 `hcl:"alpha,optional" validate:"gt=0,lte=1"`
	// Theta is the curvature of the light response.
	Theta float64 `hcl:"theta,optional" validate:"gt=0,lt=1"`
	// O2 is the oxygen concentration at the chloroplast (mmol mol-1).
	O2 float64 `hcl:"o2,optional" validate:"gt=0"`
	// MaxIter bounds the assimilation/conductance fixed point.
	MaxIter int `hcl:"max_iter,optional" validate:"gt=0"`
	// Eps is the convergence threshold on intercellular CO2 (umol mol-1).
	Eps float64 `hcl:"eps,optional" validate:"gt=0"`

	// Activation energies (J mol-1) and entropy terms (J mol-1 K-1) of the
	// temperature responses.
	EaVcMax float64 `hcl:"ea_vcmax,optional" validate:"gt=0"`
	HdVcMax float64 `hcl:"hd_vcmax,optional" validate:"gt=0"`
	DsVcMax float64 `hcl:"ds_vcmax,optional" validate:"gt=0"`
	EaJMax  float64 `hcl:"ea_jmax,optional" validate:"gt=0"`
	HdJMax  float64 `hcl:"hd_jmax,optional" validate:"gt=0"`
	DsJMax  float64 `hcl:"ds_jmax,optional" validate:"gt=0"`
	EaRd    float64 `hcl:"ea_rd,optional" validate:"gt=0"`
}

// DefaultParams returns the commonly fitted C3 parameter set.
func DefaultParams() Params {
	return Params{
		VcMaxRef: 200.0,
		JMaxRef:  250.0,
		RdRef:    0.6,
		Alpha:    0.24,
		Theta:    0.7,
		O2:       210.0,
		MaxIter:  50,
		Eps:      0.01,
		EaVcMax:  58550.0,
		HdVcMax:  200000.0,
		DsVcMax:  629.26,
		EaJMax:   29680.0,
		HdJMax:   200000.0,
		DsJMax:   631.88,
		EaRd:     46390.0,
	}
}

// Kinetic constants of Rubisco at 25 Celsius and their activation energies.
const (
	kc25     = 404.9 // umol mol-1
	eaKc     = 79430.0
	ko25     = 278.4 // mmol mol-1
	eaKo     = 36380.0
	gStar25  = 42.75 // umol mol-1
	eaGStar  = 37830.0
	minGs    = 1e-4 // mol m-2 s-1, numerical floor
	damping = 0.5
)

// Model is the FvCB photosynthesis model. The zero gs field marks the
// unbound template; the driver binds the resolved conductance closure
// before execution.
type Model struct {
	params Params
	gs     sim.ConductanceClosure
}

// New builds an unbound model from explicit parameters.
func New(p Params) *Model {
	return &Model{params: p}
}

// Name implements sim.Model.
func (m *Model) Name() string { return "Fvcb" }

// Capability implements sim.Model.
func (m *Model) Capability() sim.Capability { return sim.Photosynthesis }

// Inputs implements sim.Model.
func (m *Model) Inputs() variables.Contract {
	return variables.NewContract(
		variables.New("PPFD"),
		variables.New("Tleaf"),
		variables.New("Cs"),
		variables.New("Dleaf"),
	)
}

// Outputs implements sim.Model.
func (m *Model) Outputs() variables.Contract {
	return variables.NewContract(
		variables.New("A"),
		variables.New("Gs"),
		variables.New("Ci"),
	)
}

// Dependencies implements sim.Model.
func (m *Model) Dependencies() map[string]sim.Capability {
	return map[string]sim.Capability{
		"stomatal_conductance": sim.StomatalConductance,
	}
}

// Bind implements sim.Binder: the returned copy couples to the resolved
// conductance model's closure.
func (m *Model) Bind(deps map[string]sim.Model) (sim.Model, error) {
	dep, ok := deps["stomatal_conductance"]
	if !ok {
		return nil, fmt.Errorf("Fvcb requires a stomatal_conductance model")
	}
	closure, ok := dep.(sim.ConductanceClosure)
	if !ok {
		return nil, fmt.Errorf("conductance model %s does not expose a closure", dep.Name())
	}
	return &Model{params: m.params, gs: closure}, nil
}

// Run implements sim.Model.
func (m *Model) Run(ctx context.Context, s *status.Status, atmo *meteo.Record, c physics.Constants) error {
	if m.gs == nil {
		return fmt.Errorf("Fvcb is not bound to a stomatal conductance model")
	}

	ppfd, err := s.Get("PPFD")
	if err != nil {
		return err
	}

	// Leaf temperature and surface CO2 may be outputs of an energy-balance
	// model that has not produced them yet on the first pass of a step; in
	// that case they are seeded from the forcing record.
	taFallback, caFallback := math.NaN(), math.NaN()
	if atmo != nil {
		taFallback, caFallback = atmo.T, atmo.Ca
	}
	tleaf := s.GetOr("Tleaf", taFallback)
	cs := s.GetOr("Cs", caFallback)
	if math.IsNaN(tleaf) || math.IsNaN(cs) {
		return fmt.Errorf("Tleaf and Cs are uninitialized and no forcing record is available")
	}

	// Temperature responses of the kinetic parameters.
	vcmax := physics.ArrheniusPeaked(m.params.VcMaxRef, m.params.EaVcMax, m.params.HdVcMax, m.params.DsVcMax, tleaf, c)
	jmax := physics.ArrheniusPeaked(m.params.JMaxRef, m.params.EaJMax, m.params.HdJMax, m.params.DsJMax, tleaf, c)
	rd := physics.Arrhenius(m.params.RdRef, m.params.EaRd, tleaf, c)
	gStar := physics.Arrhenius(gStar25, eaGStar, tleaf, c)
	kc := physics.Arrhenius(kc25, eaKc, tleaf, c)
	ko := physics.Arrhenius(ko25, eaKo, tleaf, c)
	km := kc * (1.0 + m.params.O2/ko)

	// Electron transport from the non-rectangular light response.
	q := m.params.Alpha * ppfd
	j := (q + jmax - math.Sqrt(math.Pow(q+jmax, 2)-4.0*m.params.Theta*q*jmax)) /
		(2.0 * m.params.Theta)

	g0, slope, err := m.gs.Closure(s, atmo)
	if err != nil {
		return err
	}

	// Fixed point on intercellular CO2: assimilation sets conductance,
	// conductance sets the CO2 drawdown, which feeds back on assimilation.
	ci := 0.75 * cs
	var a, gs float64
	for it := 1; it <= m.params.MaxIter; it++ {
		wc := vcmax * (ci - gStar) / (ci + km)
		wj := j / 4.0 * (ci - gStar) / (ci + 2.0*gStar)
		a = math.Min(wc, wj) - rd

		gs = g0 + slope*a
		if gs < minGs {
			gs = minGs
		}

		ciNew := cs - a/gs
		if math.Abs(ciNew-ci) <= m.params.Eps {
			if err := s.Set("A", a); err != nil {
				return err
			}
			if err := s.Set("Gs", gs); err != nil {
				return err
			}
			return s.Set("Ci", ciNew)
		}
		// Damped update keeps the iteration stable at low conductance.
		ci = ci + damping*(ciNew-ci)
	}
	return &sim.NonConvergenceError{Model: m.Name(), MaxIter: m.params.MaxIter, Residual: math.Abs(cs - a/gs - ci)}
}

// Module registers the model kind.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterModel("Fvcb", func(ctx context.Context, body hcl.Body) (sim.Model, error) {
		p := DefaultParams()
		if err := registry.DecodeParams(body, &p); err != nil {
			return nil, err
		}
		return New(p), nil
	})
}
