// Package monteith implements the Monteith & Unsworth leaf energy balance:
// a fixed-point iteration on leaf temperature that re-runs the coupled
// photosynthesis model as the leaf-to-air gradients change, until the
// balance closes or the iteration budget runs out.
package monteith

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

// Params configures the energy balance.
type Params struct {
	// MaxIter bounds the leaf-temperature fixed point.
	MaxIter int `hcl:"max_iter,optional" validate:"gt=0"`
	// Eps is the convergence threshold on leaf temperature (K).
	Eps float64 `hcl:"eps,optional" validate:"gt=0"`
	// D is the characteristic dimension of the leaf (m).
	D float64 `hcl:"d,optional" validate:"gt=0"`
	// Emissivity is the thermal emissivity of the leaf surface.
	Emissivity float64 `hcl:"emissivity,optional" validate:"gt=0,lte=1"`
	// AsH is the number of leaf faces exchanging sensible heat.
	AsH float64 `hcl:"ash,optional" validate:"gte=1,lte=2"`
}

// DefaultParams returns values for a broadleaf.
func DefaultParams() Params {
	return Params{MaxIter: 10, Eps: 0.01, D: 0.03, Emissivity: 0.955, AsH: 2.0}
}

// Model is the Monteith energy-balance model. The photosynthesis field is
// nil on the unbound template; the driver binds the resolved model before
// execution.
type Model struct {
	params         Params
	photosynthesis sim.Model
}

// New builds an unbound model from explicit parameters.
func New(p Params) *Model {
	return &Model{params: p}
}

// Name implements sim.Model.
func (m *Model) Name() string { return "Monteith" }

// Capability implements sim.Model.
func (m *Model) Capability() sim.Capability { return sim.EnergyBalance }

// Inputs implements sim.Model. A and Gs are produced by the coupled
// photosynthesis chain; Ra by a light-interception model or the user.
func (m *Model) Inputs() variables.Contract {
	return variables.NewContract(
		variables.New("Ra"),
		variables.New("A"),
		variables.New("Gs"),
	)
}

// Outputs implements sim.Model.
func (m *Model) Outputs() variables.Contract {
	return variables.NewContract(
		variables.New("Tleaf"),
		variables.New("Dleaf"),
		variables.New("Cs"),
		variables.New("Rn"),
		variables.New("H"),
		variables.New("LE"),
		variables.NewKind("Iter", variables.Int),
	)
}

// Dependencies implements sim.Model.
func (m *Model) Dependencies() map[string]sim.Capability {
	return map[string]sim.Capability{
		"photosynthesis": sim.Photosynthesis,
	}
}

// Bind implements sim.Binder.
func (m *Model) Bind(deps map[string]sim.Model) (sim.Model, error) {
	dep, ok := deps["photosynthesis"]
	if !ok {
		return nil, fmt.Errorf("Monteith requires a photosynthesis model")
	}
	return &Model{params: m.params, photosynthesis: dep}, nil
}

// Run implements sim.Model.
func (m *Model) Run(ctx context.Context, s *status.Status, atmo *meteo.Record, c physics.Constants) error {
	if m.photosynthesis == nil {
		return fmt.Errorf("Monteith is not bound to a photosynthesis model")
	}
	if atmo == nil {
		return fmt.Errorf("energy balance needs a forcing record")
	}

	ra, err := s.Get("Ra")
	if err != nil {
		return err
	}

	taK := atmo.T - c.K0
	// Forced-convection boundary-layer conductance for heat, one face
	// (m s-1), after Monteith & Unsworth.
	gbh := 0.00662 * math.Sqrt(atmo.Wind/m.params.D)
	// Molar equivalent at air temperature.
	gbhMol := gbh * atmo.P * 1000.0 / (c.R * taK)

	tleaf := s.GetOr("Tleaf", atmo.T)
	var rn, le, h, dleaf, csurf float64
	for it := 1; it <= m.params.MaxIter; it++ {
		tlK := tleaf - c.K0
		rn = ra - m.params.AsH*m.params.Emissivity*c.Sigma*(math.Pow(tlK, 4)-math.Pow(taK, 4))

		dleaf = physics.ESat(tleaf) - atmo.E
		if dleaf < 0 {
			dleaf = 0
		}
		a := s.GetOr("A", 0)
		csurf = atmo.Ca - a*c.GbvGbc/gbhMol

		if err := s.Set("Tleaf", tleaf); err != nil {
			return err
		}
		if err := s.Set("Dleaf", dleaf); err != nil {
			return err
		}
		if err := s.Set("Cs", csurf); err != nil {
			return err
		}

		// The gradients moved, so the assimilation/conductance pair must
		// be re-solved against them.
		if err := m.photosynthesis.Run(ctx, s, atmo, c); err != nil {
			return fmt.Errorf("energy balance inner solve: %w", err)
		}

		gs, err := s.Get("Gs")
		if err != nil {
			return err
		}
		// Stomatal and boundary-layer conductances for water vapour in
		// series, converted to m s-1.
		gsw := gs * c.GsvGsc
		gbw := gbhMol * c.GbvGbh
		gwMol := 1.0 / (1.0/math.Max(gsw, 1e-6) + 1.0/gbw)
		gw := gwMol * c.R * taK / (atmo.P * 1000.0)

		le = atmo.Rho * c.Cp / atmo.Gamma * gw * dleaf
		h = rn - le
		tleafNew := atmo.T + h/(atmo.Rho*c.Cp*gbh*m.params.AsH)

		if math.Abs(tleafNew-tleaf) <= m.params.Eps {
			if err := writeFluxes(s, rn, h, le); err != nil {
				return err
			}
			if err := s.Set("Tleaf", tleafNew); err != nil {
				return err
			}
			return s.Set("Iter", float64(it))
		}
		tleaf = tleafNew
	}

	// Keep the partial values written so far; the driver records the
	// failure and stamps the iteration counter.
	if err := writeFluxes(s, rn, h, le); err != nil {
		return err
	}
	return &sim.NonConvergenceError{Model: m.Name(), MaxIter: m.params.MaxIter, Residual: math.Abs(h + le - rn)}
}

func writeFluxes(s *status.Status, rn, h, le float64) error {
	if err := s.Set("Rn", rn); err != nil {
		return err
	}
	if err := s.Set("H", h); err != nil {
		return err
	}
	return s.Set("LE", le)
}

// Module registers the model kind.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterModel("Monteith", func(ctx context.Context, body hcl.Body) (sim.Model, error) {
		p := DefaultParams()
		if err := registry.DecodeParams(body, &p); err != nil {
			return nil, err
		}
		return New(p), nil
	})
}
