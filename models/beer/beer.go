// Package beer implements Beer-Lambert light interception: the incoming
// shortwave flux attenuated through the canopy gives the absorbed radiation
// and the photosynthetic photon flux the leaf actually receives.
package beer

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

// Params configures the interception model.
type Params struct {
	// K is the extinction coefficient of the canopy.
	K float64 `hcl:"k,optional" validate:"gt=0,lte=2"`
	// PARFraction is the photosynthetically active fraction of shortwave
	// radiation.
	PARFraction float64 `hcl:"par_fraction,optional" validate:"gt=0,lte=1"`
	// JToUmol converts PAR energy (W m-2) to photon flux (umol m-2 s-1).
	JToUmol float64 `hcl:"j_to_umol,optional" validate:"gt=0"`
}

// DefaultParams returns the usual coefficients.
func DefaultParams() Params {
	return Params{K: 0.5, PARFraction: 0.48, JToUmol: 4.57}
}

// Model computes absorbed radiation from leaf area index and the forcing
// shortwave flux.
type Model struct {
	params Params
}

// New builds the model from explicit parameters.
func New(p Params) *Model {
	return &Model{params: p}
}

// Name implements sim.Model.
func (m *Model) Name() string { return "Beer" }

// Capability implements sim.Model.
func (m *Model) Capability() sim.Capability { return sim.LightInterception }

// Inputs implements sim.Model.
func (m *Model) Inputs() variables.Contract {
	return variables.NewContract(variables.New("LAI"))
}

// Outputs implements sim.Model.
func (m *Model) Outputs() variables.Contract {
	return variables.NewContract(variables.New("Ra"), variables.New("PPFD"))
}

// Dependencies implements sim.Model. Interception is a leaf of every
// coupling tree.
func (m *Model) Dependencies() map[string]sim.Capability { return nil }

// Run implements sim.Model.
func (m *Model) Run(ctx context.Context, s *status.Status, atmo *meteo.Record, c physics.Constants) error {
	if atmo == nil {
		return fmt.Errorf("light interception needs a forcing record")
	}
	lai, err := s.Get("LAI")
	if err != nil {
		return err
	}

	absorbed := atmo.Rad * (1.0 - math.Exp(-m.params.K*lai))
	if err := s.Set("Ra", absorbed); err != nil {
		return err
	}
	ppfd := absorbed * m.params.PARFraction * m.params.JToUmol
	return s.Set("PPFD", ppfd)
}

// Module registers the model kind.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterModel("Beer", func(ctx context.Context, body hcl.Body) (sim.Model, error) {
		p := DefaultParams()
		if err := registry.DecodeParams(body, &p); err != nil {
			return nil, err
		}
		return New(p), nil
	})
}
