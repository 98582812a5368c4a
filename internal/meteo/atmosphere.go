// Package meteo provides the forcing side of a simulation: atmosphere
// records with their derived psychrometric quantities, weather sequences,
// and a CSV importer for instrument files.
package meteo

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/plantfab/leafsim/internal/physics"
)

// Input is the user-supplied part of an atmosphere record.
type Input struct {
	// T is air temperature (Celsius).
	T float64 `validate:"gte=-50,lte=60"`
	// Wind is wind speed above the canopy (m s-1).
	Wind float64 `validate:"gte=0"`
	// P is atmospheric pressure (kPa).
	P float64 `validate:"gt=50,lt=120"`
	// Rh is relative humidity as a fraction.
	Rh float64 `validate:"gte=0,lte=1"`
	// Ca is air CO2 concentration (ppm). Zero selects the 400 ppm default.
	Ca float64 `validate:"gte=0"`
	// Rad is incoming shortwave radiation (W m-2), optional.
	Rad float64 `validate:"gte=0"`
}

// Record is one forcing record: the supplied fields plus the derived
// quantities every model reads precomputed. Records are read-only once
// built.
type Record struct {
	Input

	// E is the actual vapour pressure (kPa).
	E float64
	// ESat is the saturation vapour pressure (kPa).
	ESat float64
	// VPD is the air vapour pressure deficit (kPa).
	VPD float64
	// Rho is the air density (kg m-3).
	Rho float64
	// Lambda is the latent heat of vaporization (J kg-1).
	Lambda float64
	// Gamma is the psychrometric constant (kPa K-1).
	Gamma float64
	// Delta is the slope of the saturation vapour pressure curve (kPa K-1).
	Delta float64
}

var validateInput = validator.New(validator.WithRequiredStructEnabled())

// New builds a record from user input, bounds-checks it and computes the
// derived quantities once so models never recompute them per invocation.
func New(in Input, c physics.Constants) (*Record, error) {
	if in.Ca == 0 {
		in.Ca = 400.0
	}
	if err := validateInput.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid atmosphere input: %w", err)
	}

	r := &Record{Input: in}
	r.ESat = physics.ESat(in.T)
	r.E = r.ESat * in.Rh
	r.VPD = r.ESat - r.E
	r.Rho = physics.AirDensity(in.T, in.P, c)
	r.Lambda = physics.LatentHeat(in.T, c)
	r.Gamma = physics.PsychrometricGamma(in.P, r.Lambda, c)
	r.Delta = physics.ESatSlope(in.T)
	return r, nil
}
