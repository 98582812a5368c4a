// Package physics holds the read-only physical-constant bundle shared by
// every model invocation, and the psychrometric helper functions the weather
// layer and the energy-balance models build on.
package physics

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Constants is the bundle of physical constants passed unchanged through
// every model invocation in a run. Models never mutate it.
type Constants struct {
	// K0 is absolute zero in Celsius.
	K0 float64 `yaml:"k0" validate:"lt=0"`
	// R is the universal gas constant (J mol-1 K-1).
	R float64 `yaml:"r" validate:"gt=0"`
	// Rd is the gas constant of dry air (J kg-1 K-1).
	Rd float64 `yaml:"rd" validate:"gt=0"`
	// Cp is the specific heat of air at constant pressure (J kg-1 K-1).
	Cp float64 `yaml:"cp" validate:"gt=0"`
	// Epsilon is the ratio of water vapour to dry air molecular weights.
	Epsilon float64 `yaml:"epsilon" validate:"gt=0,lt=1"`
	// Lambda0 is the latent heat of vaporization at 0 Celsius (J kg-1).
	Lambda0 float64 `yaml:"lambda0" validate:"gt=0"`
	// Sigma is the Stefan-Boltzmann constant (W m-2 K-4).
	Sigma float64 `yaml:"sigma" validate:"gt=0"`
	// Dh0 is the molecular diffusivity for heat at 0 Celsius (m2 s-1).
	Dh0 float64 `yaml:"dh0" validate:"gt=0"`
	// GbvGbh converts boundary-layer conductance for heat to water vapour.
	GbvGbh float64 `yaml:"gbv_gbh" validate:"gt=0"`
	// GsvGsc converts stomatal conductance for CO2 to water vapour.
	GsvGsc float64 `yaml:"gsv_gsc" validate:"gt=0"`
	// GbvGbc converts boundary-layer conductance for CO2 to water vapour.
	GbvGbc float64 `yaml:"gbv_gbc" validate:"gt=0"`
}

// Defaults returns the standard constant values.
func Defaults() Constants {
	return Constants{
		K0:      -273.15,
		R:       8.314,
		Rd:      287.0586,
		Cp:      1013.0,
		Epsilon: 0.622,
		Lambda0: 2.501e6,
		Sigma:   5.670373e-8,
		Dh0:     21.5e-6,
		GbvGbh:  1.075,
		GsvGsc:  1.57,
		GbvGbc:  1.37,
	}
}

// Load reads a YAML constants file over the defaults, so a file only needs
// to name the values it overrides. The result is range-validated.
func Load(path string) (Constants, error) {
	c := Defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Constants{}, fmt.Errorf("reading constants file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Constants{}, fmt.Errorf("decoding constants file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Constants{}, fmt.Errorf("constants file %s: %w", path, err)
	}
	return c, nil
}

// Validate checks every constant against its physical range.
func (c Constants) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}
