package physics

import "math"

// ESat returns the saturation vapour pressure (kPa) over liquid water at
// air temperature T (Celsius), after Tetens.
func ESat(t float64) float64 {
	return 0.61078 * math.Exp(17.269*t/(t+237.3))
}

// ESatSlope returns the slope of the saturation vapour pressure curve
// (kPa K-1) at air temperature T (Celsius).
func ESatSlope(t float64) float64 {
	return ESat(t) * 17.269 * 237.3 / math.Pow(t+237.3, 2)
}

// LatentHeat returns the latent heat of vaporization of water (J kg-1) at
// temperature T (Celsius).
func LatentHeat(t float64, c Constants) float64 {
	return c.Lambda0 - 2.361e3*t
}

// PsychrometricGamma returns the psychrometric constant (kPa K-1) at air
// pressure P (kPa) given the latent heat lambda (J kg-1).
func PsychrometricGamma(p, lambda float64, c Constants) float64 {
	return c.Cp * p / (c.Epsilon * lambda)
}

// AirDensity returns the density of moist air (kg m-3) at temperature T
// (Celsius) and pressure P (kPa).
func AirDensity(t, p float64, c Constants) float64 {
	return p * 1000.0 / (c.Rd * (t - c.K0))
}

// Arrhenius scales a parameter value at the 25 Celsius reference to leaf
// temperature T (Celsius) with activation energy Ea (J mol-1).
func Arrhenius(ref, ea, t float64, c Constants) float64 {
	tk := t - c.K0
	const refK = 298.15
	return ref * math.Exp(ea*(tk-refK)/(refK*c.R*tk))
}

// ArrheniusPeaked is the peaked temperature response used for parameters
// that decline above an optimum: Ea activates, Hd deactivates, Ds is the
// entropy term (J mol-1 K-1).
func ArrheniusPeaked(ref, ea, hd, ds, t float64, c Constants) float64 {
	tk := t - c.K0
	const refK = 298.15
	f := Arrhenius(ref, ea, t, c)
	num := 1 + math.Exp((refK*ds-hd)/(refK*c.R))
	den := 1 + math.Exp((tk*ds-hd)/(tk*c.R))
	return f * num / den
}
