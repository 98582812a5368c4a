package meteo

// Weather is an ordered sequence of forcing records, one per time step. A
// single-record sequence drives every time step with the same forcing.
type Weather []*Record

// One wraps a single record as a weather sequence.
func One(r *Record) Weather {
	return Weather{r}
}
