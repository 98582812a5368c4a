package fvcb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/models/constantgs"
	"github.com/plantfab/leafsim/models/medlyn"
)

func testRecord(t *testing.T, c physics.Constants) *meteo.Record {
	t.Helper()
	r, err := meteo.New(meteo.Input{T: 25.0, Wind: 1.0, P: 101.325, Rh: 0.6}, c)
	require.NoError(t, err)
	return r
}

func boundModel(t *testing.T, p Params, gs sim.Model) *Model {
	t.Helper()
	bound, err := New(p).Bind(map[string]sim.Model{"stomatal_conductance": gs})
	require.NoError(t, err)
	return bound.(*Model)
}

func newStatus(t *testing.T, m sim.Model, values map[string]float64) *status.Status {
	t.Helper()
	s := status.New(sim.MergeContracts(context.Background(), []sim.Model{m}))
	for name, v := range values {
		require.NoError(t, s.Set(name, v))
	}
	return s
}

func TestBind(t *testing.T) {
	t.Run("requires the conductance dependency", func(t *testing.T) {
		_, err := New(DefaultParams()).Bind(map[string]sim.Model{})
		assert.Error(t, err)
	})

	t.Run("rejects a conductance model without a closure", func(t *testing.T) {
		_, err := New(DefaultParams()).Bind(map[string]sim.Model{
			"stomatal_conductance": New(DefaultParams()),
		})
		assert.Error(t, err)
	})

	t.Run("running the unbound template fails", func(t *testing.T) {
		m := New(DefaultParams())
		s := newStatus(t, m, map[string]float64{"PPFD": 1000.0})
		assert.Error(t, m.Run(context.Background(), s, nil, physics.Defaults()))
	})
}

func TestRunCoupledToMedlyn(t *testing.T) {
	ctx := context.Background()
	c := physics.Defaults()
	m := boundModel(t, DefaultParams(), medlyn.New(medlyn.DefaultParams()))

	s := newStatus(t, m, map[string]float64{
		"PPFD":  1500.0,
		"Tleaf": 25.0,
		"Cs":    400.0,
		"Dleaf": 1.0,
	})
	require.NoError(t, m.Run(ctx, s, nil, c))

	a, err := s.Get("A")
	require.NoError(t, err)
	gs, err := s.Get("Gs")
	require.NoError(t, err)
	ci, err := s.Get("Ci")
	require.NoError(t, err)

	t.Run("assimilation is in the C3 leaf range", func(t *testing.T) {
		assert.Greater(t, a, 10.0)
		assert.Less(t, a, 45.0)
	})

	t.Run("conductance exceeds the residual term", func(t *testing.T) {
		assert.Greater(t, gs, medlyn.DefaultParams().G0)
	})

	t.Run("CO2 is drawn down from the surface", func(t *testing.T) {
		assert.Less(t, ci, 400.0)
		assert.Greater(t, ci, 0.0)
	})

	t.Run("the solved state is closed", func(t *testing.T) {
		// At the fixed point Ci = Cs - A/Gs within the solver tolerance.
		assert.InDelta(t, 400.0-a/gs, ci, 2.0*DefaultParams().Eps)
	})
}

func TestRunLightResponse(t *testing.T) {
	ctx := context.Background()
	c := physics.Defaults()
	m := boundModel(t, DefaultParams(), constantgs.New(constantgs.Params{Gs: 0.3}))

	assim := func(ppfd float64) float64 {
		s := newStatus(t, m, map[string]float64{
			"PPFD":  ppfd,
			"Tleaf": 25.0,
			"Cs":    400.0,
		})
		require.NoError(t, m.Run(ctx, s, nil, c))
		a, err := s.Get("A")
		require.NoError(t, err)
		return a
	}

	dark := assim(0.0)
	low := assim(100.0)
	high := assim(1500.0)

	t.Run("assimilation increases with light", func(t *testing.T) {
		assert.Greater(t, low, dark)
		assert.Greater(t, high, low)
	})

	t.Run("darkness leaves only respiration", func(t *testing.T) {
		assert.Less(t, dark, 0.0)
	})
}

func TestRunSeedsFromForcing(t *testing.T) {
	ctx := context.Background()
	c := physics.Defaults()
	m := boundModel(t, DefaultParams(), constantgs.New(constantgs.DefaultParams()))

	t.Run("sentinel Tleaf and Cs seed from the record", func(t *testing.T) {
		s := newStatus(t, m, map[string]float64{"PPFD": 1200.0})
		atmo := testRecord(t, c)
		require.NoError(t, m.Run(ctx, s, atmo, c))
		a, err := s.Get("A")
		require.NoError(t, err)
		assert.Greater(t, a, 0.0)
	})

	t.Run("sentinel inputs with no record fail", func(t *testing.T) {
		s := newStatus(t, m, map[string]float64{"PPFD": 1200.0})
		assert.Error(t, m.Run(ctx, s, nil, c))
	})
}

func TestRunNonConvergence(t *testing.T) {
	ctx := context.Background()
	c := physics.Defaults()

	p := DefaultParams()
	p.MaxIter = 1
	p.Eps = 1e-12
	m := boundModel(t, p, medlyn.New(medlyn.DefaultParams()))

	s := newStatus(t, m, map[string]float64{
		"PPFD":  1500.0,
		"Tleaf": 25.0,
		"Cs":    400.0,
		"Dleaf": 1.0,
	})
	err := m.Run(ctx, s, nil, c)
	var numeric *sim.NonConvergenceError
	require.ErrorAs(t, err, &numeric)
	assert.Equal(t, "Fvcb", numeric.Model)
	assert.Equal(t, 1, numeric.MaxIter)
}
