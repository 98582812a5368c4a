package monteith

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/models/fvcb"
	"github.com/plantfab/leafsim/models/medlyn"
)

// boundChain builds the full coupling by hand: energy balance over FvCB
// photosynthesis over a Medlyn closure.
func boundChain(t *testing.T, p Params) (sim.Model, *status.Status) {
	t.Helper()
	gs := medlyn.New(medlyn.DefaultParams())
	ps, err := fvcb.New(fvcb.DefaultParams()).Bind(map[string]sim.Model{"stomatal_conductance": gs})
	require.NoError(t, err)
	eb, err := New(p).Bind(map[string]sim.Model{"photosynthesis": ps})
	require.NoError(t, err)

	schema := sim.MergeContracts(context.Background(), []sim.Model{gs, ps, eb})
	return eb, status.New(schema)
}

func forcing(t *testing.T) *meteo.Record {
	t.Helper()
	r, err := meteo.New(meteo.Input{T: 25.0, Wind: 1.5, P: 101.325, Rh: 0.6}, physics.Defaults())
	require.NoError(t, err)
	return r
}

func TestRunCoupled(t *testing.T) {
	ctx := context.Background()
	c := physics.Defaults()

	p := DefaultParams()
	p.MaxIter = 30
	eb, s := boundChain(t, p)

	require.NoError(t, s.Set("Ra", 400.0))
	require.NoError(t, s.Set("PPFD", 1500.0))

	require.NoError(t, eb.Run(ctx, s, forcing(t), c))

	tleaf, err := s.Get("Tleaf")
	require.NoError(t, err)
	rn, err := s.Get("Rn")
	require.NoError(t, err)
	h, err := s.Get("H")
	require.NoError(t, err)
	le, err := s.Get("LE")
	require.NoError(t, err)

	t.Run("the balance closes at convergence", func(t *testing.T) {
		assert.InDelta(t, rn, h+le, 1e-9)
	})

	t.Run("leaf temperature stays near air temperature", func(t *testing.T) {
		assert.InDelta(t, 25.0, tleaf, 10.0)
	})

	t.Run("a transpiring sunlit leaf evaporates", func(t *testing.T) {
		assert.Greater(t, le, 0.0)
	})

	t.Run("gradients are physically consistent", func(t *testing.T) {
		dleaf, err := s.Get("Dleaf")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, dleaf, 0.0)

		cs, err := s.Get("Cs")
		require.NoError(t, err)
		assert.Less(t, cs, 400.0, "assimilation depletes CO2 at the leaf surface")
		assert.Greater(t, cs, 0.0)
	})

	t.Run("iteration counter records the converged step", func(t *testing.T) {
		n, err := s.GetInt("Iter")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, p.MaxIter)
	})

	t.Run("assimilation was solved against the final gradients", func(t *testing.T) {
		a, err := s.Get("A")
		require.NoError(t, err)
		assert.Greater(t, a, 0.0)
	})
}

func TestRunNonConvergence(t *testing.T) {
	ctx := context.Background()
	c := physics.Defaults()

	p := DefaultParams()
	p.MaxIter = 1
	p.Eps = 1e-12
	eb, s := boundChain(t, p)

	require.NoError(t, s.Set("Ra", 400.0))
	require.NoError(t, s.Set("PPFD", 1500.0))

	err := eb.Run(ctx, s, forcing(t), c)
	var numeric *sim.NonConvergenceError
	require.ErrorAs(t, err, &numeric)
	assert.Equal(t, "Monteith", numeric.Model)

	t.Run("partial fluxes are kept for diagnostics", func(t *testing.T) {
		rn, err := s.Get("Rn")
		require.NoError(t, err)
		assert.False(t, math.IsInf(rn, -1), "fluxes must be written before the failure is raised")
	})
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	c := physics.Defaults()

	t.Run("unbound template fails", func(t *testing.T) {
		m := New(DefaultParams())
		s := status.New(sim.MergeContracts(ctx, []sim.Model{m}))
		assert.Error(t, m.Run(ctx, s, forcing(t), c))
	})

	t.Run("nil forcing record fails", func(t *testing.T) {
		eb, s := boundChain(t, DefaultParams())
		require.NoError(t, s.Set("Ra", 400.0))
		assert.Error(t, eb.Run(ctx, s, nil, c))
	})

	t.Run("binding requires the photosynthesis dependency", func(t *testing.T) {
		_, err := New(DefaultParams()).Bind(map[string]sim.Model{})
		assert.Error(t, err)
	})

	t.Run("an inner solve failure surfaces", func(t *testing.T) {
		// An unbound FvCB template cannot run inside the loop.
		eb, err := New(DefaultParams()).Bind(map[string]sim.Model{
			"photosynthesis": fvcb.New(fvcb.DefaultParams()),
		})
		require.NoError(t, err)

		s := status.New(sim.MergeContracts(ctx, []sim.Model{eb, fvcb.New(fvcb.DefaultParams())}))
		require.NoError(t, s.Set("Ra", 400.0))
		require.NoError(t, s.Set("PPFD", 1500.0))
		assert.Error(t, eb.Run(ctx, s, forcing(t), c))
	})
}
