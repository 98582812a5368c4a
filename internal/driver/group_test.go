package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantfab/leafsim/internal/driver"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/simtest"
	"github.com/plantfab/leafsim/internal/variables"
)

func leafList(t *testing.T, ctx context.Context, trace *simtest.Trace, lai float64) *sim.ModelList {
	t.Helper()
	models := map[string]sim.Model{
		"light_interception": &simtest.Model{
			ModelName: "Light",
			Cap:       sim.LightInterception,
			In:        variables.NewContract(variables.New("LAI")),
			Out:       variables.NewContract(variables.New("PPFD")),
			Trace:     trace,
		},
	}
	ml, err := sim.NewModelListWithValues(ctx, models, map[string]any{"LAI": lai})
	require.NoError(t, err)
	return ml
}

func TestRunGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("components run in key order", func(t *testing.T) {
		trace := &simtest.Trace{}
		group := driver.Group{
			"leaf_b": leafList(t, ctx, trace, 1.0),
			"leaf_a": leafList(t, ctx, trace, 2.0),
		}
		require.NoError(t, driver.RunGroup(ctx, "light_interception", group, forcing(t, 1), physics.Defaults()))
		assert.Len(t, trace.Order, 2)
		assert.Equal(t, []string{"leaf_a", "leaf_b"}, group.Keys())
	})

	t.Run("a failing component names its key", func(t *testing.T) {
		group := driver.Group{"leaf_a": leafList(t, ctx, nil, 1.0)}
		err := driver.RunGroup(ctx, "nonexistent", group, forcing(t, 1), physics.Defaults())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `component "leaf_a"`)
	})

	t.Run("components own distinct tables", func(t *testing.T) {
		group := driver.Group{
			"leaf_a": leafList(t, ctx, nil, 1.0),
			"leaf_b": leafList(t, ctx, nil, 2.0),
		}
		require.NoError(t, driver.RunGroup(ctx, "light_interception", group, forcing(t, 1), physics.Defaults()))

		a, err := group["leaf_a"].Status.GetAt(0, "LAI")
		require.NoError(t, err)
		b, err := group["leaf_b"].Status.GetAt(0, "LAI")
		require.NoError(t, err)
		assert.Equal(t, 1.0, a)
		assert.Equal(t, 2.0, b)
	})
}

func TestRunGroupCopy(t *testing.T) {
	ctx := context.Background()
	group := driver.Group{"leaf_a": leafList(t, ctx, nil, 1.0)}

	out, err := driver.RunGroupCopy(ctx, "light_interception", group, forcing(t, 1), physics.Defaults())
	require.NoError(t, err)

	v, err := out["leaf_a"].Status.GetAt(0, "PPFD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = group["leaf_a"].Status.GetAt(0, "PPFD")
	require.NoError(t, err)
	assert.Equal(t, variables.Float64.Sentinel(), v, "the original group stays untouched")
}

func TestRunSeries(t *testing.T) {
	ctx := context.Background()
	trace := &simtest.Trace{}
	lists := []*sim.ModelList{
		leafList(t, ctx, trace, 1.0),
		leafList(t, ctx, trace, 2.0),
	}

	require.NoError(t, driver.RunSeries(ctx, "light_interception", lists, forcing(t, 1), physics.Defaults()))
	assert.Len(t, trace.Order, 2)

	t.Run("a failing entry names its index", func(t *testing.T) {
		err := driver.RunSeries(ctx, "nonexistent", lists, forcing(t, 1), physics.Defaults())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "component 0")
	})
}
