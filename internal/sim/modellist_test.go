package sim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/simtest"
	"github.com/plantfab/leafsim/internal/variables"
)

func testModels(trace *simtest.Trace) map[string]sim.Model {
	return map[string]sim.Model{
		"light_interception": &simtest.Model{
			ModelName: "Beer",
			Cap:       sim.LightInterception,
			In:        variables.NewContract(variables.New("LAI")),
			Out:       variables.NewContract(variables.New("PPFD")),
			Trace:     trace,
		},
		"photosynthesis": &simtest.Model{
			ModelName: "Toy",
			Cap:       sim.Photosynthesis,
			In:        variables.NewContract(variables.New("PPFD"), variables.New("Tleaf")),
			Out:       variables.NewContract(variables.New("A")),
			Trace:     trace,
		},
	}
}

func TestNewModelList(t *testing.T) {
	ctx := context.Background()
	ml := sim.NewModelList(ctx, testModels(nil))

	t.Run("schema is the union of all contracts", func(t *testing.T) {
		schema := ml.Status.Schema()
		for _, name := range []string{"LAI", "PPFD", "Tleaf", "A"} {
			assert.True(t, schema.Contains(name), "schema should contain %s", name)
		}
	})

	t.Run("table starts with one default row", func(t *testing.T) {
		assert.Equal(t, 1, ml.Status.RowCount())
		v, err := ml.Status.GetAt(0, "LAI")
		require.NoError(t, err)
		assert.Equal(t, variables.Float64.Sentinel(), v)
	})
}

func TestNewModelListWithValues(t *testing.T) {
	ctx := context.Background()

	ml, err := sim.NewModelListWithValues(ctx, testModels(nil), map[string]any{
		"LAI":   2.0,
		"Tleaf": []float64{20, 22, 24},
	})
	require.NoError(t, err)
	require.Equal(t, 3, ml.Status.RowCount())

	col, err := ml.Status.Column("LAI")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, col)
}

func TestModelListInit(t *testing.T) {
	ctx := context.Background()
	ml := sim.NewModelList(ctx, testModels(nil))

	require.NoError(t, ml.Init(ctx, map[string]any{"LAI": 2.5, "unknown": 1.0}))
	v, err := ml.Status.GetAt(0, "LAI")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}

func TestModelListClone(t *testing.T) {
	ctx := context.Background()
	ml := sim.NewModelList(ctx, testModels(nil))
	require.NoError(t, ml.Init(ctx, map[string]any{"LAI": 2.0}))

	clone := ml.Clone()
	require.NoError(t, clone.Status.SetAt(0, "LAI", 9.0))

	v, err := ml.Status.GetAt(0, "LAI")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v, "clone must not alias the original table")
	assert.Equal(t, ml.Roles(), clone.Roles())
}

func TestModelListRoles(t *testing.T) {
	ctx := context.Background()
	ml := sim.NewModelList(ctx, testModels(nil))
	assert.Equal(t, []string{"light_interception", "photosynthesis"}, ml.Roles())
}

func TestMergeContracts(t *testing.T) {
	ctx := context.Background()
	a := &simtest.Model{
		ModelName: "A",
		In:        variables.NewContract(variables.NewKind("Tleaf", variables.Float32)),
		Out:       variables.NewContract(variables.New("X")),
	}
	b := &simtest.Model{
		ModelName: "B",
		In:        variables.NewContract(variables.New("Tleaf")),
		Out:       variables.NewContract(variables.New("Y")),
	}

	t.Run("variable set is order-independent", func(t *testing.T) {
		ab := sim.MergeContracts(ctx, []sim.Model{a, b})
		ba := sim.MergeContracts(ctx, []sim.Model{b, a})
		assert.ElementsMatch(t, ab.Names(), ba.Names())
	})

	t.Run("shared variables promote in either order", func(t *testing.T) {
		for _, models := range [][]sim.Model{{a, b}, {b, a}} {
			merged := sim.MergeContracts(ctx, models)
			v, ok := merged.Lookup("Tleaf")
			require.True(t, ok)
			assert.Equal(t, variables.Float64, v.Kind)
		}
	})
}

func TestNeedingInitialization(t *testing.T) {
	ctx := context.Background()
	models := testModels(nil)

	needed := sim.NeedingInitialization(ctx, []sim.Model{
		models["light_interception"], models["photosynthesis"],
	})

	t.Run("inputs computed by a sibling are satisfied", func(t *testing.T) {
		assert.False(t, needed.Contains("PPFD"))
		assert.False(t, needed.Contains("A"))
	})

	t.Run("inputs no model computes must be supplied", func(t *testing.T) {
		assert.True(t, needed.Contains("LAI"))
		assert.True(t, needed.Contains("Tleaf"))
	})
}
