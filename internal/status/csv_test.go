package status

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantfab/leafsim/internal/variables"
)

func TestWriteCSV(t *testing.T) {
	ctx := context.Background()
	schema := variables.NewContract(
		variables.New("A"),
		variables.New("Gs"),
		variables.NewKind("Iter", variables.Int),
	)
	tbl, err := NewTableFromValues(ctx, schema, map[string]any{
		"A":    []float64{20.5, 21.0},
		"Gs":   []float64{0.32, 0.35},
		"Iter": []float64{5, 6},
	})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, tbl.WriteCSV(&buf))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"A", "Gs", "Iter"}, records[0])
	assert.Equal(t, []string{"20.5", "0.32", "5"}, records[1])
	assert.Equal(t, []string{"21", "0.35", "6"}, records[2])
}

func TestWriteCSVKeyed(t *testing.T) {
	schema := variables.NewContract(variables.New("A"))
	tbl := NewTable(schema, 1)
	require.NoError(t, tbl.SetAt(0, "A", 1.5))

	var buf strings.Builder
	require.NoError(t, tbl.WriteCSVKeyed(&buf, "component", "leaf"))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"component", "A"}, records[0])
	assert.Equal(t, []string{"leaf", "1.5"}, records[1])
}

func TestWriteCombinedCSV(t *testing.T) {
	ctx := context.Background()

	sun, err := NewTableFromValues(ctx,
		variables.NewContract(variables.New("A"), variables.New("Gs")),
		map[string]any{"A": 25.0, "Gs": 0.4})
	require.NoError(t, err)

	shade, err := NewTableFromValues(ctx,
		variables.NewContract(variables.New("A"), variables.New("Tleaf")),
		map[string]any{"A": 8.0, "Tleaf": 22.5})
	require.NoError(t, err)

	var buf strings.Builder
	err = WriteCombinedCSV(&buf, "component",
		[]string{"sun", "shade"},
		map[string]*Table{"sun": sun, "shade": shade})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	t.Run("header is the union in first-seen order", func(t *testing.T) {
		assert.Equal(t, []string{"component", "A", "Gs", "Tleaf"}, records[0])
	})

	t.Run("missing columns leave empty cells", func(t *testing.T) {
		assert.Equal(t, []string{"sun", "25", "0.4", ""}, records[1])
		assert.Equal(t, []string{"shade", "8", "", "22.5"}, records[2])
	})

	t.Run("unknown component keys are an error", func(t *testing.T) {
		var b strings.Builder
		err := WriteCombinedCSV(&b, "component", []string{"missing"}, map[string]*Table{})
		assert.Error(t, err)
	})
}
