package status

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/plantfab/leafsim/internal/variables"
)

// WriteCSV writes the table as CSV: header row of variable names in schema
// order, then one record per time step. Every variable in the schema is
// exported; the round trip is lossless for float values.
func (t *Table) WriteCSV(w io.Writer) error {
	return t.writeCSV(w, "", "")
}

// WriteCSVKeyed is WriteCSV with a leading key column, used when combining
// rows from several named components into one file.
func (t *Table) WriteCSVKeyed(w io.Writer, keyColumn, key string) error {
	return t.writeCSV(w, keyColumn, key)
}

func (t *Table) writeCSV(w io.Writer, keyColumn, key string) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.schema)+1)
	if keyColumn != "" {
		header = append(header, keyColumn)
	}
	header = append(header, t.schema.Names()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	record := make([]string, len(header))
	for i := 0; i < t.rows; i++ {
		record = record[:0]
		if keyColumn != "" {
			record = append(record, key)
		}
		for _, v := range t.schema {
			record = append(record, formatCell(v.Kind, t.columns[v.Name][i]))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCombinedCSV writes several named tables into one CSV, each row
// tagged with its component key. The header is the union of the tables'
// schemas in first-seen key order; a component lacking a column leaves the
// cell empty. Heterogeneous components stay combinable this way.
func WriteCombinedCSV(w io.Writer, keyColumn string, keys []string, tables map[string]*Table) error {
	var union variables.Contract
	for _, key := range keys {
		t, ok := tables[key]
		if !ok {
			return fmt.Errorf("no table for component %q", key)
		}
		for _, v := range t.schema {
			if !union.Contains(v.Name) {
				union = append(union, v)
			}
		}
	}

	cw := csv.NewWriter(w)
	header := append([]string{keyColumn}, union.Names()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, key := range keys {
		t := tables[key]
		for i := 0; i < t.rows; i++ {
			record := make([]string, 0, len(header))
			record = append(record, key)
			for _, v := range union {
				col, ok := t.columns[v.Name]
				if !ok {
					record = append(record, "")
					continue
				}
				kind := v.Kind
				if own, ok := t.schema.Lookup(v.Name); ok {
					kind = own.Kind
				}
				record = append(record, formatCell(kind, col[i]))
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing CSV row for component %q: %w", key, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(kind variables.Kind, v float64) string {
	if kind == variables.Int {
		if v == variables.Int.Sentinel() {
			return strconv.FormatInt(math.MinInt64, 10)
		}
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
