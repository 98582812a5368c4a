package meteo

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/physics"
)

// ReadCSV imports an instrument weather file: a header naming the supplied
// fields (T, Wind, P, Rh, Ca, Rad; case-insensitive, unknown columns are
// logged and skipped) followed by one record per time step.
func ReadCSV(ctx context.Context, r io.Reader, c physics.Constants) (Weather, error) {
	logger := ctxlog.FromContext(ctx)
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading weather CSV header: %w", err)
	}

	setters := make([]func(*Input, float64), len(header))
	for i, name := range header {
		setter, ok := fieldSetter(strings.TrimSpace(name))
		if !ok {
			logger.Warn("Skipping unknown weather column.", "column", name)
		}
		setters[i] = setter
	}

	var weather Weather
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading weather CSV: %w", err)
		}
		line++

		var in Input
		for i, cell := range record {
			if setters[i] == nil {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("weather CSV line %d, column %q: %w", line, header[i], err)
			}
			setters[i](&in, v)
		}

		rec, err := New(in, c)
		if err != nil {
			return nil, fmt.Errorf("weather CSV line %d: %w", line, err)
		}
		weather = append(weather, rec)
	}

	logger.Debug("Weather CSV import complete.", "records", len(weather))
	return weather, nil
}

// ReadCSVFile is ReadCSV over a file path.
func ReadCSVFile(ctx context.Context, path string, c physics.Constants) (Weather, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening weather file: %w", err)
	}
	defer f.Close()
	return ReadCSV(ctx, f, c)
}

func fieldSetter(name string) (func(*Input, float64), bool) {
	switch strings.ToLower(name) {
	case "t", "tair":
		return func(in *Input, v float64) { in.T = v }, true
	case "wind":
		return func(in *Input, v float64) { in.Wind = v }, true
	case "p", "pressure":
		return func(in *Input, v float64) { in.P = v }, true
	case "rh":
		return func(in *Input, v float64) { in.Rh = v }, true
	case "ca", "co2":
		return func(in *Input, v float64) { in.Ca = v }, true
	case "rad", "ri_sw":
		return func(in *Input, v float64) { in.Rad = v }, true
	default:
		return nil, false
	}
}
