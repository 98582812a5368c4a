// Package simtest provides configurable fake models for engine tests.
package simtest

import (
	"context"

	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/internal/variables"
)

// Trace records the order of fake-model invocations across a run.
type Trace struct {
	Order []string
}

// Record appends one invocation.
func (t *Trace) Record(name string) {
	t.Order = append(t.Order, name)
}

// Model is a configurable fake implementing sim.Model. The zero RunFunc
// writes 1.0 to every declared output and records the invocation on Trace
// when one is attached.
type Model struct {
	ModelName string
	Cap       sim.Capability
	In        variables.Contract
	Out       variables.Contract
	Deps      map[string]sim.Capability
	RunFunc   func(ctx context.Context, s *status.Status, atmo *meteo.Record, c physics.Constants) error
	Trace     *Trace
}

// Name implements sim.Model.
func (m *Model) Name() string { return m.ModelName }

// Capability implements sim.Model.
func (m *Model) Capability() sim.Capability { return m.Cap }

// Inputs implements sim.Model.
func (m *Model) Inputs() variables.Contract { return m.In }

// Outputs implements sim.Model.
func (m *Model) Outputs() variables.Contract { return m.Out }

// Dependencies implements sim.Model.
func (m *Model) Dependencies() map[string]sim.Capability { return m.Deps }

// Run implements sim.Model.
func (m *Model) Run(ctx context.Context, s *status.Status, atmo *meteo.Record, c physics.Constants) error {
	if m.Trace != nil {
		m.Trace.Record(m.ModelName)
	}
	if m.RunFunc != nil {
		return m.RunFunc(ctx, s, atmo, c)
	}
	for _, v := range m.Out {
		if err := s.Set(v.Name, 1.0); err != nil {
			return err
		}
	}
	return nil
}
