// Package driver executes a coupled model list over a forcing sequence: it
// resolves the dependency forest, validates initialization, pairs status
// rows with forcing records, and invokes every model of the target process's
// subtree in dependency order, once per time step.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/resolver"
	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/internal/variables"
)

// RunProcess runs the process at role for every time step, mutating the
// list's status table in place. The table and the forcing sequence must
// have equal lengths, or either side must have length 1 (broadcast). Time
// steps run strictly in order: a later step may read state carried from the
// earlier one.
func RunProcess(ctx context.Context, role string, ml *sim.ModelList, weather meteo.Weather, c physics.Constants) error {
	logger := ctxlog.FromContext(ctx)

	forest := resolver.Resolve(ctx, ml.Models)
	node, ok := forest.Node(role)
	if !ok {
		return fmt.Errorf("no model at role %q", role)
	}
	order := node.Subtree()
	logger.Debug("RunProcess: dependency order established.",
		"role", role, "chain_length", len(order))

	bound, err := bindModels(order)
	if err != nil {
		return fmt.Errorf("binding coupled models for %q: %w", role, err)
	}

	chain := make([]execUnit, len(order))
	models := make([]sim.Model, len(order))
	for i, n := range order {
		chain[i] = execUnit{role: n.Role, model: bound[n.Role]}
		models[i] = bound[n.Role]
	}

	// Fail fast while nothing has run yet: every variable no model in the
	// subtree computes must already hold a concrete value.
	needed := sim.NeedingInitialization(ctx, models)
	if err := checkInitialized(role, ml.Status, needed); err != nil {
		return err
	}

	rows, steps := ml.Status.RowCount(), len(weather)
	if steps == 0 {
		weather = meteo.Weather{nil}
		steps = 1
	}
	switch {
	case rows == steps:
	case steps == 1:
		// One forcing record drives every row.
	case rows == 1:
		expanded, err := ml.Status.Expand(steps)
		if err != nil {
			return err
		}
		ml.Status = expanded
		rows = steps
	default:
		return &StepCountMismatchError{Rows: rows, Steps: steps}
	}

	for i := 0; i < rows; i++ {
		record := weather[0]
		if steps == rows {
			record = weather[i]
		}
		row, err := ml.Status.Row(i)
		if err != nil {
			return err
		}
		if err := runStep(ctx, role, i, chain, row, record, c); err != nil {
			return err
		}
	}
	return nil
}

// RunProcessCopy is the non-mutating entry point: it runs the process on a
// clone of the list's state and returns the clone, leaving the original
// untouched.
func RunProcessCopy(ctx context.Context, role string, ml *sim.ModelList, weather meteo.Weather, c physics.Constants) (*sim.ModelList, error) {
	clone := ml.Clone()
	if err := RunProcess(ctx, role, clone, weather, c); err != nil {
		return nil, err
	}
	return clone, nil
}

// runStep invokes every model of the chain against one row view, children
// strictly before parents, the target model last. A numeric failure inside
// one model is logged, the step's iteration counter (when the model exposes
// one) is set to the non-convergence sentinel, and the remaining models of
// the step are skipped so a single bad time step never aborts the run.
func runStep(ctx context.Context, role string, step int, chain []execUnit, row *status.Status, record *meteo.Record, c physics.Constants) error {
	logger := ctxlog.FromContext(ctx)
	for _, u := range chain {
		err := u.model.Run(ctx, row, record, c)
		if err == nil {
			continue
		}

		var numeric *sim.NonConvergenceError
		if !errors.As(err, &numeric) {
			return fmt.Errorf("running %q (model %s) at step %d: %w", u.role, u.model.Name(), step, err)
		}

		logger.Warn("Model did not converge; keeping partial values for this step.",
			"process", role, "failed_role", u.role, "model", u.model.Name(),
			"step", step, "error", err)
		markNonConverged(u.model, row)
		return nil
	}
	return nil
}

// execUnit is one entry of the dependency-ordered execution chain: the role
// and the (possibly bound) model that runs for it.
type execUnit struct {
	role  string
	model sim.Model
}

// bindModels walks the chain in execution order and, for every model that
// couples to its dependencies at run time, builds the bound copy with the
// resolved dependency instances. Children are bound before the parents that
// receive them.
func bindModels(order []*resolver.Node) (map[string]sim.Model, error) {
	bound := make(map[string]sim.Model, len(order))
	for _, n := range order {
		binder, ok := n.Model.(sim.Binder)
		if !ok || len(n.Resolved) == 0 {
			bound[n.Role] = n.Model
			continue
		}
		deps := make(map[string]sim.Model, len(n.Resolved))
		for depRole, child := range n.Resolved {
			deps[depRole] = bound[child.Role]
		}
		m, err := binder.Bind(deps)
		if err != nil {
			return nil, fmt.Errorf("model %s at role %q: %w", n.Model.Name(), n.Role, err)
		}
		bound[n.Role] = m
	}
	return bound, nil
}

// markNonConverged stamps the model's iteration-counter output, when it
// declares one, with the uninitialized sentinel of its kind.
func markNonConverged(m sim.Model, row *status.Status) {
	v, ok := m.Outputs().Lookup(sim.IterationsVar)
	if !ok {
		return
	}
	// The schema is a superset of the model's outputs, so this cannot fail.
	_ = row.Set(v.Name, v.Kind.Sentinel())
}

func checkInitialized(role string, table *status.Table, needed variables.Contract) error {
	missing := make(map[string]bool)
	for i := 0; i < table.RowCount(); i++ {
		row, err := table.Row(i)
		if err != nil {
			return err
		}
		for _, name := range row.Uninitialized(needed) {
			missing[name] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, v := range needed {
		if missing[v.Name] {
			names = append(names, v.Name)
		}
	}
	return &UninitializedVariablesError{Role: role, Names: names}
}
