package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/internal/variables"
)

// ModelList binds a set of role-named models for one physical component to
// the state table their invocations share. Every component owns a distinct
// table; tables are never aliased across components.
type ModelList struct {
	// Models maps the role a model fills (e.g. "photosynthesis") to the
	// model instance.
	Models map[string]Model
	// Status holds one row per simulated time step.
	Status *status.Table
}

// NewModelList builds a list from role-named models with its table derived
// from the merged contract: one row, every slot at its default. Initial
// values are supplied afterwards through Init or by building the table from
// values directly.
func NewModelList(ctx context.Context, models map[string]Model) *ModelList {
	schema := MergeContracts(ctx, modelSlice(models))
	return &ModelList{
		Models: models,
		Status: status.NewTable(schema, 1),
	}
}

// NewModelListWithValues builds a list whose table is initialized from
// user-supplied per-variable values (scalars broadcast, sequences set the
// row count).
func NewModelListWithValues(ctx context.Context, models map[string]Model, values map[string]any) (*ModelList, error) {
	schema := MergeContracts(ctx, modelSlice(models))
	table, err := status.NewTableFromValues(ctx, schema, values)
	if err != nil {
		return nil, fmt.Errorf("building status table: %w", err)
	}
	return &ModelList{Models: models, Status: table}, nil
}

// Init writes user-supplied values into every row of the current table.
// Unknown names are logged and ignored.
func (ml *ModelList) Init(ctx context.Context, values map[string]any) error {
	logger := ctxlog.FromContext(ctx)
	for name, raw := range values {
		if !ml.Status.Schema().Contains(name) {
			logger.Warn("Ignoring initial value for unknown variable.", "variable", name)
			continue
		}
		v, err := scalar(raw)
		if err != nil {
			return fmt.Errorf("initial value for %q: %w", name, err)
		}
		for i := 0; i < ml.Status.RowCount(); i++ {
			if err := ml.Status.SetAt(i, name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func scalar(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Clone returns a list sharing the (immutable) models but owning a deep
// copy of the state table.
func (ml *ModelList) Clone() *ModelList {
	models := make(map[string]Model, len(ml.Models))
	for role, m := range ml.Models {
		models[role] = m
	}
	return &ModelList{Models: models, Status: ml.Status.Clone()}
}

// Roles returns the list's role names, sorted for deterministic iteration.
func (ml *ModelList) Roles() []string {
	roles := make([]string, 0, len(ml.Models))
	for role := range ml.Models {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

func modelSlice(models map[string]Model) []Model {
	roles := make([]string, 0, len(models))
	for role := range models {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	out := make([]Model, 0, len(models))
	for _, role := range roles {
		out = append(out, models[role])
	}
	return out
}

// MergeContracts unions the inputs and outputs of all models into one
// schema, promoting kinds where declarations disagree. The resulting
// variable set and kinds are independent of model order.
func MergeContracts(ctx context.Context, models []Model) variables.Contract {
	var merged variables.Contract
	for _, m := range models {
		merged = merged.Merge(ctx, m.Inputs())
		merged = merged.Merge(ctx, m.Outputs())
	}
	return merged
}

// InputsUnion unions the declared inputs of all models.
func InputsUnion(ctx context.Context, models []Model) variables.Contract {
	var merged variables.Contract
	for _, m := range models {
		merged = merged.Merge(ctx, m.Inputs())
	}
	return merged
}

// OutputsUnion unions the declared outputs of all models.
func OutputsUnion(ctx context.Context, models []Model) variables.Contract {
	var merged variables.Contract
	for _, m := range models {
		merged = merged.Merge(ctx, m.Outputs())
	}
	return merged
}

// NeedingInitialization returns the variables some model reads but no model
// in the set computes, so the caller must supply them before running. This
// is a property of the whole set: an input produced by a sibling model is
// satisfied by the coupling.
func NeedingInitialization(ctx context.Context, models []Model) variables.Contract {
	inputs := InputsUnion(ctx, models)
	outputs := OutputsUnion(ctx, models)
	var needed variables.Contract
	for _, v := range inputs {
		if !outputs.Contains(v.Name) {
			needed = append(needed, v)
		}
	}
	return needed
}
