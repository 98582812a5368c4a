package driver

import (
	"context"
	"fmt"
	"sort"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/sim"
)

// Group is a map-keyed collection of components (e.g. the leaves of one
// plant, keyed by name). Every entry owns its own status table; the driver
// never aliases state across entries.
type Group map[string]*sim.ModelList

// RunGroup runs the process at role for every component of the group, in
// key order. Components are independent; they run sequentially and a
// structural error on one aborts the whole call with its key attached.
func RunGroup(ctx context.Context, role string, group Group, weather meteo.Weather, c physics.Constants) error {
	logger := ctxlog.FromContext(ctx)
	for _, key := range group.Keys() {
		logger.Debug("RunGroup: running component.", "key", key, "role", role)
		if err := RunProcess(ctx, role, group[key], weather, c); err != nil {
			return fmt.Errorf("component %q: %w", key, err)
		}
	}
	return nil
}

// RunGroupCopy runs the process on clones of every component and returns
// the cloned group, leaving the originals untouched.
func RunGroupCopy(ctx context.Context, role string, group Group, weather meteo.Weather, c physics.Constants) (Group, error) {
	out := make(Group, len(group))
	for _, key := range group.Keys() {
		clone, err := RunProcessCopy(ctx, role, group[key], weather, c)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", key, err)
		}
		out[key] = clone
	}
	return out, nil
}

// RunSeries runs the process at role for every component of an array-keyed
// collection, in index order.
func RunSeries(ctx context.Context, role string, lists []*sim.ModelList, weather meteo.Weather, c physics.Constants) error {
	for i, ml := range lists {
		if err := RunProcess(ctx, role, ml, weather, c); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}

// Keys returns the group's keys in sorted order.
func (g Group) Keys() []string {
	keys := make([]string, 0, len(g))
	for key := range g {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
