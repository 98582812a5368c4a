package variables

import (
	"context"
	"sort"

	"github.com/plantfab/leafsim/internal/ctxlog"
)

// Contract is an ordered set of variable declarations. Order is the
// declaration order; lookups are by name.
type Contract []Variable

// NewContract builds a contract from the given declarations. A later
// declaration of an already-present name replaces the earlier one.
func NewContract(vars ...Variable) Contract {
	c := make(Contract, 0, len(vars))
	for _, v := range vars {
		c = c.with(v)
	}
	return c
}

func (c Contract) with(v Variable) Contract {
	for i, existing := range c {
		if existing.Name == v.Name {
			c[i] = v
			return c
		}
	}
	return append(c, v)
}

// Names returns the variable names in declaration order.
func (c Contract) Names() []string {
	names := make([]string, len(c))
	for i, v := range c {
		names[i] = v.Name
	}
	return names
}

// Lookup returns the declaration for name.
func (c Contract) Lookup(name string) (Variable, bool) {
	for _, v := range c {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Contains reports whether the contract declares name.
func (c Contract) Contains(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Merge unions the receiver with other. When both declare the same name the
// merged kind is the promoted kind; a differing default is reported as a
// warning diagnostic (the later declaration's default prevails) but never
// blocks the merge. The result is independent of the receiver's contents.
func (c Contract) Merge(ctx context.Context, other Contract) Contract {
	logger := ctxlog.FromContext(ctx)
	merged := make(Contract, len(c))
	copy(merged, c)
	for _, v := range other {
		existing, ok := merged.Lookup(v.Name)
		if !ok {
			merged = append(merged, v)
			continue
		}
		kind := Promote(existing.Kind, v.Kind)
		def := v.Default
		if existing.Default != v.Default &&
			!existing.IsSentinel(existing.Default) && !v.IsSentinel(v.Default) {
			logger.Warn("Conflicting defaults for shared variable.",
				"variable", v.Name, "kept", v.Default, "discarded", existing.Default)
		} else if v.IsSentinel(v.Default) && !existing.IsSentinel(existing.Default) {
			// A concrete default always beats a sentinel.
			def = existing.Default
		}
		merged = merged.with(Variable{Name: v.Name, Kind: kind, Default: def})
	}
	return merged
}

// MergeAll unions a sequence of contracts, left to right.
func MergeAll(ctx context.Context, contracts ...Contract) Contract {
	var merged Contract
	for _, c := range contracts {
		merged = merged.Merge(ctx, c)
	}
	return merged
}

// Diff returns the names declared by c but not by other, sorted. This is
// the primitive behind "which inputs does no model compute".
func (c Contract) Diff(other Contract) []string {
	var names []string
	for _, v := range c {
		if !other.Contains(v.Name) {
			names = append(names, v.Name)
		}
	}
	sort.Strings(names)
	return names
}
