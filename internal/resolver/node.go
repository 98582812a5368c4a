// Package resolver validates and orders a set of role-named coupled models:
// it matches each model's declared dependency requirements against the other
// models present and assembles a dependency forest the execution driver
// walks. Resolution is advisory; it never executes anything itself.
package resolver

import (
	"fmt"
	"sort"

	"github.com/plantfab/leafsim/internal/sim"
	"github.com/plantfab/leafsim/internal/variables"
)

// Node is one model's place in the dependency forest. Nodes are a
// diagnostic and ordering artifact owned by the forest that built them;
// they hold no simulation state.
type Node struct {
	// Role is the slot the model occupies in the model list.
	Role string
	// Model is the instance filling the role.
	Model sim.Model
	// Inputs and Outputs are the model's declared contract.
	Inputs  variables.Contract
	Outputs variables.Contract
	// Dependencies is the role -> capability map the model declares.
	Dependencies map[string]sim.Capability
	// Missing lists the dependency roles that could not be resolved.
	Missing []string

	// Parents are the nodes requiring this node. A node referenced by two
	// independent requirers is a legal shared sub-model.
	Parents []*Node
	// Children are the resolved dependencies, ordered by dependency role.
	Children []*Node
	// Resolved maps each satisfied dependency role to the node filling it.
	Resolved map[string]*Node
}

// Forest is the result of one resolution: the independently-runnable
// coupling trees plus everything that could not be linked.
type Forest struct {
	// Roots maps role -> tree root. A role is a root iff no other model in
	// the list depends on it.
	Roots map[string]*Node
	// Unresolved maps a dependency role to the capability no present model
	// could supply for it.
	Unresolved map[string]sim.Capability
	// Ambiguous maps a dependency role to the candidate roles that all
	// satisfy its capability. The edge is left unlinked: the requirement is
	// nominally satisfiable but the resolver refuses to guess.
	Ambiguous map[string][]string

	nodes map[string]*Node
}

// Node returns the node built for role, if any.
func (f *Forest) Node(role string) (*Node, bool) {
	n, ok := f.nodes[role]
	return n, ok
}

// Nodes returns all nodes keyed by role.
func (f *Forest) Nodes() map[string]*Node { return f.nodes }

// Subtree returns the node and its transitive dependencies in post-order:
// every child strictly before any parent, the receiver last. Shared
// sub-models appear exactly once.
func (n *Node) Subtree() []*Node {
	var order []*Node
	seen := make(map[string]bool)
	var visit func(node *Node)
	visit = func(node *Node) {
		if seen[node.Role] {
			return
		}
		seen[node.Role] = true
		for _, child := range node.Children {
			visit(child)
		}
		order = append(order, node)
	}
	visit(n)
	return order
}

// SubtreeModels returns the models of the subtree rooted at role in
// execution order.
func (f *Forest) SubtreeModels(role string) ([]sim.Model, error) {
	n, ok := f.nodes[role]
	if !ok {
		return nil, fmt.Errorf("no model at role %q", role)
	}
	nodes := n.Subtree()
	models := make([]sim.Model, len(nodes))
	for i, node := range nodes {
		models[i] = node.Model
	}
	return models, nil
}

// UnresolvedDependencyError describes one requirement no present model
// satisfies. A model list with unresolved dependencies may still be
// partially runnable; callers decide whether this is fatal.
type UnresolvedDependencyError struct {
	Role       string
	Capability sim.Capability
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("no model satisfies dependency %q (requires capability %q)", e.Role, e.Capability)
}

// UnresolvedErrors returns one error per unresolved requirement, sorted by
// role for stable reporting.
func (f *Forest) UnresolvedErrors() []error {
	roles := make([]string, 0, len(f.Unresolved))
	for role := range f.Unresolved {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	errs := make([]error, len(roles))
	for i, role := range roles {
		errs[i] = &UnresolvedDependencyError{Role: role, Capability: f.Unresolved[role]}
	}
	return errs
}
