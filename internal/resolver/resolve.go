package resolver

import (
	"context"
	"sort"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/sim"
)

// Resolve builds the dependency forest for a role-named model map. It never
// fails: unmet and ambiguous requirements are recorded on the forest, not
// raised, because a list may be only partially runnable. Resolving the same
// map twice yields structurally identical forests.
func Resolve(ctx context.Context, models map[string]sim.Model) *Forest {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolve: starting dependency resolution.", "model_count", len(models))

	forest := &Forest{
		Roots:      make(map[string]*Node),
		Unresolved: make(map[string]sim.Capability),
		Ambiguous:  make(map[string][]string),
		nodes:      make(map[string]*Node, len(models)),
	}

	// First pass: one node per role, carrying the model's contract and its
	// declared dependency map.
	for _, role := range sortedRoles(models) {
		m := models[role]
		forest.nodes[role] = &Node{
			Role:         role,
			Model:        m,
			Inputs:       m.Inputs(),
			Outputs:      m.Outputs(),
			Dependencies: m.Dependencies(),
			Resolved:     make(map[string]*Node),
		}
	}
	logger.Debug("Resolve: node creation complete.")

	// Second pass: match each declared requirement against the other
	// models present.
	for _, role := range sortedRoles(models) {
		node := forest.nodes[role]
		for _, depRole := range sortedDepRoles(node.Dependencies) {
			capability := node.Dependencies[depRole]
			resolveEdge(ctx, forest, node, depRole, capability)
		}
	}
	logger.Debug("Resolve: node linking complete.",
		"unresolved", len(forest.Unresolved), "ambiguous", len(forest.Ambiguous))

	// Third pass: roots are the distinct ultimate ancestors.
	for _, node := range forest.nodes {
		for _, ancestor := range ultimateAncestors(node) {
			forest.Roots[ancestor.Role] = ancestor
		}
	}
	logger.Debug("Resolve: forest construction complete.", "roots", len(forest.Roots))
	return forest
}

// resolveEdge handles one (dependency role, required capability) pair of a
// requiring node.
func resolveEdge(ctx context.Context, forest *Forest, node *Node, depRole string, capability sim.Capability) {
	logger := ctxlog.FromContext(ctx)

	// A model present at the named role wins if it satisfies the
	// capability; a mismatched model is the same failure as an absent one,
	// with a diagnostic naming expected vs. actual.
	if target, ok := forest.nodes[depRole]; ok {
		if target.Model.Capability() == capability {
			link(node, target, depRole)
			return
		}
		logger.Warn("Model at dependency role does not satisfy required capability.",
			"requirer", node.Role, "dependency", depRole,
			"expected", capability, "actual", target.Model.Capability())
		markMissing(forest, node, depRole, capability)
		return
	}

	// No model at the named role: fall back to matching the capability
	// against every other model present.
	var candidates []string
	for _, role := range sortedRoles(forest.nodes) {
		if role == node.Role {
			continue
		}
		if forest.nodes[role].Model.Capability() == capability {
			candidates = append(candidates, role)
		}
	}

	switch len(candidates) {
	case 0:
		markMissing(forest, node, depRole, capability)
	case 1:
		logger.Debug("Resolved dependency by capability.",
			"requirer", node.Role, "dependency", depRole, "candidate", candidates[0])
		link(node, forest.nodes[candidates[0]], depRole)
	default:
		// Satisfiable but ambiguous: refuse to guess, leave unlinked.
		logger.Warn("Ambiguous dependency left unlinked.",
			"requirer", node.Role, "dependency", depRole,
			"capability", capability, "candidates", candidates)
		forest.Ambiguous[depRole] = candidates
	}
}

func markMissing(forest *Forest, node *Node, depRole string, capability sim.Capability) {
	node.Missing = append(node.Missing, depRole)
	forest.Unresolved[depRole] = capability
}

// link makes child a dependency of parent under the declared dependency
// role. The same edge is never linked twice.
func link(parent, child *Node, depRole string) {
	parent.Resolved[depRole] = child
	for _, existing := range parent.Children {
		if existing.Role == child.Role {
			return
		}
	}
	parent.Children = append(parent.Children, child)
	child.Parents = append(child.Parents, parent)
}

// ultimateAncestors walks from a node to the top of every coupling chain it
// belongs to. A node with no parents is its own ultimate ancestor.
func ultimateAncestors(node *Node) []*Node {
	var roots []*Node
	seen := make(map[string]bool)
	var climb func(n *Node)
	climb = func(n *Node) {
		if seen[n.Role] {
			return
		}
		seen[n.Role] = true
		if len(n.Parents) == 0 {
			roots = append(roots, n)
			return
		}
		for _, p := range n.Parents {
			climb(p)
		}
	}
	climb(node)
	return roots
}

func sortedRoles[V any](m map[string]V) []string {
	roles := make([]string, 0, len(m))
	for role := range m {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

func sortedDepRoles(deps map[string]sim.Capability) []string {
	roles := make([]string, 0, len(deps))
	for role := range deps {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
