// Package registry maps model kind names to factories so scenario files can
// name the models they compose. The registry is an explicit object built
// once at startup and passed to the loader; there is no package-level
// mutable singleton.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/sim"
)

// Factory builds a model instance from the parameter body of a scenario
// block. A nil body selects the model's default parameters.
type Factory func(ctx context.Context, body hcl.Body) (sim.Model, error)

// Module is implemented by every models package so startup code can
// register all kinds a package provides.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered model factories for one application
// instance.
type Registry struct {
	factories map[string]Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// RegisterModel registers a factory for a model kind name. Registering the
// same name twice is a programming error.
func (r *Registry) RegisterModel(name string, f Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("model kind %q already registered", name))
	}
	r.factories[name] = f
}

// Build instantiates the named model kind from an optional parameter body.
func (r *Registry) Build(ctx context.Context, name string, body hcl.Body) (sim.Model, error) {
	logger := ctxlog.FromContext(ctx)
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown model kind %q (registered: %v)", name, r.Kinds())
	}
	logger.Debug("Building model from registry.", "kind", name)
	return f(ctx, body)
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for name := range r.factories {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)
	return kinds
}

var validateParams = validator.New(validator.WithRequiredStructEnabled())

// DecodeParams decodes a scenario parameter body into a model's parameter
// struct and range-checks it. The struct's existing field values act as
// defaults; a nil body keeps them all.
func DecodeParams(body hcl.Body, out any) error {
	if body != nil {
		if diags := gohcl.DecodeBody(body, nil, out); diags.HasErrors() {
			return fmt.Errorf("decoding model parameters: %w", diags)
		}
	}
	if err := validateParams.Struct(out); err != nil {
		return fmt.Errorf("invalid model parameters: %w", err)
	}
	return nil
}
