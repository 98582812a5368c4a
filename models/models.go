// Package models wires every built-in model package into a registry.
package models

import (
	"github.com/plantfab/leafsim/internal/registry"
	"github.com/plantfab/leafsim/models/beer"
	"github.com/plantfab/leafsim/models/constantgs"
	"github.com/plantfab/leafsim/models/fvcb"
	"github.com/plantfab/leafsim/models/medlyn"
	"github.com/plantfab/leafsim/models/monteith"
)

// RegisterAll registers every built-in model kind.
func RegisterAll(r *registry.Registry) {
	for _, m := range []registry.Module{
		beer.Module{},
		constantgs.Module{},
		fvcb.Module{},
		medlyn.Module{},
		monteith.Module{},
	} {
		m.Register(r)
	}
}
