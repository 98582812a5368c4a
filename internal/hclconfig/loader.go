// Package hclconfig loads simulation scenarios from HCL: the components to
// simulate, the models each composes with their parameters, initial status
// values, and an optional inline weather sequence. The loader only produces
// Model instances and forcing records; the engine itself never reads files.
package hclconfig

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/registry"
	"github.com/plantfab/leafsim/internal/sim"
)

// Scenario is the loaded form of one scenario file.
type Scenario struct {
	// Components maps component name to its assembled model list.
	Components map[string]*sim.ModelList
	// Weather is the inline forcing sequence, nil when the file has none.
	Weather meteo.Weather
}

type scenarioRoot struct {
	Components []*componentBlock `hcl:"component,block"`
	Weather    *weatherBlock     `hcl:"weather,block"`
}

type componentBlock struct {
	Name   string        `hcl:"name,label"`
	Models []*modelBlock `hcl:"model,block"`
	Status *statusBlock  `hcl:"status,block"`
}

type modelBlock struct {
	Role string   `hcl:"role,label"`
	Kind string   `hcl:"kind,label"`
	Body hcl.Body `hcl:",remain"`
}

type statusBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type weatherBlock struct {
	Steps []*stepBlock `hcl:"step,block"`
}

type stepBlock struct {
	T    float64 `hcl:"t"`
	Wind float64 `hcl:"wind"`
	P    float64 `hcl:"p"`
	Rh   float64 `hcl:"rh"`
	Ca   float64 `hcl:"ca,optional"`
	Rad  float64 `hcl:"rad,optional"`
}

// LoadFile parses and assembles a scenario file through the given registry.
func LoadFile(ctx context.Context, path string, reg *registry.Registry, c physics.Constants) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing scenario file %s: %w", path, diags)
	}
	return assemble(ctx, file, reg, c)
}

// Load parses and assembles a scenario from in-memory HCL source.
func Load(ctx context.Context, src []byte, filename string, reg *registry.Registry, c physics.Constants) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing scenario %s: %w", filename, diags)
	}
	return assemble(ctx, file, reg, c)
}

func assemble(ctx context.Context, file *hcl.File, reg *registry.Registry, c physics.Constants) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)

	var root scenarioRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding scenario: %w", diags)
	}
	if len(root.Components) == 0 {
		return nil, fmt.Errorf("scenario declares no component blocks")
	}

	scenario := &Scenario{Components: make(map[string]*sim.ModelList, len(root.Components))}
	for _, comp := range root.Components {
		if _, exists := scenario.Components[comp.Name]; exists {
			return nil, fmt.Errorf("duplicate component %q", comp.Name)
		}
		ml, err := assembleComponent(ctx, comp, reg)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", comp.Name, err)
		}
		scenario.Components[comp.Name] = ml
	}

	if root.Weather != nil {
		weather, err := assembleWeather(root.Weather, c)
		if err != nil {
			return nil, err
		}
		scenario.Weather = weather
	}

	logger.Debug("Scenario loading complete.",
		"components", len(scenario.Components), "weather_steps", len(scenario.Weather))
	return scenario, nil
}

func assembleComponent(ctx context.Context, comp *componentBlock, reg *registry.Registry) (*sim.ModelList, error) {
	logger := ctxlog.FromContext(ctx)

	models := make(map[string]sim.Model, len(comp.Models))
	for _, mb := range comp.Models {
		if _, exists := models[mb.Role]; exists {
			return nil, fmt.Errorf("duplicate model role %q", mb.Role)
		}
		m, err := reg.Build(ctx, mb.Kind, mb.Body)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", mb.Role, err)
		}
		logger.Debug("Assembled model.", "role", mb.Role, "kind", mb.Kind)
		models[mb.Role] = m
	}

	var values map[string]any
	if comp.Status != nil {
		var err error
		values, err = decodeStatusValues(comp.Status.Body)
		if err != nil {
			return nil, err
		}
	}
	return sim.NewModelListWithValues(ctx, models, values)
}

func assembleWeather(block *weatherBlock, c physics.Constants) (meteo.Weather, error) {
	weather := make(meteo.Weather, 0, len(block.Steps))
	for i, step := range block.Steps {
		rec, err := meteo.New(meteo.Input{
			T: step.T, Wind: step.Wind, P: step.P, Rh: step.Rh,
			Ca: step.Ca, Rad: step.Rad,
		}, c)
		if err != nil {
			return nil, fmt.Errorf("weather step %d: %w", i, err)
		}
		weather = append(weather, rec)
	}
	return weather, nil
}
