package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/plantfab/leafsim/internal/ctxlog"
	"github.com/plantfab/leafsim/internal/driver"
	"github.com/plantfab/leafsim/internal/hclconfig"
	"github.com/plantfab/leafsim/internal/meteo"
	"github.com/plantfab/leafsim/internal/physics"
	"github.com/plantfab/leafsim/internal/registry"
	"github.com/plantfab/leafsim/internal/status"
	"github.com/plantfab/leafsim/models"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a scenario over a weather sequence and export the results as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "scenario",
				Aliases:  []string{"s"},
				Usage:    "Path to the scenario HCL file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "weather",
				Aliases: []string{"w"},
				Usage:   "Path to a weather CSV file (overrides the scenario's inline weather)",
			},
			&cli.StringFlag{
				Name:    "constants",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML physical-constants override file",
			},
			&cli.StringFlag{
				Name:    "process",
				Aliases: []string{"p"},
				Usage:   "Role of the process to run",
				Value:   "energy_balance",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output CSV path ('-' for stdout)",
				Value:   "-",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	ctx = ctxlog.WithLogger(ctx, logger)

	consts := physics.Defaults()
	if path := cmd.String("constants"); path != "" {
		consts, err = physics.Load(path)
		if err != nil {
			return err
		}
	}

	reg := registry.New()
	models.RegisterAll(reg)

	scenario, err := hclconfig.LoadFile(ctx, cmd.String("scenario"), reg, consts)
	if err != nil {
		return err
	}

	weather := scenario.Weather
	if path := cmd.String("weather"); path != "" {
		weather, err = meteo.ReadCSVFile(ctx, path, consts)
		if err != nil {
			return err
		}
	}
	if len(weather) == 0 {
		return fmt.Errorf("no weather: the scenario has no inline weather block and no --weather file was given")
	}

	role := cmd.String("process")
	group := driver.Group(scenario.Components)
	logger.Info("Starting simulation.",
		"components", len(group), "process", role, "steps", len(weather))
	if err := driver.RunGroup(ctx, role, group, weather, consts); err != nil {
		return err
	}

	return writeResults(cmd.String("output"), group)
}

func writeResults(path string, group driver.Group) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	tables := make(map[string]*status.Table, len(group))
	for key, ml := range group {
		tables[key] = ml.Status
	}
	return status.WriteCombinedCSV(w, "component", group.Keys(), tables)
}
