package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/plantfab/leafsim/internal/registry"
	"github.com/plantfab/leafsim/models"
)

func kindsCommand() *cli.Command {
	return &cli.Command{
		Name:  "kinds",
		Usage: "List the registered model kinds",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			reg := registry.New()
			models.RegisterAll(reg)
			for _, kind := range reg.Kinds() {
				fmt.Println(kind)
			}
			return nil
		},
	}
}
