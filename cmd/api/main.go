package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"user-crud-service/cmd/api/app"
	"user-crud-service/cmd/api/server"
)

// Version is set at build time.
var Version = "dev"

func main() {
	cliApp := &cli.App{
		Name:    "user-crud-service",
		Usage:   "REST service for managing users",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Directory containing app.env",
				Value:   app.ConfigPath(),
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create the users table or collection indexes and exit",
				Action: migrate,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	a, err := app.New(c.Context, c.String("config"))
	if err != nil {
		return err
	}

	ctx, stop := server.WithSignal(c.Context, a.Logger)
	defer stop()

	return a.Run(ctx)
}

func migrate(c *cli.Context) error {
	a, err := app.New(c.Context, c.String("config"))
	if err != nil {
		return err
	}
	return a.Migrate(c.Context)
}
