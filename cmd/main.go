package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "geega-crm",
		Usage: "Tender dashboard, creation and Excel export service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Directory containing app.env",
				Value: ".",
			},
		},
		Commands: []*cli.Command{
			ServeCommand(),
			MigrateCommand(),
			ExportCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
