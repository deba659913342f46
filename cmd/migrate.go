package main

import (
	"context"
	"fmt"

	"github.com/senyabanana/geega-crm/internal/db"
	"github.com/senyabanana/geega-crm/internal/router/config"

	"github.com/urfave/cli/v3"
)

// MigrateCommand применяет миграции схемы и завершается.
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, log, err := loadConfigAndLogger(c.String("config"))
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.StorageBackend != config.BackendPostgres {
				return fmt.Errorf("migrate requires the %s storage backend", config.BackendPostgres)
			}
			return db.RunMigrations(cfg, log)
		},
	}
}
