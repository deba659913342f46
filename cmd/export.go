package main

import (
	"context"
	"fmt"
	"os"

	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/services"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// ExportCommand пишет выгрузку тендеров в файл без запуска сервера.
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export tenders to an Excel file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ids",
				Usage: "Comma-separated tender ids; when set, filter and search are ignored",
			},
			&cli.StringFlag{
				Name:  "filter-type",
				Usage: "Tender stage filter",
				Value: "all",
			},
			&cli.StringFlag{
				Name:  "search",
				Usage: "Search text over title, tender number and customer",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output file path",
				Value: services.ExportFilename,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return exportTenders(ctx, c.String("config"), c.String("output"), models.ExportRequest{
				IDs:        c.String("ids"),
				FilterType: c.String("filter-type"),
				Search:     c.String("search"),
			})
		},
	}
}

func exportTenders(ctx context.Context, configPath, output string, req models.ExportRequest) error {
	cfg, log, err := loadConfigAndLogger(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.ExportTimeout)
	defer cancel()

	buf, err := services.NewExportService(app.tenders, log).ExportTenders(ctx, req)
	if err != nil {
		return err
	}
	if err = os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	log.Info("export written", zap.String("path", output), zap.Int("bytes", buf.Len()))
	return nil
}
