package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/app"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/config"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/drive"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/export"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/andresuchdata/ppic-planner/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import materials, products or sales from a CSV/XLSX file or a Drive file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Local CSV or XLSX file",
			},
			&cli.StringFlag{
				Name:  "drive-file-id",
				Usage: "Google Drive file id (requires DRIVE_CREDENTIALS_JSON)",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "materials, products or sales; detected from sheet names when empty",
			},
		},
		Before: openApp,
		After:  closeApp,
		Action: runImport,
	}
}

func runImport(c *cli.Context) error {
	a := appFrom(c)
	kind, err := drive.ParseKind(c.String("kind"))
	if err != nil {
		return err
	}

	var results []drive.SheetResult
	switch {
	case c.String("drive-file-id") != "":
		if a.Ingest == nil {
			return errors.New("drive is not configured")
		}
		results, err = a.Ingest.IngestFile(c.Context, c.String("drive-file-id"), kind)
	case c.String("file") != "":
		results, err = importLocal(c.Context, a.MasterData, c.String("file"), kind)
	default:
		return errors.New("either --file or --drive-file-id is required")
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		logger.Log.Info().
			Str("sheet", r.Sheet).
			Str("kind", string(r.Kind)).
			Int("imported", r.Imported).
			Int("total", r.Total).
			Msg("sheet imported")
	}
	return persist(a)
}

func importLocal(ctx context.Context, master *service.MasterDataService, path string, kind drive.Kind) ([]drive.SheetResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sheets, err := drive.ReadFile(path, data)
	if err != nil {
		return nil, err
	}

	var results []drive.SheetResult
	for _, sh := range sheets {
		k := kind
		if k == "" {
			var ok bool
			if k, ok = drive.DetectKind(sh.Name); !ok {
				if k, ok = drive.DetectKind(path); !ok {
					logger.Log.Warn().Str("sheet", sh.Name).Msg("sheet skipped")
					continue
				}
			}
		}

		var fn func(context.Context, []ingest.Row) (service.ImportResult, error)
		switch k {
		case drive.KindMaterials:
			fn = master.ImportMaterials
		case drive.KindProducts:
			fn = master.ImportProducts
		default:
			fn = master.ImportSales
		}
		res, err := fn(ctx, sh.Rows)
		if err != nil {
			return results, fmt.Errorf("failed to import sheet %s: %w", sh.Name, err)
		}
		results = append(results, drive.SheetResult{File: path, Sheet: sh.Name, Kind: k, ImportResult: res})
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", drive.ErrUnknownKind, path)
	}
	return results, nil
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write a workbook to the export directory (and bucket when configured)",
		Subcommands: []*cli.Command{
			{
				Name:      "schedule",
				Usage:     "Export a saved schedule",
				ArgsUsage: "<schedule id>",
				Before:    openApp,
				After:     closeApp,
				Action: func(c *cli.Context) error {
					a := appFrom(c)
					view, err := a.Planning.EditSchedule(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					wb, err := export.Schedule(view.StartDate, view.Dates, view.Rows)
					return save(c, a, wb, err)
				},
			},
			{
				Name:      "requirement",
				Usage:     "Export the material requirement of a saved schedule",
				ArgsUsage: "<schedule id>",
				Before:    openApp,
				After:     closeApp,
				Action: func(c *cli.Context) error {
					a := appFrom(c)
					view, err := a.Planning.EditSchedule(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					req, err := a.Planning.Requirement(c.Context)
					if err != nil {
						return err
					}
					snap, err := a.Sync.Snapshot(c.Context)
					if err != nil {
						return err
					}
					wb, err := export.Requirement(view.StartDate, req.Global, req.PerSKU, snap.RawMaterials, snap.FinishGoods)
					return save(c, a, wb, err)
				},
			},
			{
				Name:      "order",
				Usage:     "Export a request order",
				ArgsUsage: "<order id>",
				Before:    openApp,
				After:     closeApp,
				Action: func(c *cli.Context) error {
					a := appFrom(c)
					order, err := a.Purchasing.Get(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					wb, err := export.RequestOrder(order)
					return save(c, a, wb, err)
				},
			},
			{
				Name:      "template",
				Usage:     "Export an import template",
				ArgsUsage: "<materials|products|sales>",
				Action: func(c *cli.Context) error {
					wb, err := export.Template(c.Args().First())
					if err != nil {
						return err
					}
					cfg := config.Load()
					saved, err := export.NewExporter(cfg.App.ExportDir, nil).Save(c.Context, wb)
					if err != nil {
						return err
					}
					fmt.Println(saved.Path)
					return nil
				},
			},
		},
	}
}

func save(c *cli.Context, a *app.App, wb *export.Workbook, err error) error {
	if err != nil {
		return err
	}
	saved, err := a.Exporter.Save(c.Context, wb)
	if err != nil {
		return err
	}
	if saved.Path != "" {
		fmt.Println(saved.Path)
	}
	if saved.Key != "" {
		fmt.Println(saved.Key)
	}
	return nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the archive tables in Postgres",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load().Database
			if url := c.String("db-url"); url != "" {
				cfg.URL = url
			}
			db, err := app.OpenArchive(c.Context, &cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Log.Info().Msg("archive tables are up to date")
			return nil
		},
	}
}
