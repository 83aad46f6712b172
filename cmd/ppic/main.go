package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/app"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/config"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository/memory"
	"github.com/andresuchdata/ppic-planner/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

type appKey struct{}

func main() {
	cliApp := &cli.App{
		Name:  "ppic",
		Usage: "Production planning and raw material replenishment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			planCommand(),
			ropCommand(),
			importCommand(),
			exportCommand(),
			migrateCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("ppic failed")
	}
}

// openApp builds the application and keeps it on the command context.
func openApp(c *cli.Context) error {
	a, err := app.New(c.Context, config.Load())
	if err != nil {
		return err
	}
	if err := a.Sync.Refresh(c.Context); err != nil {
		a.Close()
		return fmt.Errorf("failed to load data: %w", err)
	}
	c.Context = context.WithValue(c.Context, appKey{}, a)
	return nil
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(appKey{}).(*app.App); ok && a != nil {
		return a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(appKey{}).(*app.App)
}

// persist writes the in-memory store back to its file. Spreadsheet stores
// are written through already.
func persist(a *app.App) error {
	store, ok := a.Store.(*memory.Store)
	if !ok {
		return nil
	}
	if err := os.MkdirAll(a.Config.App.DataDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(a.Config.App.DataDir, app.SnapshotFile)
	if err := store.SaveFile(path); err != nil {
		return err
	}
	logger.Log.Info().Str("path", path).Msg("snapshot saved")
	return nil
}
