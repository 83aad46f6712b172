// Package app wires configuration into stores, services and transports for
// the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/api"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/cache"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/config"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/drive"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/export"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/purchasing"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository/memory"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository/sheets"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// SnapshotFile is the local store file used when no spreadsheet is
// configured. It lives in the data dir.
const SnapshotFile = "snapshot.json"

type App struct {
	Config   *config.Config
	Location *time.Location

	Store   repository.Store
	Archive repository.Archive
	Objects storage.ObjectStorage

	Sync       *service.SyncService
	MasterData *service.MasterDataService
	Planning   *service.PlanningService
	Purchasing *service.PurchasingService
	Dashboard  *service.DashboardService
	History    *service.HistoryService
	Exporter   *export.Exporter

	// Drive collaborators are nil unless Drive credentials are configured.
	Drive   *drive.Service
	Ingest  *drive.IngestService
	Watcher *drive.Watcher

	db *postgres.DB
}

// New builds the application. Optional backends (redis, postgres, minio,
// drive) that fail to connect are logged and left out.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Location: Location(cfg.App.Timezone)}

	store, err := openStore(ctx, cfg, a.Location)
	if err != nil {
		return nil, err
	}
	a.Store = store

	snapshotCache, statsCache := openCaches(cfg.Cache)

	if cfg.Database.Enabled {
		db, err := OpenArchive(ctx, &cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("app: archive database unavailable, continuing without it")
		} else {
			a.db = db
			a.Archive = postgres.NewArchiveRepository(db)
		}
	}

	if cfg.Storage.Endpoint != "" {
		objects, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("app: object storage unavailable, exports stay local")
		} else {
			a.Objects = objects
		}
	}

	interval := time.Duration(cfg.Sheets.PollIntervalSeconds) * time.Second
	a.Sync = service.NewSyncService(store, snapshotCache, interval)

	planCfg := pipeline.DefaultConfig()
	if cfg.Planning.SafetyDays > 0 {
		planCfg.SafetyDays = cfg.Planning.SafetyDays
	}
	if cfg.Planning.ROPSafetyDays > 0 {
		planCfg.ROPSafetyDays = cfg.Planning.ROPSafetyDays
	}
	planCfg.Location = a.Location

	desk := purchasing.NewDesk(purchasing.Options{
		DeadlineDays: cfg.Planning.OrderDeadlineDays,
		ReceiverName: cfg.Planning.ReceiverName,
		Location:     a.Location,
	})

	a.MasterData = service.NewMasterDataService(store, a.Sync, ingest.NewDecoder(a.Location))
	a.Planning = service.NewPlanningService(store, a.Sync, statsCache, a.Archive, planCfg)
	a.Purchasing = service.NewPurchasingService(store, a.Sync, a.Archive, desk)
	a.Dashboard = service.NewDashboardService(a.Sync, service.DashboardConfig{
		FGSafeStock: cfg.Planning.FGSafeStockLevel,
		RangeDays:   cfg.Planning.DashboardRangeDays,
		Location:    a.Location,
	})
	a.History = service.NewHistoryService(a.Sync)
	a.Exporter = export.NewExporter(cfg.App.ExportDir, a.Objects)

	if cfg.Drive.CredentialsJSON != "" {
		driveSvc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			log.Warn().Err(err).Msg("app: drive unavailable, workbook import disabled")
		} else {
			a.Drive = driveSvc
			a.Ingest = drive.NewIngestService(driveSvc, a.MasterData)
			if cfg.Drive.ImportFolderID != "" {
				a.Watcher = drive.NewWatcher(driveSvc, a.Ingest, cfg.Drive.ImportFolderID)
			}
		}
	}

	return a, nil
}

// Services exposes the application to the HTTP router.
func (a *App) Services() *api.Services {
	s := &api.Services{
		MasterData: a.MasterData,
		Planning:   a.Planning,
		Purchasing: a.Purchasing,
		Dashboard:  a.Dashboard,
		History:    a.History,
		Sync:       a.Sync,
		Exporter:   a.Exporter,
	}
	if a.Drive != nil {
		s.Drive = drive.NewHandler(a.Drive, a.Ingest).Router()
	}
	return s
}

// Close releases the archive connection.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Location loads the planning time zone, falling back to the host's.
func Location(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("timezone", name).Msg("app: unknown timezone, using local time")
		return time.Local
	}
	return loc
}

// OpenArchive connects to the archive database and creates its tables.
func OpenArchive(ctx context.Context, cfg *config.DatabaseConfig) (*postgres.DB, error) {
	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	return db, nil
}

func openStore(ctx context.Context, cfg *config.Config, loc *time.Location) (repository.Store, error) {
	if cfg.Sheets.Enabled {
		store, err := sheets.NewStore(ctx, cfg.Sheets, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to open spreadsheet store: %w", err)
		}
		log.Info().Str("spreadsheet_id", cfg.Sheets.SpreadsheetID).Msg("app: using spreadsheet store")
		return store, nil
	}

	path := filepath.Join(cfg.App.DataDir, SnapshotFile)
	store, err := memory.LoadFile(path, loc)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("app: no snapshot file, starting with an empty in-memory store")
		return memory.New(domain.Snapshot{}), nil
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Msg("app: using in-memory store")
	return store, nil
}

func openCaches(cfg config.CacheConfig) (cache.SnapshotCache, cache.AnalyticsCache) {
	snapshotCache, err := cache.NewSnapshotCache(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("app: snapshot cache unavailable, using noop")
		snapshotCache = cache.NewNoopSnapshotCache()
	}
	statsCache, err := cache.NewAnalyticsCache(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("app: analytics cache unavailable, using noop")
		statsCache = cache.NewNoopAnalyticsCache()
	}
	return snapshotCache, statsCache
}
