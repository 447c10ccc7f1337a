package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/goaltracker/internal/config"
	"github.com/templui/goaltracker/internal/db"
	"github.com/templui/goaltracker/internal/middleware"
	"github.com/templui/goaltracker/internal/repository"
	"github.com/templui/goaltracker/internal/service"
	"github.com/templui/goaltracker/internal/storage"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	AuthService      *service.AuthService
	CoverService     *service.CoverService
	Stores           *service.StoreRegistry
	CoverRateLimiter *middleware.RateLimiter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.DBAutoMigrate {
		err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Storage (nil when S3 is not configured)
	coverStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return NewWithDB(cfg, database, coverStorage), nil
}

// NewWithDB wires services around an already opened database.
func NewWithDB(cfg *config.Config, database *sqlx.DB, coverStorage storage.Storage) *App {
	// Repositories
	goalRepository := repository.NewGoalRepository(database)
	milestoneRepository := repository.NewMilestoneRepository(database)

	return &App{
		Cfg:              cfg,
		DB:               database,
		AuthService:      service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry),
		CoverService:     service.NewCoverService(coverStorage),
		Stores:           service.NewStoreRegistry(goalRepository, milestoneRepository),
		CoverRateLimiter: middleware.NewRateLimiter(cfg.CoverRateLimit, time.Minute),
	}
}

func (a *App) Close() error {
	a.Stores.CloseAll()
	a.CoverRateLimiter.Stop()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
