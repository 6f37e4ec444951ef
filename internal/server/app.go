// Package server initializes and runs the LifeKeeper backend.
// It opens the database, applies migrations, seeds the module catalog,
// handles graceful shutdown and starts the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/logging"
	"github.com/dmitrijs2005/lifekeeper/internal/server/catalog"
	"github.com/dmitrijs2005/lifekeeper/internal/server/config"
	"github.com/dmitrijs2005/lifekeeper/internal/server/gate"
	"github.com/dmitrijs2005/lifekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/lifekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lifekeeper/internal/server/services"
	"github.com/dmitrijs2005/lifekeeper/internal/timex"
)

const tokenPurgeInterval = time.Hour

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	userService     *services.UserService
	settingsService *services.SettingsService
	habitService    *services.HabitService
	gate            *gate.Gate
	metrics         *metrics.Metrics
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(logging.Options{Level: c.LogLevel, File: c.LogFile})

	loc, err := timex.LoadLocation(c.Timezone)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := bootstrap(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager(), loc)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func bootstrap(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager, loc *time.Location) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	n, err := catalog.Seed(ctx, rm.Modules(db), catalog.Defaults())
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Module catalog seeded", "inserted", n)

	cat, err := catalog.Load(ctx, rm.Modules(db))
	if err != nil {
		return nil, fmt.Errorf("catalog load error: %w", err)
	}

	if c.SeedDemo {
		created, err := services.SeedDemo(ctx, db, rm)
		if err != nil {
			return nil, fmt.Errorf("demo seed error: %w", err)
		}
		if created {
			logger.Info(ctx, "Demo user created", "username", services.DemoUsername)
		}
	}

	g := gate.New()
	us := services.NewUserService(db, rm, c)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		userService:     us,
		settingsService: services.NewSettingsService(db, rm, cat, g),
		habitService:    services.NewHabitService(db, rm, loc),
		gate:            g,
		metrics:         metrics.New(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config, app.logger, app.userService, app.settingsService, app.habitService, app.gate, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeTokens drops expired refresh tokens on start and then periodically.
func (app *App) purgeTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		n, err := app.userService.PurgeExpiredTokens(ctx)
		if err != nil && ctx.Err() == nil {
			app.logger.Warn(ctx, "refresh token purge failed", "error", err)
		} else if n > 0 {
			app.logger.Info(ctx, "Expired refresh tokens purged", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
