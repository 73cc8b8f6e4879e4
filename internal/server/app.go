// Package server wires the cabinetmap backend: PostgreSQL repositories,
// venue and auth services, the public gRPC endpoint and the operational
// HTTP endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/dmitrijs2005/cabinetmap/internal/server/config"
	"github.com/dmitrijs2005/cabinetmap/internal/server/httpserver"
	"github.com/dmitrijs2005/cabinetmap/internal/server/metrics"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cabinetmap/internal/server/services"

	gs "github.com/dmitrijs2005/cabinetmap/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	metrics      *metrics.Metrics
	authService  *services.AuthService
	venueService *services.VenueService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.LogLevel, os.Stdout)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		metrics:      metrics.New(),
		authService:  services.NewAuthService(c),
		venueService: services.NewVenueService(db, rm, c),
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.venueService, app.metrics, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpserver.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.db, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both endpoints until a signal arrives or one of them fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return app.Close()
}

func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}
