package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/client/catalog"
	"github.com/dmitrijs2005/cabinetmap/internal/client/config"
	"github.com/dmitrijs2005/cabinetmap/internal/client/connectivity"
	"github.com/dmitrijs2005/cabinetmap/internal/client/kvstore"
	"github.com/dmitrijs2005/cabinetmap/internal/client/outbox"
	"github.com/dmitrijs2005/cabinetmap/internal/client/reconciler"
	"github.com/dmitrijs2005/cabinetmap/internal/client/remote"
	"github.com/dmitrijs2005/cabinetmap/internal/client/scheduler"
	"github.com/dmitrijs2005/cabinetmap/internal/client/services"
	"github.com/dmitrijs2005/cabinetmap/internal/filex"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/google/uuid"
)

// DeviceIDKey is the kv key holding this installation's identifier.
const DeviceIDKey = "device_id"

type App struct {
	config    *config.Config
	logger    logging.Logger
	svc       *services.OfflineService
	rec       *reconciler.Reconciler
	mode      *connectivity.ModeSwitch
	prober    *connectivity.Prober
	scheduler *scheduler.Scheduler
	catalog   *catalog.Cache
	now       func() time.Time
	in        io.Reader
	out       io.Writer
	closers   []func() error

	watcherDone chan struct{}
}

// remoteClient is what the app needs from the server connection.
type remoteClient interface {
	remote.Facade
	catalog.Source
	services.PhotoUploader
	connectivity.Pinger
}

// NewApp opens local storage, connects the venue client and wires the
// offline stack.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	var (
		store kvstore.Store
		db    *sql.DB
	)

	if c.InMemory {
		store = kvstore.NewMemoryStore()
	} else {
		if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
			return nil, fmt.Errorf("error preparing data directory: %w", err)
		}
		var err error
		db, err = kvstore.Open(ctx, c.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		store = kvstore.NewSQLiteStore(db)
	}

	deviceID, err := resolveDeviceID(ctx, store, c.DeviceID)
	if err != nil {
		closeDB(db)
		return nil, err
	}

	client, err := remote.NewGRPCClient(c.ServerEndpointAddr, deviceID)
	if err != nil {
		closeDB(db)
		return nil, err
	}

	app := assemble(c, store, client, logger)
	app.closers = append(app.closers, client.Close)
	if db != nil {
		app.closers = append(app.closers, db.Close)
	}
	return app, nil
}

func assemble(c *config.Config, store kvstore.Store, client remoteClient, logger logging.Logger) *App {
	app := &App{config: c, logger: logger, now: time.Now, in: os.Stdin, out: os.Stdout}

	ob := outbox.New(store, logger,
		outbox.WithHistoryCap(c.HistoryCap),
		outbox.WithRetention(c.RetentionWindow))

	facade := remote.NewBreakerFacade(client, c.BreakerFailures, c.BreakerOpenTimeout, logger)

	app.mode = connectivity.NewModeSwitch(app, logger)
	app.rec = reconciler.New(ob, facade, app.mode, logger,
		reconciler.WithForegroundInterval(c.ForegroundInterval))
	app.svc = services.NewOfflineService(ob, app.rec, app.mode, client, logger)
	app.prober = connectivity.NewProber(client, c.OnlineCheckInterval, logger)
	app.scheduler = scheduler.New(app.svc, c.SweepInterval, c.ForegroundInterval, logger)
	app.catalog = catalog.New(store, client, app.mode, logger, catalog.WithMaxAge(c.VenueCacheMaxAge))

	return app
}

// Foreground counts a user interaction as an app-foreground event.
func (a *App) Foreground(ctx context.Context) {
	a.svc.Foreground(ctx)
}

func (a *App) status() string {
	return fmt.Sprintf("%s, %d unsynced", a.mode.Mode(), a.svc.Stats().UnsyncedActions)
}

// OnReconnect forwards the offline-to-online edge to the reconciler.
func (a *App) OnReconnect(ctx context.Context) {
	a.rec.OnReconnect(ctx)
}

// Run loads offline data, starts connectivity monitoring and the scheduler,
// then blocks in the REPL until the user exits or stdin closes.
//
// On the way out the prober and the scheduler are stopped, and any sync
// pass they started has returned, before the connection and the database
// are closed.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	a.svc.Initialize(ctx)

	unsubscribe := a.mode.Start(ctx, a.prober)
	a.watcherDone = make(chan struct{})
	go func() {
		defer close(a.watcherDone)
		a.prober.Run(ctx)
	}()

	defer func() {
		cancel()
		<-a.watcherDone
		a.scheduler.Stop()
		unsubscribe()
	}()

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	printlnFn("Welcome to cabinetmap CLI (type 'help' for commands)")
	prompt := false
	if f, ok := a.in.(*os.File); ok {
		prompt = isInteractive(f)
	}
	runREPL(ctx, a, a.status, bufio.NewScanner(a.in), prompt)
	return nil
}

// Close releases the server connection and the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// resolveDeviceID returns configured when set, otherwise the id stored under
// DeviceIDKey, generating and storing one on first run.
func resolveDeviceID(ctx context.Context, store kvstore.Store, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	raw, err := store.Get(ctx, DeviceIDKey)
	if err != nil {
		return "", err
	}
	if len(raw) > 0 {
		return string(raw), nil
	}

	id := uuid.NewString()
	if err := store.Set(ctx, DeviceIDKey, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}
