package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/config"
	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/mongodb"
	"github.com/mamadbah2/butchershop/internal/repository/redis"
	"github.com/mamadbah2/butchershop/internal/repository/sheets"
	"github.com/mamadbah2/butchershop/internal/repository/store"
	"github.com/mamadbah2/butchershop/internal/scheduler"
	"github.com/mamadbah2/butchershop/internal/server/handlers"
	"github.com/mamadbah2/butchershop/internal/server/router"
	"github.com/mamadbah2/butchershop/internal/service/auth"
	"github.com/mamadbah2/butchershop/internal/service/backup"
	"github.com/mamadbah2/butchershop/internal/service/customers"
	"github.com/mamadbah2/butchershop/internal/service/errlog"
	"github.com/mamadbah2/butchershop/internal/service/notes"
	"github.com/mamadbah2/butchershop/internal/service/notify"
	"github.com/mamadbah2/butchershop/internal/service/orders"
	"github.com/mamadbah2/butchershop/internal/service/products"
	"github.com/mamadbah2/butchershop/internal/service/sheetsync"
	"github.com/mamadbah2/butchershop/internal/service/templates"
	"github.com/mamadbah2/butchershop/internal/service/undo"
	"github.com/mamadbah2/butchershop/pkg/clients/whatsapp"
)

// Store is a durable KV that owns a connection.
type Store interface {
	store.KV
	Close(ctx context.Context) error
}

// App owns every long-lived component and their lifecycle.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	now    func() time.Time

	Store     Store
	Undo      *undo.Ledger
	Customers *customers.Repository
	Orders    *orders.Repository
	Notes     *notes.Service
	Templates *templates.Service
	Notify    *notify.Service
	Products  *products.Catalog
	Backups   *backup.Service
	Sync      *sheetsync.Service
	Errors    *errlog.Log
	Auth      *auth.Gate
	Scheduler *scheduler.Scheduler

	engine http.Handler
}

// New connects the configured store and spreadsheet and wires every component.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kv, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var sheet sheets.Repository
	if cfg.Sheets.Enabled() {
		sheet, err = sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named("repo.sheets"))
		if err != nil {
			logger.Warn("spreadsheet unavailable, sync and remote products disabled", zap.Error(err))
			sheet = nil
		}
	} else {
		logger.Info("spreadsheet not configured, sync and remote products disabled")
	}

	var sender notify.TextSender
	if cfg.WhatsApp.Enabled() {
		sender = whatsapp.NewClient(cfg.WhatsApp)
	}

	a, err := Build(cfg, kv, sheet, sender, logger)
	if err != nil {
		_ = kv.Close(ctx)
		return nil, err
	}
	return a, nil
}

// OpenStore connects the driver selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, fmt.Errorf("init mongodb store: %w", err)
		}
		logger.Info("using mongodb store", zap.String("db", cfg.MongoDB.DBName))
		return repo, nil
	case config.StoreRedis:
		repo, err := redis.NewRepository(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		logger.Info("using redis store", zap.String("addr", cfg.Redis.Addr))
		return repo, nil
	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Build wires the components over an already opened store. sheet and sender may be nil.
func Build(cfg config.Config, kv Store, sheet sheets.Repository, sender notify.TextSender, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Schedule.Timezone, err)
	}
	now := func() time.Time { return time.Now().In(loc) }

	a := &App{cfg: cfg, logger: logger, now: now, Store: kv}

	a.Undo = undo.NewLedger(logger.Named("svc.undo"),
		undo.WithCapacity(cfg.Undo.Capacity),
		undo.WithDismissAfter(cfg.Undo.DismissAfter),
	)
	a.Customers = customers.NewRepository(kv, a.Undo, logger.Named("repo.customers")).WithClock(now)
	a.Orders = orders.NewRepository(kv, a.Undo, a.Customers, logger.Named("repo.orders")).WithClock(now)
	a.Notes = notes.NewService(kv, logger.Named("svc.notes")).WithClock(now)
	a.Templates = templates.NewService(kv, logger.Named("svc.templates"))
	a.Notify = notify.NewService(a.Templates, a.Orders, a.Customers, sender, cfg.Shop.Name, logger.Named("svc.notify"))
	a.Backups = backup.NewService(kv, logger.Named("svc.backup")).WithClock(now)
	a.Errors = errlog.New(kv, logger.Named("svc.errlog")).WithClock(now)
	a.Auth = auth.NewGate(kv, cfg.Auth, logger.Named("svc.auth"))

	var source products.Source
	if sheet != nil {
		source = products.NewSheetSource(sheet)
	}
	a.Products = products.NewCatalog(kv, source, logger.Named("svc.products")).WithClock(now)
	a.Sync = sheetsync.NewService(sheet, a.Customers, a.Orders, logger.Named("svc.sync")).WithClock(now)

	jobs := scheduler.Jobs{AutomaticBackup: a.AutomaticBackup}
	if a.Sync.Enabled() {
		jobs.DailySync = a.DailySync
	}
	a.Scheduler, err = scheduler.NewScheduler(cfg.Schedule, jobs, logger.Named("scheduler"))
	if err != nil {
		return nil, err
	}
	a.Scheduler.WithClock(now)

	h := handlers.New(handlers.Deps{
		Auth:      a.Auth,
		Customers: a.Customers,
		Orders:    a.Orders,
		Notes:     a.Notes,
		Templates: a.Templates,
		Notify:    a.Notify,
		Undo:      a.Undo,
		Products:  a.Products,
		Backups:   a.Backups,
		Sync:      a.Sync,
		Errors:    a.Errors,
		Restorer:  a,
		Schedule:  a.Scheduler,
		ShopName:  cfg.Shop.Name,
		Location:  loc,
	}, logger.Named("handlers"))
	a.engine = router.New(h, logger.Named("router"))

	return a, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Start loads every collection and starts the timed jobs.
func (a *App) Start(ctx context.Context) error {
	if err := a.Customers.Load(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := a.Orders.Load(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := a.Notes.Load(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := a.Templates.Load(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	a.Products.LoadProducts(ctx)
	if msg := a.Products.LastError(); msg != "" {
		a.Errors.Record(ctx, "products", errors.New(msg))
	}

	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("application started",
		zap.Int("customers", len(a.Customers.ListCustomers())),
		zap.Int("orders", len(a.Orders.ListOrders())),
		zap.String("products", string(a.Products.Origin())),
	)
	return nil
}

// Stop halts the timed jobs, cancels undo timers and closes the store.
func (a *App) Stop(ctx context.Context) error {
	a.Scheduler.Stop()
	a.Undo.Stop()
	if err := a.Store.Close(ctx); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	a.logger.Info("application stopped")
	return nil
}

// Restore writes a snapshot's collections into the repositories and clears the undo stack,
// whose closures would otherwise resurrect pre-restore state.
func (a *App) Restore(ctx context.Context, snap models.Snapshot) error {
	if err := a.Customers.Replace(ctx, snap.Customers); err != nil {
		return fmt.Errorf("restore customers: %w", err)
	}
	if err := a.Orders.Replace(ctx, snap.Orders); err != nil {
		return fmt.Errorf("restore orders: %w", err)
	}
	a.Undo.Clear()
	a.logger.Info("snapshot restored",
		zap.Int("customers", len(snap.Customers)),
		zap.Int("orders", len(snap.Orders)),
		zap.Time("taken_at", snap.Timestamp),
	)
	return nil
}

// AutomaticBackup is the scheduled daily snapshot.
func (a *App) AutomaticBackup(ctx context.Context) error {
	_, err := a.Backups.CreateBackup(ctx, a.Customers.Snapshot(), a.Orders.Snapshot(), models.BackupAutomatic)
	if err != nil {
		a.Errors.Record(ctx, "backup", err)
	}
	return err
}

// DailySync pushes today's collections to the spreadsheet.
func (a *App) DailySync(ctx context.Context) error {
	_, err := a.Sync.Sync(ctx, sheetsync.TypeDaily)
	if err != nil {
		a.Errors.Record(ctx, "sync", err)
	}
	return err
}
