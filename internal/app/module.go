// Package app composes the dashboard process: config, logging, lock, cache,
// backend client, loaders, ingestion engine, outbox sender and the TUI.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/cache"
	"github.com/abarbosa/atendo/internal/config"
	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/engine"
	"github.com/abarbosa/atendo/internal/loader"
	"github.com/abarbosa/atendo/internal/lock"
	"github.com/abarbosa/atendo/internal/logging"
	"github.com/abarbosa/atendo/internal/outbox"
	"github.com/abarbosa/atendo/internal/profile"
	"github.com/abarbosa/atendo/internal/status"
	"github.com/abarbosa/atendo/internal/tui"
	"github.com/abarbosa/atendo/internal/tui/model"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
}

// ContactsLoader and LeadsLoader disambiguate the two loader instances in
// the fx graph.
type ContactsLoader = *loader.Loader[crm.Contact]
type LeadsLoader = *loader.Loader[crm.ChatLead]

// Module returns the fx module for the dashboard, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideStatusMonitor,
			provideLock,
			provideCache,
			provideClient,
			provideContactsLoader,
			provideLeadsLoader,
			provideEngine,
			provideSender,
			provideViewModel,
			provideTUI,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config (run 'atendoctl init' first): %w", err)
	}
	config.ApplyEnv(cfg)
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api_base_url is not configured")
	}
	return cfg, nil
}

// The TUI owns the terminal, so the logger writes only to the profile's
// log file.
func provideLogger(p Params) (*zap.Logger, error) {
	return logging.NewFileOnly(profile.LogPath(p.ProfileName), p.ProfileName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideStatusMonitor(machine *status.Machine, b *bus.Bus, logger *zap.Logger) *status.Monitor {
	return status.NewMonitor(machine, b, logger)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideCache(p Params, logger *zap.Logger) (*cache.DB, error) {
	dbPath := profile.CacheDBPath(p.ProfileName)
	db, err := cache.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("cache initialized", zap.String("path", dbPath))
	return db, nil
}

func provideClient(cfg *config.Config, logger *zap.Logger) *crm.Client {
	return crm.New(cfg.APIBaseURL, cfg.AuthToken, logger)
}

func provideContactsLoader(cfg *config.Config, client *crm.Client, b *bus.Bus, logger *zap.Logger) ContactsLoader {
	return NewContactsLoader(cfg, client, b, logger)
}

// NewContactsLoader builds the incremental contact loader over the backend
// list endpoint. Shared with the CLI, which drives it to completion.
func NewContactsLoader(cfg *config.Config, client *crm.Client, b *bus.Bus, logger *zap.Logger) ContactsLoader {
	return loader.New(loader.Config[crm.Contact]{
		Fetch: func(ctx context.Context, search string, offset, limit int) (loader.Batch[crm.Contact], error) {
			page, err := client.ListContacts(ctx, crm.ContactQuery{
				Search: search,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return loader.Batch[crm.Contact]{}, err
			}
			return loader.Batch[crm.Contact]{
				Items:   page.Data,
				Total:   page.Pagination.Total,
				HasMore: page.Pagination.HasMore,
			}, nil
		},
		Key:       func(c crm.Contact) string { return c.ID },
		BatchSize: cfg.BatchSize,
		Bus:       b,
		BatchKind: bus.KindContactBatch,
		Logger:    logger.Named("contacts"),
	})
}

func provideLeadsLoader(cfg *config.Config, client *crm.Client, b *bus.Bus, logger *zap.Logger) LeadsLoader {
	return NewLeadsLoader(cfg, client, b, logger)
}

// NewLeadsLoader builds the incremental chat-lead loader.
func NewLeadsLoader(cfg *config.Config, client *crm.Client, b *bus.Bus, logger *zap.Logger) LeadsLoader {
	return loader.New(loader.Config[crm.ChatLead]{
		Fetch: func(ctx context.Context, search string, offset, limit int) (loader.Batch[crm.ChatLead], error) {
			page, err := client.ListLeads(ctx, crm.LeadQuery{
				Search: search,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return loader.Batch[crm.ChatLead]{}, err
			}
			return loader.Batch[crm.ChatLead]{
				Items:   page.Data,
				Total:   page.Pagination.Total,
				HasMore: page.Pagination.HasMore,
			}, nil
		},
		Key:       func(l crm.ChatLead) string { return l.Phone },
		BatchSize: cfg.BatchSize,
		Bus:       b,
		BatchKind: bus.KindLeadBatch,
		Logger:    logger.Named("leads"),
	})
}

func provideEngine(db *cache.DB, b *bus.Bus, logger *zap.Logger) *engine.Engine {
	return engine.New(db, b, logger)
}

func provideSender(db *cache.DB, client *crm.Client, b *bus.Bus, logger *zap.Logger) *outbox.Sender {
	return outbox.NewSender(db, client, b, logger)
}

func provideViewModel(client *crm.Client, db *cache.DB, b *bus.Bus, contacts ContactsLoader, leads LeadsLoader, logger *zap.Logger) *model.ViewModel {
	return model.NewViewModel(client, db, b, contacts, leads, logger)
}

func provideTUI(p Params, vm *model.ViewModel, b *bus.Bus, machine *status.Machine, cfg *config.Config, logger *zap.Logger) *tui.App {
	return tui.NewApp(vm, b, machine, p.ProfileName, cfg.APIBaseURL, logger)
}

func registerLifecycle(lc fx.Lifecycle, eng *engine.Engine, sender *outbox.Sender, client *crm.Client, machine *status.Machine, monitor *status.Monitor, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Ingest crm.* bus events into the cache.
			eng.Start(context.Background())

			// Drain queued actions against the backend.
			sender.Start(context.Background())

			// Flap Ready/Degraded as list fetches fail and recover.
			monitor.Start(context.Background())

			// Probe the backend and settle the initial connection state.
			go func() {
				_ = machine.Transition(status.Connecting)
				err := client.Health(context.Background())
				switch {
				case err == nil:
					_ = machine.Transition(status.Ready)
				case errors.Is(err, crm.ErrUnauthorized):
					logger.Warn("backend rejected token, auth required")
					_ = machine.Transition(status.AuthRequired)
				default:
					logger.Error("backend probe failed", zap.Error(err))
					_ = machine.Transition(status.Degraded)
				}
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			monitor.Stop()
			sender.Stop()
			eng.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("dashboard stopped")
			return nil
		},
	})
}
