package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	apphttp "github.com/yungbote/neurobridge-ledger/internal/http"
	"github.com/yungbote/neurobridge-ledger/internal/observability"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Stores   Stores
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(clients.DB, log)
	stores, err := wireStores(log, cfg, clients)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}
	serviceset, err := wireServices(log, cfg, clients, reposet, stores)
	if err != nil {
		_ = stores.Bus.Close()
		clients.Close()
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(log, clients, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Stores:       stores,
		Services:     serviceset,
		Server:       &apphttp.Server{Engine: router},
		otelShutdown: otelShutdown,
	}, nil
}

// Run starts the background workers and the HTTP server and blocks until ctx
// is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if err := a.Services.Debounce.Start(gctx); err != nil {
		return fmt.Errorf("start debounce scheduler: %w", err)
	}
	defer a.Services.Debounce.Stop()

	if err := a.Services.PointsConsumer.Start(gctx); err != nil {
		return fmt.Errorf("start points consumer: %w", err)
	}
	if err := a.Services.BoardJob.Start(gctx); err != nil {
		return fmt.Errorf("start points board job: %w", err)
	}
	defer a.Services.BoardJob.Stop()

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Run(gctx, a.Cfg.HTTPAddr)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Stores.Bus != nil {
		if err := a.Stores.Bus.Close(); err != nil {
			a.Log.Warn("Closing bus failed", "error", err)
		}
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
