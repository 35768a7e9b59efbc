package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MarketBoard/internal/usecase"
	pkgch "MarketBoard/pkg/clickhouse"
	"MarketBoard/pkg/config"
	xhttp "MarketBoard/pkg/http"
	applogger "MarketBoard/pkg/logger"
	"MarketBoard/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg          *config.Config
	log          *applogger.Logger
	refresher    *usecase.Refresher
	collector    *usecase.TickCollector
	httpHandler  xhttp.Handler
	httpServer   *xhttp.Server
	chClient     *pkgch.Client
	archiveQueue *queue.RedisQueue
	closers      []func() error
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	refresher *usecase.Refresher,
	collector *usecase.TickCollector,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	archiveQueue *queue.RedisQueue,
) *App {
	return &App{
		cfg:          cfg,
		log:          log,
		refresher:    refresher,
		collector:    collector,
		httpHandler:  handler,
		chClient:     chClient,
		archiveQueue: archiveQueue,
	}
}

// AddCloser registers an extra resource to close on shutdown.
func (a *App) AddCloser(fn func() error) { a.closers = append(a.closers, fn) }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	if a.archiveQueue != nil {
		if err := a.archiveQueue.Start(); err != nil {
			a.log.Error("archive queue start error", applogger.Error(err))
			return err
		}
		a.log.Info("archive queue started")
	}

	if err := a.refresher.Start(ctx); err != nil {
		a.log.Error("refresher start error", applogger.Error(err))
		return err
	}
	a.log.Info("refresher started",
		applogger.String("feed", a.cfg.Feed.BaseURL),
		applogger.Duration("interval", a.cfg.Feed.PollInterval))

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("tick collector error", applogger.Error(err))
			}
		}()
		a.log.Info("tick collector started", applogger.String("url", a.cfg.Stream.URL))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.refresher.Stop()

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("tick collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.archiveQueue != nil {
		if err := a.archiveQueue.Stop(shutdownCtx); err != nil {
			a.log.Warn("archive queue stop error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.log.Warn("resource close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
