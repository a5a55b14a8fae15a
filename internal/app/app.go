package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gmx-trade-desk/internal/config"
	"gmx-trade-desk/internal/journal"
	"gmx-trade-desk/internal/markets"
	"gmx-trade-desk/internal/metrics"
	"gmx-trade-desk/internal/orders"
	"gmx-trade-desk/internal/state/sqlite"
	"gmx-trade-desk/internal/wallet"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *sqlite.Store
	registry *markets.Registry
	wallet   *wallet.Manager
	builder  *orders.Builder
	journal  *orders.Journal
	history  *journal.Writer
	metrics  *metrics.Metrics
	prom     *metrics.Prometheus
	server   *http.Server
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.State.SQLitePath), 0o755); err != nil {
		return nil, err
	}
	store, err := sqlite.New(cfg.State.SQLitePath)
	if err != nil {
		return nil, err
	}

	var prom *metrics.Prometheus
	m := metrics.NewNoop()
	if cfg.Metrics.EnabledValue() {
		prom = metrics.NewPrometheus()
		m = prom.Metrics
	}

	registry := markets.NewRegistry()
	walletMgr := wallet.NewManager(store, log)
	orderJournal := orders.NewJournal(store)
	builder := orders.NewBuilder(walletMgr, registry, orders.NewLogSubmitter(log), orderJournal, m, log)

	history, err := journal.New(cfg.Journal, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		registry: registry,
		wallet:   walletMgr,
		builder:  builder,
		journal:  orderJournal,
		history:  history,
		metrics:  m,
		prom:     prom,
	}
	a.server = &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      a.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()
	defer a.history.Close()

	if err := a.wallet.Seed(ctx, a.cfg.Wallet, a.cfg.Trading.DefaultChain); err != nil {
		return err
	}
	a.history.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.log.Info("serving", zap.String("addr", a.cfg.Server.Listen))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("server shutdown failed", zap.Error(err))
	}
	return ctx.Err()
}
