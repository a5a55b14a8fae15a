package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"gmx-trade-desk/internal/config"
	"gmx-trade-desk/internal/engine"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// PlanRecord is one served trading plan, flattened for the history table.
type PlanRecord struct {
	Time             time.Time
	Market           string
	Chain            string
	Direction        string
	SizeUSD          float64
	CollateralUSD    float64
	Leverage         float64
	EntryPrice       *float64
	LiquidationPrice *float64
	LeverageRisk     string
	SizeRisk         string
	TotalCostUSD     float64
}

func RecordFromPlan(plan engine.TradingPlan, at time.Time) PlanRecord {
	return PlanRecord{
		Time:             at,
		Market:           plan.Market,
		Chain:            plan.Chain,
		Direction:        string(plan.Direction),
		SizeUSD:          plan.SizeUSD,
		CollateralUSD:    plan.CollateralUSD,
		Leverage:         plan.Leverage,
		EntryPrice:       plan.EntryPrice,
		LiquidationPrice: plan.LiquidationPrice,
		LeverageRisk:     string(plan.Risk.LeverageRisk),
		SizeRisk:         string(plan.Risk.PositionSizeRisk),
		TotalCostUSD:     plan.Costs.TotalCostUSD,
	}
}

// Writer records served plans to Postgres in the background. A full queue
// drops records rather than slowing the serving path.
type Writer struct {
	db      *sql.DB
	log     *zap.Logger
	schema  string
	records chan PlanRecord
	started atomic.Bool
	dropped atomic.Uint64
}

func New(cfg config.JournalConfig, log *zap.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("journal dsn is required")
	}
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	writer := &Writer{
		db:      db,
		log:     log,
		schema:  schema,
		records: make(chan PlanRecord, queueSize),
	}
	if err := writer.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return writer, nil
}

func (w *Writer) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

func (w *Writer) Enqueue(record PlanRecord) {
	if w == nil {
		return
	}
	select {
	case w.records <- record:
		return
	default:
		if w.dropped.Add(1) == 1 && w.log != nil {
			w.log.Warn("plan history queue full")
		}
	}
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case record := <-w.records:
			w.write(ctx, record)
		}
	}
}

func (w *Writer) ensureSchema(ctx context.Context) error {
	if w.db == nil {
		return errors.New("journal db not initialized")
	}
	if w.schema != "public" {
		if err := w.exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", w.schema)); err != nil {
			return err
		}
	}
	return w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		market TEXT NOT NULL,
		chain TEXT NOT NULL,
		direction TEXT NOT NULL,
		size_usd DOUBLE PRECISION NOT NULL,
		collateral_usd DOUBLE PRECISION NOT NULL,
		leverage DOUBLE PRECISION NOT NULL,
		entry_price DOUBLE PRECISION,
		liquidation_price DOUBLE PRECISION,
		leverage_risk TEXT NOT NULL,
		size_risk TEXT NOT NULL,
		total_cost_usd DOUBLE PRECISION NOT NULL
	)`, w.table("plan_history")))
}

func (w *Writer) write(ctx context.Context, record PlanRecord) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		ts, market, chain, direction, size_usd, collateral_usd, leverage,
		entry_price, liquidation_price, leverage_risk, size_risk, total_cost_usd
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`, w.table("plan_history"))
	if _, err := w.db.ExecContext(ctx, query,
		record.Time,
		record.Market,
		record.Chain,
		record.Direction,
		record.SizeUSD,
		record.CollateralUSD,
		record.Leverage,
		record.EntryPrice,
		record.LiquidationPrice,
		record.LeverageRisk,
		record.SizeRisk,
		record.TotalCostUSD,
	); err != nil && w.log != nil {
		w.log.Warn("plan history insert failed", zap.Error(err))
	}
}

func (w *Writer) exec(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *Writer) table(name string) string {
	return w.schema + "." + name
}
