package journal

import (
	"testing"
	"time"

	"gmx-trade-desk/internal/config"
	"gmx-trade-desk/internal/engine"

	"go.uber.org/zap"
)

func TestNewDisabled(t *testing.T) {
	w, err := New(config.JournalConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != nil {
		t.Fatalf("expected nil writer when disabled")
	}
	// the nil writer must be safe on every call path
	w.Start(t.Context())
	w.Enqueue(PlanRecord{})
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewEnabledRequiresDSN(t *testing.T) {
	if _, err := New(config.JournalConfig{Enabled: true}, zap.NewNop()); err == nil {
		t.Fatalf("expected error without dsn")
	}
}

func TestRecordFromPlan(t *testing.T) {
	entry := 2000.0
	liq := 1820.0
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	plan := engine.TradingPlan{
		Market:           "ETH",
		Pair:             "ETH/USD",
		Chain:            "arbitrum",
		Direction:        engine.Long,
		SizeUSD:          1000,
		CollateralUSD:    100,
		Leverage:         10,
		EntryPrice:       &entry,
		LiquidationPrice: &liq,
		Risk: engine.RiskAnalysis{
			LeverageRisk:     engine.RiskLow,
			PositionSizeRisk: engine.RiskLow,
		},
		Costs: engine.CostEstimate{TotalCostUSD: 15.7},
	}

	record := RecordFromPlan(plan, at)
	if record.Time != at {
		t.Fatalf("time: got %v", record.Time)
	}
	if record.Market != "ETH" || record.Chain != "arbitrum" || record.Direction != "LONG" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.SizeUSD != 1000 || record.CollateralUSD != 100 || record.Leverage != 10 {
		t.Fatalf("unexpected sizing: %+v", record)
	}
	if record.EntryPrice != &entry || record.LiquidationPrice != &liq {
		t.Fatalf("expected price pointers to be carried through")
	}
	if record.LeverageRisk != "LOW" || record.SizeRisk != "LOW" {
		t.Fatalf("unexpected risk: %+v", record)
	}
	if record.TotalCostUSD != 15.7 {
		t.Fatalf("unexpected cost: %v", record.TotalCostUSD)
	}
}
