package engine

import (
	"errors"
	"testing"
)

func TestSimulatePnLLongScenario(t *testing.T) {
	result, err := SimulatePnL(2000, 2100, 100, 20, Long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PriceChangePct != 5 {
		t.Fatalf("price change expected 5, got %v", result.PriceChangePct)
	}
	if result.UnrealizedPnLUSD != 5 {
		t.Fatalf("pnl expected 5, got %v", result.UnrealizedPnLUSD)
	}
	if result.UnrealizedPnLPct != 25 {
		t.Fatalf("pnl pct expected 25, got %v", result.UnrealizedPnLPct)
	}
	// liq = 2000*(1-0.2*0.9) = 1640; distance = 460/2100*100 = 21.9%
	if result.LiquidationPrice != 1640 {
		t.Fatalf("liquidation expected 1640, got %v", result.LiquidationPrice)
	}
	if result.DistanceToLiquidationPct != 21.9 {
		t.Fatalf("distance expected 21.9, got %v", result.DistanceToLiquidationPct)
	}
	if result.RiskTier != RiskMedium {
		t.Fatalf("tier expected MEDIUM, got %s", result.RiskTier)
	}
}

func TestSimulatePnLSignProperty(t *testing.T) {
	up, err := SimulatePnL(2000, 2100, 100, 20, Long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up.UnrealizedPnLUSD <= 0 {
		t.Fatalf("long pnl expected > 0 on rally, got %v", up.UnrealizedPnLUSD)
	}
	down, err := SimulatePnL(2000, 2100, 100, 20, Short)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if down.UnrealizedPnLUSD >= 0 {
		t.Fatalf("short pnl expected < 0 on rally, got %v", down.UnrealizedPnLUSD)
	}
	if up.UnrealizedPnLUSD != -down.UnrealizedPnLUSD {
		t.Fatalf("long/short pnl expected symmetric, got %v and %v", up.UnrealizedPnLUSD, down.UnrealizedPnLUSD)
	}
}

func TestSimulatePnLRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name                            string
		entry, current, size, collateral float64
	}{
		{"zero entry", 0, 2100, 100, 20},
		{"zero current", 2000, 0, 100, 20},
		{"zero collateral", 2000, 2100, 100, 0},
		{"zero size", 2000, 2100, 0, 20},
		{"negative entry", -1, 2100, 100, 20},
	}
	for _, tc := range cases {
		if _, err := SimulatePnL(tc.entry, tc.current, tc.size, tc.collateral, Long); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}
}

func TestSimulatePnLTierTracksDistance(t *testing.T) {
	// 10x long from 1000: liquidation at 910. Current prices chosen to walk
	// the distance through the 30/15/5 bands.
	cases := []struct {
		current float64
		tier    RiskTier
	}{
		{1400, RiskLow},      // distance 35%
		{1200, RiskMedium},   // distance 24.2%
		{1000, RiskHigh},     // distance 9%
		{940, RiskCritical},  // distance 3.2%
	}
	previous := RiskLow
	order := map[RiskTier]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2, RiskCritical: 3}
	for _, tc := range cases {
		result, err := SimulatePnL(1000, tc.current, 1000, 100, Long)
		if err != nil {
			t.Fatalf("unexpected error at %v: %v", tc.current, err)
		}
		if result.RiskTier != tc.tier {
			t.Fatalf("at current %v expected %s, got %s (distance %v)", tc.current, tc.tier, result.RiskTier, result.DistanceToLiquidationPct)
		}
		if order[result.RiskTier] < order[previous] {
			t.Fatalf("tier regressed from %s to %s", previous, result.RiskTier)
		}
		previous = result.RiskTier
	}
}
