package engine

import (
	"fmt"
	"math"
)

// SimulatePnL marks a position to currentPrice and classifies how close it
// sits to liquidation. All percentage outputs are in percent units.
func SimulatePnL(entryPrice, currentPrice, sizeUSD, collateralUSD float64, dir Direction) (PnLResult, error) {
	if entryPrice <= 0 {
		return PnLResult{}, fmt.Errorf("entry price must be > 0: %w", ErrInvalidInput)
	}
	if currentPrice <= 0 {
		return PnLResult{}, fmt.Errorf("current price must be > 0: %w", ErrInvalidInput)
	}
	if collateralUSD <= 0 {
		return PnLResult{}, fmt.Errorf("collateral must be > 0: %w", ErrInvalidInput)
	}
	if sizeUSD <= 0 {
		return PnLResult{}, fmt.Errorf("size must be > 0: %w", ErrInvalidInput)
	}

	changePct := (currentPrice - entryPrice) / entryPrice
	if !dir.IsLong() {
		changePct = -changePct
	}
	pnlUSD := sizeUSD * changePct
	pnlPct := pnlUSD / collateralUSD * 100

	liq, err := ComputeLiquidationPrice(entryPrice, sizeUSD, collateralUSD, dir)
	if err != nil {
		return PnLResult{}, err
	}
	distancePct := math.Abs(currentPrice-liq) / currentPrice * 100

	return PnLResult{
		UnrealizedPnLUSD:         round2(pnlUSD),
		UnrealizedPnLPct:         round2(pnlPct),
		PriceChangePct:           round2(changePct * 100),
		LiquidationPrice:         round2(liq),
		DistanceToLiquidationPct: round2(distancePct),
		RiskTier:                 TierForLiquidationDistance(distancePct),
	}, nil
}
