package engine

import "fmt"

// liquidationThreshold is the fraction of collateral consumed at forced
// closure in the simplified margin model. The venue's published planning
// numbers use exactly 0.9; changing it breaks output parity.
const liquidationThreshold = 0.9

func ComputeLeverage(sizeUSD, collateralUSD float64) (float64, error) {
	if collateralUSD == 0 {
		return 0, fmt.Errorf("leverage: %w", ErrDivisionByZero)
	}
	return sizeUSD / collateralUSD, nil
}

// ComputeLiquidationPrice estimates the price at which losses consume 90% of
// collateral. Longs liquidate below entry, shorts above.
func ComputeLiquidationPrice(entryPrice, sizeUSD, collateralUSD float64, dir Direction) (float64, error) {
	if entryPrice <= 0 {
		return 0, fmt.Errorf("entry price must be > 0: %w", ErrInvalidInput)
	}
	if sizeUSD <= 0 || collateralUSD <= 0 {
		return 0, fmt.Errorf("size and collateral must be > 0: %w", ErrInvalidInput)
	}
	margin := (collateralUSD / sizeUSD) * liquidationThreshold
	if dir.IsLong() {
		return entryPrice * (1 - margin), nil
	}
	return entryPrice * (1 + margin), nil
}

// Profile derives leverage and, when an entry price has been fixed, the
// liquidation price for the request. The request must already be validated.
func Profile(req TradeRequest) (LeverageProfile, error) {
	leverage, err := ComputeLeverage(req.SizeUSD, req.CollateralUSD)
	if err != nil {
		return LeverageProfile{}, err
	}
	profile := LeverageProfile{Leverage: leverage}
	if req.EntryPrice != nil {
		liq, err := ComputeLiquidationPrice(*req.EntryPrice, req.SizeUSD, req.CollateralUSD, req.Direction)
		if err != nil {
			return LeverageProfile{}, err
		}
		rounded := round2(liq)
		profile.LiquidationPrice = &rounded
	}
	return profile, nil
}
