package engine

// TierForLiquidationDistance maps distance-to-liquidation (percent of current
// price) to a tier. Bands are evaluated tightest first.
func TierForLiquidationDistance(distancePct float64) RiskTier {
	switch {
	case distancePct < 5:
		return RiskCritical
	case distancePct < 15:
		return RiskHigh
	case distancePct < 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ClassifyRisk is the pre-trade classification used by the trading-plan path,
// where no current price exists yet: leverage and notional size stand in for
// live liquidation distance.
func ClassifyRisk(leverage, sizeUSD, collateralUSD float64) RiskAnalysis {
	leverageRisk := RiskLow
	switch {
	case leverage > 20:
		leverageRisk = RiskHigh
	case leverage > 10:
		leverageRisk = RiskMedium
	}

	sizeRisk := RiskLow
	switch {
	case sizeUSD > 50_000:
		sizeRisk = RiskHigh
	case sizeUSD > 10_000:
		sizeRisk = RiskMedium
	}

	ratio := 0.0
	if sizeUSD > 0 {
		ratio = collateralUSD / sizeUSD * 100
	}
	return RiskAnalysis{
		LeverageRisk:       leverageRisk,
		PositionSizeRisk:   sizeRisk,
		CollateralRatioPct: round2(ratio),
	}
}
