package engine

import (
	"math"

	"gmx-trade-desk/internal/config"
)

// Venue fee constants. These are the rough estimates GMX publishes for
// typical fills; they are kept verbatim so quotes stay comparable across
// releases, not re-derived from a pricing model.
const (
	openingFeeRate        = 0.0006
	priceImpactRateSmall  = 0.0001
	priceImpactRateLarge  = 0.0005
	priceImpactTierUSD    = 100_000
	minCollateralRate     = 0.01
	recommendedCollateral = 0.10
)

// EstimateCosts quotes the cost of opening a position of sizeUSD on chain.
// Price impact is a step function: the large-order rate applies at and above
// the tier boundary. Gas is a per-chain configured constant.
func EstimateCosts(cfg config.TradingConfig, sizeUSD float64, chain string) CostEstimate {
	openingFee := sizeUSD * openingFeeRate
	impact := sizeUSD * priceImpactRateSmall
	if sizeUSD >= priceImpactTierUSD {
		impact = sizeUSD * priceImpactRateLarge
	}
	gas := cfg.GasCostUSD(chain)
	return CostEstimate{
		OpeningFeeUSD:            round2(openingFee),
		PriceImpactUSD:           round2(impact),
		GasCostUSD:               round2(gas),
		TotalCostUSD:             round2(openingFee + impact + gas),
		MinCollateralUSD:         round2(sizeUSD * minCollateralRate),
		RecommendedCollateralUSD: round2(sizeUSD * recommendedCollateral),
		MaxLeverage:              cfg.MaxLeverageLabel,
		RecommendedLeverage:      cfg.RecommendedLeverage,
	}
}

// round2 applies the 2-decimal presentation rounding used at every output
// boundary. Intermediate arithmetic always runs on unrounded values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
