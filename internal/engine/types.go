package engine

import (
	"fmt"
	"strings"
)

type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ParseDirection accepts the wire spellings "long"/"short" case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long":
		return Long, nil
	case "short":
		return Short, nil
	default:
		return "", fmt.Errorf("direction %q: %w", s, ErrInvalidInput)
	}
}

func (d Direction) IsLong() bool {
	return d == Long
}

type RiskTier string

const (
	RiskLow      RiskTier = "LOW"
	RiskMedium   RiskTier = "MEDIUM"
	RiskHigh     RiskTier = "HIGH"
	RiskCritical RiskTier = "CRITICAL"
)

// TradeRequest is the immutable input to every planning computation.
// EntryPrice and CurrentPrice are nil until the caller has fixed them.
type TradeRequest struct {
	Market        string
	Direction     Direction
	SizeUSD       float64
	CollateralUSD float64
	EntryPrice    *float64
	CurrentPrice  *float64
	StopLoss      *float64
	TakeProfit    *float64
	Chain         string
}

// Normalize upper-cases the market symbol and lower-cases the chain,
// falling back to the configured default chain.
func (r TradeRequest) Normalize(defaultChain string) TradeRequest {
	r.Market = strings.ToUpper(strings.TrimSpace(r.Market))
	r.Chain = strings.ToLower(strings.TrimSpace(r.Chain))
	if r.Chain == "" {
		r.Chain = defaultChain
	}
	return r
}

func (r TradeRequest) Validate() error {
	if r.SizeUSD <= 0 {
		return fmt.Errorf("size_usd must be > 0: %w", ErrInvalidInput)
	}
	if r.CollateralUSD <= 0 {
		return fmt.Errorf("collateral_usd must be > 0: %w", ErrInvalidInput)
	}
	if r.EntryPrice != nil && *r.EntryPrice <= 0 {
		return fmt.Errorf("entry_price must be > 0: %w", ErrInvalidInput)
	}
	if r.CurrentPrice != nil && *r.CurrentPrice <= 0 {
		return fmt.Errorf("current_price must be > 0: %w", ErrInvalidInput)
	}
	switch r.Direction {
	case Long, Short:
	default:
		return fmt.Errorf("direction %q: %w", string(r.Direction), ErrInvalidInput)
	}
	return nil
}

type CostEstimate struct {
	OpeningFeeUSD            float64
	PriceImpactUSD           float64
	GasCostUSD               float64
	TotalCostUSD             float64
	MinCollateralUSD         float64
	RecommendedCollateralUSD float64
	MaxLeverage              string
	RecommendedLeverage      string
}

type LeverageProfile struct {
	Leverage         float64
	LiquidationPrice *float64
}

type PnLResult struct {
	UnrealizedPnLUSD         float64
	UnrealizedPnLPct         float64
	PriceChangePct           float64
	LiquidationPrice         float64
	DistanceToLiquidationPct float64
	RiskTier                 RiskTier
}

// RiskAnalysis is the pre-trade classification used when no current price is
// available yet. Leverage and size tiers are reported independently.
type RiskAnalysis struct {
	LeverageRisk       RiskTier
	PositionSizeRisk   RiskTier
	CollateralRatioPct float64
}

type TradingPlan struct {
	Market           string
	Pair             string
	Chain            string
	Direction        Direction
	SizeUSD          float64
	CollateralUSD    float64
	Leverage         float64
	LeverageLabel    string
	EntryPrice       *float64
	StopLoss         *float64
	TakeProfit       *float64
	LiquidationPrice *float64
	Risk             RiskAnalysis
	Costs            CostEstimate
}
