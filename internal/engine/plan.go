package engine

import (
	"fmt"

	"gmx-trade-desk/internal/config"
)

// BuildTradingPlan assembles the full pre-trade picture for a request:
// leverage profile, risk classification, and venue cost estimate. It is a
// pure computation; nothing is reserved or submitted.
func BuildTradingPlan(cfg config.TradingConfig, req TradeRequest) (TradingPlan, error) {
	req = req.Normalize(cfg.DefaultChain)
	if req.Market == "" {
		return TradingPlan{}, fmt.Errorf("market is required: %w", ErrInvalidInput)
	}
	if err := req.Validate(); err != nil {
		return TradingPlan{}, err
	}
	if req.StopLoss != nil && *req.StopLoss <= 0 {
		return TradingPlan{}, fmt.Errorf("stop_loss must be > 0: %w", ErrInvalidInput)
	}
	if req.TakeProfit != nil && *req.TakeProfit <= 0 {
		return TradingPlan{}, fmt.Errorf("take_profit must be > 0: %w", ErrInvalidInput)
	}

	profile, err := Profile(req)
	if err != nil {
		return TradingPlan{}, err
	}

	return TradingPlan{
		Market:           req.Market,
		Pair:             req.Market + "/USD",
		Chain:            req.Chain,
		Direction:        req.Direction,
		SizeUSD:          round2(req.SizeUSD),
		CollateralUSD:    round2(req.CollateralUSD),
		Leverage:         round2(profile.Leverage),
		LeverageLabel:    fmt.Sprintf("%.1fx", profile.Leverage),
		EntryPrice:       req.EntryPrice,
		StopLoss:         req.StopLoss,
		TakeProfit:       req.TakeProfit,
		LiquidationPrice: profile.LiquidationPrice,
		Risk:             ClassifyRisk(profile.Leverage, req.SizeUSD, req.CollateralUSD),
		Costs:            EstimateCosts(cfg, req.SizeUSD, req.Chain),
	}, nil
}
