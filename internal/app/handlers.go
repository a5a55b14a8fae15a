package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gmx-trade-desk/internal/engine"
	"gmx-trade-desk/internal/journal"
	"gmx-trade-desk/internal/markets"
	"gmx-trade-desk/internal/orders"
	"gmx-trade-desk/internal/wallet"

	"go.uber.org/zap"
)

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/costs", a.handleCosts)
	mux.HandleFunc("POST /api/v1/plan", a.handlePlan)
	mux.HandleFunc("POST /api/v1/pnl", a.handlePnL)
	mux.HandleFunc("POST /api/v1/orders", a.handleBuildOrder)
	mux.HandleFunc("GET /api/v1/orders", a.handleGetOrders)
	mux.HandleFunc("GET /api/v1/markets", a.handleMarkets)
	mux.HandleFunc("POST /api/v1/wallet", a.handleWalletSetup)
	mux.HandleFunc("GET /api/v1/wallet", a.handleWalletInfo)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.prom != nil {
		mux.Handle("GET "+a.cfg.Metrics.Path, a.prom.Handler())
	}
	return mux
}

type costsRequest struct {
	Market    string  `json:"market"`
	SizeUSD   float64 `json:"size_usd"`
	Direction string  `json:"direction"`
	Chain     string  `json:"chain"`
}

type costBreakdown struct {
	OpeningFeeUSD  float64 `json:"opening_fee_usd"`
	PriceImpactUSD float64 `json:"estimated_price_impact_usd"`
	GasCostUSD     float64 `json:"estimated_gas_cost_usd"`
	TotalCostUSD   float64 `json:"total_estimated_cost_usd"`
}

type collateralRequirements struct {
	MinimumCollateralUSD     float64 `json:"minimum_collateral_usd"`
	RecommendedCollateralUSD float64 `json:"recommended_collateral_usd"`
	MaxLeverage              string  `json:"max_leverage"`
	RecommendedLeverage      string  `json:"recommended_leverage"`
}

type costsResponse struct {
	Market                 string                 `json:"market"`
	Direction              string                 `json:"direction"`
	PositionSizeUSD        float64                `json:"position_size_usd"`
	Chain                  string                 `json:"chain"`
	EstimatedCosts         costBreakdown          `json:"estimated_costs"`
	CollateralRequirements collateralRequirements `json:"collateral_requirements"`
}

func (a *App) handleCosts(w http.ResponseWriter, r *http.Request) {
	var req costsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	direction := engine.Long
	if req.Direction != "" {
		var err error
		direction, err = engine.ParseDirection(req.Direction)
		if err != nil {
			a.writeError(w, err)
			return
		}
	}
	trade := engine.TradeRequest{
		Market:        req.Market,
		Direction:     direction,
		SizeUSD:       req.SizeUSD,
		CollateralUSD: req.SizeUSD, // collateral is not an input here
		Chain:         req.Chain,
	}.Normalize(a.cfg.Trading.DefaultChain)
	if req.SizeUSD <= 0 {
		a.writeError(w, fmt.Errorf("size_usd must be > 0: %w", engine.ErrInvalidInput))
		return
	}
	estimate := engine.EstimateCosts(a.cfg.Trading, trade.SizeUSD, trade.Chain)
	a.metrics.CostQuotes.Inc()
	writeJSON(w, http.StatusOK, costsResponse{
		Market:          trade.Market + "/USD",
		Direction:       string(direction),
		PositionSizeUSD: trade.SizeUSD,
		Chain:           trade.Chain,
		EstimatedCosts: costBreakdown{
			OpeningFeeUSD:  estimate.OpeningFeeUSD,
			PriceImpactUSD: estimate.PriceImpactUSD,
			GasCostUSD:     estimate.GasCostUSD,
			TotalCostUSD:   estimate.TotalCostUSD,
		},
		CollateralRequirements: collateralRequirements{
			MinimumCollateralUSD:     estimate.MinCollateralUSD,
			RecommendedCollateralUSD: estimate.RecommendedCollateralUSD,
			MaxLeverage:              estimate.MaxLeverage,
			RecommendedLeverage:      estimate.RecommendedLeverage,
		},
	})
}

type planRequest struct {
	Market        string   `json:"market"`
	Direction     string   `json:"direction"`
	SizeUSD       float64  `json:"size_usd"`
	CollateralUSD float64  `json:"collateral_usd"`
	EntryPrice    *float64 `json:"entry_price"`
	StopLoss      *float64 `json:"stop_loss"`
	TakeProfit    *float64 `json:"take_profit"`
	Chain         string   `json:"chain"`
}

type planBody struct {
	Market           string   `json:"market"`
	Chain            string   `json:"chain"`
	Direction        string   `json:"direction"`
	PositionSizeUSD  float64  `json:"position_size_usd"`
	CollateralUSD    float64  `json:"collateral_usd"`
	Leverage         float64  `json:"leverage"`
	LeverageLabel    string   `json:"leverage_label"`
	EntryPrice       *float64 `json:"entry_price"`
	StopLoss         *float64 `json:"stop_loss"`
	TakeProfit       *float64 `json:"take_profit"`
	LiquidationPrice *float64 `json:"estimated_liquidation_price"`
}

type riskBody struct {
	LeverageRisk       string  `json:"leverage_risk"`
	PositionSizeRisk   string  `json:"position_size_risk"`
	CollateralRatioPct float64 `json:"collateral_ratio_pct"`
}

type planResponse struct {
	TradingPlan    planBody      `json:"trading_plan"`
	RiskAnalysis   riskBody      `json:"risk_analysis"`
	EstimatedCosts costBreakdown `json:"estimated_costs"`
}

func (a *App) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	direction, err := engine.ParseDirection(req.Direction)
	if err != nil {
		a.writeError(w, err)
		return
	}
	plan, err := engine.BuildTradingPlan(a.cfg.Trading, engine.TradeRequest{
		Market:        req.Market,
		Direction:     direction,
		SizeUSD:       req.SizeUSD,
		CollateralUSD: req.CollateralUSD,
		EntryPrice:    req.EntryPrice,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		Chain:         req.Chain,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.metrics.PlansBuilt.Inc()
	a.history.Enqueue(journal.RecordFromPlan(plan, time.Now().UTC()))
	writeJSON(w, http.StatusOK, planResponse{
		TradingPlan: planBody{
			Market:           plan.Pair,
			Chain:            plan.Chain,
			Direction:        string(plan.Direction),
			PositionSizeUSD:  plan.SizeUSD,
			CollateralUSD:    plan.CollateralUSD,
			Leverage:         plan.Leverage,
			LeverageLabel:    plan.LeverageLabel,
			EntryPrice:       plan.EntryPrice,
			StopLoss:         plan.StopLoss,
			TakeProfit:       plan.TakeProfit,
			LiquidationPrice: plan.LiquidationPrice,
		},
		RiskAnalysis: riskBody{
			LeverageRisk:       string(plan.Risk.LeverageRisk),
			PositionSizeRisk:   string(plan.Risk.PositionSizeRisk),
			CollateralRatioPct: plan.Risk.CollateralRatioPct,
		},
		EstimatedCosts: costBreakdown{
			OpeningFeeUSD:  plan.Costs.OpeningFeeUSD,
			PriceImpactUSD: plan.Costs.PriceImpactUSD,
			GasCostUSD:     plan.Costs.GasCostUSD,
			TotalCostUSD:   plan.Costs.TotalCostUSD,
		},
	})
}

type pnlRequest struct {
	Direction     string  `json:"direction"`
	EntryPrice    float64 `json:"entry_price"`
	CurrentPrice  float64 `json:"current_price"`
	SizeUSD       float64 `json:"size_usd"`
	CollateralUSD float64 `json:"collateral_usd"`
}

type pnlResponse struct {
	UnrealizedPnLUSD         float64 `json:"unrealized_pnl_usd"`
	UnrealizedPnLPct         float64 `json:"unrealized_pnl_pct"`
	PriceChangePct           float64 `json:"price_change_pct"`
	LiquidationPrice         float64 `json:"liquidation_price"`
	DistanceToLiquidationPct float64 `json:"distance_to_liquidation_pct"`
	RiskTier                 string  `json:"risk_tier"`
}

func (a *App) handlePnL(w http.ResponseWriter, r *http.Request) {
	var req pnlRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	direction, err := engine.ParseDirection(req.Direction)
	if err != nil {
		a.writeError(w, err)
		return
	}
	result, err := engine.SimulatePnL(req.EntryPrice, req.CurrentPrice, req.SizeUSD, req.CollateralUSD, direction)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.metrics.PnLSimulations.Inc()
	writeJSON(w, http.StatusOK, pnlResponse{
		UnrealizedPnLUSD:         result.UnrealizedPnLUSD,
		UnrealizedPnLPct:         result.UnrealizedPnLPct,
		PriceChangePct:           result.PriceChangePct,
		LiquidationPrice:         result.LiquidationPrice,
		DistanceToLiquidationPct: result.DistanceToLiquidationPct,
		RiskTier:                 string(result.RiskTier),
	})
}

type orderRequest struct {
	Kind          string  `json:"kind"`
	Market        string  `json:"market"`
	Chain         string  `json:"chain"`
	Direction     string  `json:"direction"`
	SizeUSD       float64 `json:"size_usd"`
	CollateralUSD float64 `json:"collateral_usd"`
	TokenIn       string  `json:"token_in"`
	TokenOut      string  `json:"token_out"`
	AmountIn      float64 `json:"amount_in"`
	AmountUSD     float64 `json:"amount_usd"`
	OrderKey      string  `json:"order_key"`
	DebugMode     *bool   `json:"debug_mode"`
}

type orderResponse struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	Market        string  `json:"market,omitempty"`
	MarketAddress string  `json:"market_address,omitempty"`
	Chain         string  `json:"chain"`
	Direction     string  `json:"direction,omitempty"`
	SizeUSD       float64 `json:"size_usd,omitempty"`
	CollateralUSD float64 `json:"collateral_usd,omitempty"`
	TokenIn       string  `json:"token_in,omitempty"`
	TokenOut      string  `json:"token_out,omitempty"`
	AmountIn      float64 `json:"amount_in,omitempty"`
	AmountUSD     float64 `json:"amount_usd,omitempty"`
	OrderKey      string  `json:"order_key,omitempty"`
	DebugMode     bool    `json:"debug_mode"`
	Status        string  `json:"status"`
	CreatedAt     int64   `json:"created_at"`
}

func (a *App) handleBuildOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	var direction engine.Direction
	if req.Direction != "" {
		var err error
		direction, err = engine.ParseDirection(req.Direction)
		if err != nil {
			a.writeError(w, err)
			return
		}
	}
	chain := req.Chain
	if chain == "" {
		chain = a.cfg.Trading.DefaultChain
	}
	// Debug mode stays on unless the caller explicitly turns it off.
	debug := a.cfg.Trading.DebugDefault()
	if req.DebugMode != nil {
		debug = *req.DebugMode
	}
	order, err := a.builder.Build(r.Context(), orders.Kind(req.Kind), orders.Params{
		Market:        req.Market,
		Chain:         chain,
		Direction:     direction,
		SizeUSD:       req.SizeUSD,
		CollateralUSD: req.CollateralUSD,
		TokenIn:       req.TokenIn,
		TokenOut:      req.TokenOut,
		AmountIn:      req.AmountIn,
		AmountUSD:     req.AmountUSD,
		OrderKey:      req.OrderKey,
	}, debug)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderToResponse(order))
}

func (a *App) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id := r.URL.Query().Get("id"); id != "" {
		order, ok, err := a.journal.Get(ctx, id)
		if err != nil {
			a.writeError(w, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		writeJSON(w, http.StatusOK, orderToResponse(order))
		return
	}
	list, err := a.journal.List(ctx)
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(list))
	for _, order := range list {
		out = append(out, orderToResponse(order))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func orderToResponse(order orders.Order) orderResponse {
	return orderResponse{
		ID:            order.ID,
		Kind:          string(order.Kind),
		Market:        order.Market,
		MarketAddress: order.MarketAddress,
		Chain:         order.Chain,
		Direction:     string(order.Direction),
		SizeUSD:       order.SizeUSD,
		CollateralUSD: order.CollateralUSD,
		TokenIn:       order.TokenIn,
		TokenOut:      order.TokenOut,
		AmountIn:      order.AmountIn,
		AmountUSD:     order.AmountUSD,
		OrderKey:      order.OrderKey,
		DebugMode:     order.DebugMode,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
	}
}

type marketResponse struct {
	Symbol          string `json:"symbol"`
	Pair            string `json:"pair"`
	Address         string `json:"address"`
	Description     string `json:"description"`
	IndexToken      string `json:"index_token"`
	LongCollateral  string `json:"long_collateral"`
	ShortCollateral string `json:"short_collateral"`
}

func (a *App) handleMarkets(w http.ResponseWriter, r *http.Request) {
	chain := r.URL.Query().Get("chain")
	if chain == "" {
		chain = a.cfg.Trading.DefaultChain
	}
	list := a.registry.List(chain)
	out := make([]marketResponse, 0, len(list))
	for _, m := range list {
		out = append(out, marketResponse{
			Symbol:          m.Symbol,
			Pair:            m.Symbol + "/USD",
			Address:         m.Address,
			Description:     m.Description,
			IndexToken:      m.IndexToken,
			LongCollateral:  m.LongCollateral,
			ShortCollateral: m.ShortCollateral,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"chain": chain, "markets": out})
}

type walletSetupRequest struct {
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
	Chain      string `json:"chain"`
}

type walletResponse struct {
	Address       string            `json:"address"`
	Chain         string            `json:"chain,omitempty"`
	KeyConfigured bool              `json:"key_configured"`
	RPCs          map[string]string `json:"rpcs"`
}

func (a *App) handleWalletSetup(w http.ResponseWriter, r *http.Request) {
	var req walletSetupRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	chain := req.Chain
	if chain == "" {
		chain = a.cfg.Trading.DefaultChain
	}
	info, err := a.wallet.Setup(r.Context(), req.Address, req.PrivateKey, chain)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, a.walletToResponse(info))
}

func (a *App) handleWalletInfo(w http.ResponseWriter, r *http.Request) {
	info, err := a.wallet.Info(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.walletToResponse(info))
}

func (a *App) walletToResponse(info wallet.Info) walletResponse {
	rpcs := make(map[string]string, len(a.cfg.Trading.Chains))
	for name, chain := range a.cfg.Trading.Chains {
		rpcs[name] = chain.RPC
	}
	return walletResponse{
		Address:       info.Address,
		Chain:         info.Chain,
		KeyConfigured: info.KeyConfigured,
		RPCs:          rpcs,
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %v: %w", err, engine.ErrInvalidInput)
	}
	return nil
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidInput), errors.Is(err, engine.ErrDivisionByZero):
		status = http.StatusBadRequest
	case errors.Is(err, markets.ErrNotFound), errors.Is(err, wallet.ErrNotConfigured):
		status = http.StatusNotFound
	case errors.Is(err, orders.ErrWalletNotConfigured):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		a.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
