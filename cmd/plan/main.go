package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gmx-trade-desk/internal/config"
	"gmx-trade-desk/internal/engine"
)

// One-shot plan builder: computes a trading plan from flags and prints it as
// JSON, without starting the desk.
func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	market := flag.String("market", "ETH", "market symbol")
	direction := flag.String("direction", "long", "position direction (long or short)")
	size := flag.Float64("size", 0, "position size in USD")
	collateral := flag.Float64("collateral", 0, "collateral in USD")
	entry := flag.Float64("entry", 0, "entry price (0 = not fixed)")
	stopLoss := flag.Float64("stop-loss", 0, "stop loss price (0 = none)")
	takeProfit := flag.Float64("take-profit", 0, "take profit price (0 = none)")
	chain := flag.String("chain", "", "chain (default from config)")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	dir, err := engine.ParseDirection(*direction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	req := engine.TradeRequest{
		Market:        *market,
		Direction:     dir,
		SizeUSD:       *size,
		CollateralUSD: *collateral,
		Chain:         *chain,
	}
	if *entry > 0 {
		req.EntryPrice = entry
	}
	if *stopLoss > 0 {
		req.StopLoss = stopLoss
	}
	if *takeProfit > 0 {
		req.TakeProfit = takeProfit
	}

	plan, err := engine.BuildTradingPlan(cfg.Trading, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
