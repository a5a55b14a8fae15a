package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gmx-trade-desk/internal/engine"
	"gmx-trade-desk/internal/markets"
	"gmx-trade-desk/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrWalletNotConfigured = errors.New("wallet not configured")

type Kind string

const (
	KindIncrease        Kind = "increase"
	KindDecrease        Kind = "decrease"
	KindSwap            Kind = "swap"
	KindAddLiquidity    Kind = "add_liquidity"
	KindRemoveLiquidity Kind = "remove_liquidity"
	KindCancel          Kind = "cancel"
)

type Status string

const (
	// StatusCreated marks a debug-mode order: fully computed, never submitted.
	StatusCreated Status = "created"
	// StatusPending marks an order handed to the external submitter.
	StatusPending Status = "pending"
)

// Params carries the kind-specific payload. Fields irrelevant to a kind are
// ignored after validation.
type Params struct {
	Market        string
	Chain         string
	Direction     engine.Direction
	SizeUSD       float64
	CollateralUSD float64
	TokenIn       string
	TokenOut      string
	AmountIn      float64
	AmountUSD     float64
	OrderKey      string
}

// Order is the assembled record. It is constructed once and never mutated;
// a pending order's later execution state belongs to the submitter.
type Order struct {
	ID            string           `msgpack:"id"`
	Kind          Kind             `msgpack:"kind"`
	Market        string           `msgpack:"market,omitempty"`
	MarketAddress string           `msgpack:"market_address,omitempty"`
	Chain         string           `msgpack:"chain"`
	Direction     engine.Direction `msgpack:"direction,omitempty"`
	SizeUSD       float64          `msgpack:"size_usd,omitempty"`
	CollateralUSD float64          `msgpack:"collateral_usd,omitempty"`
	TokenIn       string           `msgpack:"token_in,omitempty"`
	TokenOut      string           `msgpack:"token_out,omitempty"`
	AmountIn      float64          `msgpack:"amount_in,omitempty"`
	AmountUSD     float64          `msgpack:"amount_usd,omitempty"`
	OrderKey      string           `msgpack:"order_key,omitempty"`
	DebugMode     bool             `msgpack:"debug_mode"`
	Status        Status           `msgpack:"status"`
	CreatedAt     int64            `msgpack:"created_at"`
}

// WalletGate reports whether order-producing calls may run.
type WalletGate interface {
	IsConfigured(ctx context.Context) (bool, error)
}

// Resolver maps a market symbol to its on-chain market record.
type Resolver interface {
	Resolve(symbol, chain string) (markets.Market, error)
}

// Submitter owns everything past "pending": signing, transport, execution.
type Submitter interface {
	Submit(ctx context.Context, order Order) error
}

type Builder struct {
	wallet    WalletGate
	resolver  Resolver
	submitter Submitter
	journal   *Journal
	metrics   *metrics.Metrics
	log       *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewBuilder(wallet WalletGate, resolver Resolver, submitter Submitter, journal *Journal, m *metrics.Metrics, log *zap.Logger) *Builder {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Builder{
		wallet:    wallet,
		resolver:  resolver,
		submitter: submitter,
		journal:   journal,
		metrics:   m,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Build assembles an order record. With debug true (the default at every call
// site) the order is marked created and guaranteed never to reach the
// submitter; with debug false it is marked pending and handed off.
func (b *Builder) Build(ctx context.Context, kind Kind, p Params, debug bool) (Order, error) {
	p.Market = strings.ToUpper(strings.TrimSpace(p.Market))
	p.Chain = strings.ToLower(strings.TrimSpace(p.Chain))
	if err := validateParams(kind, p); err != nil {
		b.metrics.OrdersRejected.Inc()
		return Order{}, err
	}

	configured, err := b.wallet.IsConfigured(ctx)
	if err != nil {
		return Order{}, err
	}
	if !configured {
		b.metrics.OrdersRejected.Inc()
		return Order{}, fmt.Errorf("%s order: %w", kind, ErrWalletNotConfigured)
	}

	order := Order{
		ID:        b.newID(),
		Kind:      kind,
		Chain:     p.Chain,
		DebugMode: debug,
		CreatedAt: b.now().Unix(),
	}
	switch kind {
	case KindIncrease, KindDecrease:
		market, err := b.resolver.Resolve(p.Market, p.Chain)
		if err != nil {
			b.metrics.OrdersRejected.Inc()
			return Order{}, err
		}
		order.Market = market.Symbol
		order.MarketAddress = market.Address
		order.Direction = p.Direction
		order.SizeUSD = p.SizeUSD
		order.CollateralUSD = p.CollateralUSD
	case KindAddLiquidity, KindRemoveLiquidity:
		market, err := b.resolver.Resolve(p.Market, p.Chain)
		if err != nil {
			b.metrics.OrdersRejected.Inc()
			return Order{}, err
		}
		order.Market = market.Symbol
		order.MarketAddress = market.Address
		order.AmountUSD = p.AmountUSD
	case KindSwap:
		order.TokenIn = strings.ToUpper(p.TokenIn)
		order.TokenOut = strings.ToUpper(p.TokenOut)
		order.AmountIn = p.AmountIn
	case KindCancel:
		order.OrderKey = p.OrderKey
	}

	if debug {
		order.Status = StatusCreated
	} else {
		order.Status = StatusPending
		if b.submitter != nil {
			if err := b.submitter.Submit(ctx, order); err != nil {
				b.metrics.OrdersRejected.Inc()
				return Order{}, fmt.Errorf("submit %s order: %w", kind, err)
			}
		}
	}

	if b.journal != nil {
		if err := b.journal.Put(ctx, order); err != nil {
			b.log.Warn("failed to persist order", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	if debug {
		b.metrics.OrdersCreated.Inc()
	} else {
		b.metrics.OrdersPending.Inc()
	}
	b.log.Info("order built",
		zap.String("order_id", order.ID),
		zap.String("kind", string(kind)),
		zap.String("status", string(order.Status)),
		zap.Bool("debug_mode", debug),
	)
	return order, nil
}

func validateParams(kind Kind, p Params) error {
	switch kind {
	case KindIncrease, KindDecrease:
		if p.Market == "" {
			return fmt.Errorf("%s order requires a market: %w", kind, engine.ErrInvalidInput)
		}
		if p.SizeUSD <= 0 {
			return fmt.Errorf("%s order size_usd must be > 0: %w", kind, engine.ErrInvalidInput)
		}
		if kind == KindIncrease && p.CollateralUSD <= 0 {
			return fmt.Errorf("increase order collateral_usd must be > 0: %w", engine.ErrInvalidInput)
		}
		switch p.Direction {
		case engine.Long, engine.Short:
		default:
			return fmt.Errorf("%s order direction %q: %w", kind, string(p.Direction), engine.ErrInvalidInput)
		}
	case KindAddLiquidity, KindRemoveLiquidity:
		if p.Market == "" {
			return fmt.Errorf("%s order requires a market: %w", kind, engine.ErrInvalidInput)
		}
		if p.AmountUSD <= 0 {
			return fmt.Errorf("%s order amount_usd must be > 0: %w", kind, engine.ErrInvalidInput)
		}
	case KindSwap:
		if p.TokenIn == "" || p.TokenOut == "" {
			return fmt.Errorf("swap order requires token_in and token_out: %w", engine.ErrInvalidInput)
		}
		if p.AmountIn <= 0 {
			return fmt.Errorf("swap order amount_in must be > 0: %w", engine.ErrInvalidInput)
		}
	case KindCancel:
		if strings.TrimSpace(p.OrderKey) == "" {
			return fmt.Errorf("cancel order requires an order_key: %w", engine.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("unknown order kind %q: %w", string(kind), engine.ErrInvalidInput)
	}
	return nil
}
