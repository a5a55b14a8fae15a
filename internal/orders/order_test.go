package orders

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"gmx-trade-desk/internal/engine"
	"gmx-trade-desk/internal/markets"

	"go.uber.org/zap"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok, nil
}

func (m *memoryStore) Set(ctx context.Context, key, value string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for key, value := range m.data {
		if strings.HasPrefix(key, prefix) {
			out[key] = value
		}
	}
	return out, nil
}

func (m *memoryStore) Close() error { return nil }

type stubWallet struct {
	configured bool
}

func (s stubWallet) IsConfigured(ctx context.Context) (bool, error) {
	_ = ctx
	return s.configured, nil
}

type stubSubmitter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubSubmitter) Submit(ctx context.Context, order Order) error {
	_ = ctx
	_ = order
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func newTestBuilder(configured bool, submitter *stubSubmitter, store *memoryStore) *Builder {
	var journal *Journal
	if store != nil {
		journal = NewJournal(store)
	}
	b := NewBuilder(stubWallet{configured: configured}, markets.NewRegistry(), submitter, journal, nil, zap.NewNop())
	b.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	seq := 0
	b.newID = func() string {
		seq++
		return "order-" + strconv.Itoa(seq)
	}
	return b
}

func TestBuildDebugOrderNeverSubmits(t *testing.T) {
	submitter := &stubSubmitter{}
	b := newTestBuilder(true, submitter, nil)

	order, err := b.Build(context.Background(), KindIncrease, Params{
		Market:        "ETH",
		Chain:         "arbitrum",
		Direction:     engine.Long,
		SizeUSD:       1000,
		CollateralUSD: 100,
	}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != StatusCreated {
		t.Fatalf("expected status created, got %s", order.Status)
	}
	if !order.DebugMode {
		t.Fatalf("expected debug mode set")
	}
	if submitter.calls != 0 {
		t.Fatalf("expected zero submitter calls, got %d", submitter.calls)
	}
	if order.MarketAddress == "" {
		t.Fatalf("expected resolved market address")
	}
	if order.CreatedAt != 1_700_000_000 {
		t.Fatalf("unexpected created at %d", order.CreatedAt)
	}
}

func TestBuildLiveOrderHandsOff(t *testing.T) {
	submitter := &stubSubmitter{}
	b := newTestBuilder(true, submitter, nil)

	order, err := b.Build(context.Background(), KindDecrease, Params{
		Market:    "BTC",
		Chain:     "arbitrum",
		Direction: engine.Short,
		SizeUSD:   500,
	}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != StatusPending {
		t.Fatalf("expected status pending, got %s", order.Status)
	}
	if submitter.calls != 1 {
		t.Fatalf("expected one submitter call, got %d", submitter.calls)
	}
}

func TestBuildLiveOrderSubmitFailure(t *testing.T) {
	submitter := &stubSubmitter{err: errors.New("venue offline")}
	b := newTestBuilder(true, submitter, nil)

	_, err := b.Build(context.Background(), KindSwap, Params{
		TokenIn:  "USDC",
		TokenOut: "ETH",
		AmountIn: 1000,
	}, false)
	if err == nil {
		t.Fatalf("expected submit failure to surface")
	}
}

func TestBuildCancelRequiresWallet(t *testing.T) {
	submitter := &stubSubmitter{}
	b := newTestBuilder(false, submitter, nil)

	_, err := b.Build(context.Background(), KindCancel, Params{OrderKey: "k1"}, true)
	if !errors.Is(err, ErrWalletNotConfigured) {
		t.Fatalf("expected wallet not configured, got %v", err)
	}
	if submitter.calls != 0 {
		t.Fatalf("expected zero submitter calls, got %d", submitter.calls)
	}
}

func TestBuildUnknownMarket(t *testing.T) {
	b := newTestBuilder(true, &stubSubmitter{}, nil)
	_, err := b.Build(context.Background(), KindIncrease, Params{
		Market:        "DOGE",
		Chain:         "arbitrum",
		Direction:     engine.Long,
		SizeUSD:       1000,
		CollateralUSD: 100,
	}, true)
	if !errors.Is(err, markets.ErrNotFound) {
		t.Fatalf("expected market not found, got %v", err)
	}
}

func TestValidateParamsPerKind(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		params Params
	}{
		{"increase missing direction", KindIncrease, Params{Market: "ETH", SizeUSD: 1, CollateralUSD: 1}},
		{"increase missing collateral", KindIncrease, Params{Market: "ETH", Direction: engine.Long, SizeUSD: 1}},
		{"decrease zero size", KindDecrease, Params{Market: "ETH", Direction: engine.Long}},
		{"swap missing tokens", KindSwap, Params{AmountIn: 1}},
		{"swap zero amount", KindSwap, Params{TokenIn: "USDC", TokenOut: "ETH"}},
		{"add liquidity zero amount", KindAddLiquidity, Params{Market: "ETH"}},
		{"remove liquidity missing market", KindRemoveLiquidity, Params{AmountUSD: 1}},
		{"cancel missing key", KindCancel, Params{}},
		{"unknown kind", Kind("close"), Params{}},
	}
	b := newTestBuilder(true, &stubSubmitter{}, nil)
	for _, tc := range cases {
		if _, err := b.Build(context.Background(), tc.kind, tc.params, true); !errors.Is(err, engine.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}
}

func TestJournalRoundTrip(t *testing.T) {
	store := newMemoryStore()
	b := newTestBuilder(true, &stubSubmitter{}, store)

	ctx := context.Background()
	first, err := b.Build(ctx, KindIncrease, Params{
		Market:        "ETH",
		Chain:         "arbitrum",
		Direction:     engine.Long,
		SizeUSD:       1000,
		CollateralUSD: 100,
	}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := b.Build(ctx, KindCancel, Params{OrderKey: "k1"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	journal := NewJournal(store)
	got, ok, err := journal.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected journaled order")
	}
	if got != first {
		t.Fatalf("journal round trip mismatch: %+v vs %+v", got, first)
	}

	list, err := journal.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 journaled orders, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("unexpected list order: %s, %s", list[0].ID, list[1].ID)
	}

	if _, ok, err := journal.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing order, got ok=%v err=%v", ok, err)
	}
}
