package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	CostQuotes     Counter
	PlansBuilt     Counter
	PnLSimulations Counter
	OrdersCreated  Counter
	OrdersPending  Counter
	OrdersRejected Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		CostQuotes:     n,
		PlansBuilt:     n,
		PnLSimulations: n,
		OrdersCreated:  n,
		OrdersPending:  n,
		OrdersRejected: n,
	}
}
