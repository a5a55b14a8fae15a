package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "gmx_trade_desk"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics *Metrics

	registry *prometheus.Registry
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	costQuotes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "cost_quotes_total",
		Help:      "Total number of cost estimates served.",
	})
	plansBuilt := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "plans_built_total",
		Help:      "Total number of trading plans built.",
	})
	pnlSimulations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "pnl_simulations_total",
		Help:      "Total number of PnL simulations served.",
	})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders built in debug mode.",
	})
	ordersPending := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_pending_total",
		Help:      "Total number of orders handed to the submitter.",
	})
	ordersRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_rejected_total",
		Help:      "Total number of order builds rejected.",
	})

	registry.MustRegister(costQuotes, plansBuilt, pnlSimulations, ordersCreated, ordersPending, ordersRejected)

	return &Prometheus{
		Metrics: &Metrics{
			CostQuotes:     promCounter{costQuotes},
			PlansBuilt:     promCounter{plansBuilt},
			PnLSimulations: promCounter{pnlSimulations},
			OrdersCreated:  promCounter{ordersCreated},
			OrdersPending:  promCounter{ordersPending},
			OrdersRejected: promCounter{ordersRejected},
		},
		registry: registry,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
