package orders

import (
	"context"

	"go.uber.org/zap"
)

// LogSubmitter is the handoff point when no real submitter is wired: it
// acknowledges the order and leaves execution to whatever drains the journal.
type LogSubmitter struct {
	log *zap.Logger
}

func NewLogSubmitter(log *zap.Logger) *LogSubmitter {
	return &LogSubmitter{log: log}
}

func (s *LogSubmitter) Submit(ctx context.Context, order Order) error {
	_ = ctx
	s.log.Info("order handed off for submission",
		zap.String("order_id", order.ID),
		zap.String("kind", string(order.Kind)),
		zap.String("chain", order.Chain),
	)
	return nil
}
