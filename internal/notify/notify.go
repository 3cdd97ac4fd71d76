package notify

import (
	"context"

	"github.com/rn1737/cargobooking/internal/kafka"
	"go.uber.org/zap"
)

// Notifier is the demo notification sink for the worker: it records what
// would be sent to the shipper for each lifecycle event.
type Notifier struct {
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, event kafka.BookingEvent) error {
	n.logger.Info("shipper notification",
		zap.String("event", event.Type),
		zap.String("ref_id", event.RefID),
		zap.String("origin", event.Origin),
		zap.String("destination", event.Destination),
		zap.String("status", event.Status))
	return nil
}
