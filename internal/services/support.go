package services

import (
	"context"

	"go.uber.org/zap"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/events"
	"mandi-backend/internal/metrics"
)

// publish delivers event after commit. Failures are counted and logged only.
func publish(ctx context.Context, p events.Publisher, log *zap.Logger, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		metrics.EventsPublishFailed.Inc()
		log.Warn("event not published", zap.String("type", event.Type), zap.Error(err))
	}
}

// logFailure logs unexpected errors. Classified client errors are not logged.
func logFailure(log *zap.Logger, op string, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		log.Error(op+" failed", zap.Error(err))
	}
}
