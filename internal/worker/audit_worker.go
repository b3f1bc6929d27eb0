package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/coworking/internal/events"
)

// StartAuditWorker writes every account event to the audit log.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	audit := logger.Named("audit")
	handler := func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(event.Type)),
			zap.String("domain", event.Domain.String()),
			zap.Time("at", event.Timestamp),
		}
		if event.Email != "" {
			fields = append(fields, zap.String("email", event.Email))
		} else {
			fields = append(fields, zap.String("subject_id", event.SubjectID.String()))
		}
		audit.Info("account event", fields...)
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventAccountRegistered,
		events.EventPasswordChanged,
		events.EventLoginThrottled,
		events.EventAccountDeleted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
