package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/techaway/backend/internal/events"
)

// NotificationService records domain events on the audit log. It subscribes
// to the dispatcher; actual customer-facing mail is sent inline by the
// originating services, so this stays a lightweight observer.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger}
}

// Register subscribes the service to every event type it observes.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventOrderCreated,
		events.EventOrderCompleted,
		events.EventOrderCancelled,
		events.EventUserSignedUp,
		events.EventSessionsRevoked,
		events.EventTicketStatusMoved,
	} {
		dispatcher.Subscribe(eventType, s.handle)
	}
}

func (s *NotificationService) handle(_ context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		payload = []byte("{}")
	}
	s.logger.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Time("timestamp", event.Timestamp),
		zap.ByteString("payload", payload),
	)
	return nil
}
