package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/notifier"
)

const notifyTimeout = 5 * time.Second

// NotificationService forwards ticket lifecycle events to the configured
// external publishers. Delivery happens off the request goroutine and
// failures are logged, never returned: ticket creation must not block on
// notification delivery.
type NotificationService struct {
	dispatcher events.Dispatcher
	publishers []notifier.Publisher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publishers []notifier.Publisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publishers: publishers,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to the lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketIssued, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketEvent)
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	n.logger.Debug("ticket event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("service_id", event.ServiceID),
		zap.Int("ticket_number", event.TicketNumber),
		zap.String("status", string(event.Status)))

	for _, pub := range n.publishers {
		go n.forward(pub, event)
	}
	return nil
}

func (n *NotificationService) forward(pub notifier.Publisher, event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := pub.Publish(ctx, event); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}
