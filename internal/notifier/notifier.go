// Package notifier fans ticket lifecycle events out to external listeners
// such as live position displays. Delivery is fire-and-forget with
// at-least-once semantics assumed on the consumer side; publish failures
// are logged and never propagate into ticket operations.
package notifier

import (
	"context"

	"github.com/spec-kit/queue-service/internal/events"
)

// Publisher delivers one lifecycle event to an external channel.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
	Close() error
}
