package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/deployment-service/internal/events"
)

// publishEvent stamps and fires an event; delivery failures are the
// subscribers' concern.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = dispatcher.Publish(ctx, event)
}
