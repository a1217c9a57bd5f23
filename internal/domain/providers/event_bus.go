package providers

import (
	"context"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to review
// events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ReviewEvent) error

	// Subscribe subscribes to events on a channel; the returned channel is
	// closed when ctx is cancelled
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ReviewEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel constants.
const (
	// EventChannelReviews is the channel carrying all review mutations
	EventChannelReviews = "reviews:updates"

	// EventChannelParkPrefix is the prefix for park-specific channels
	EventChannelParkPrefix = "park:"
)

// GetParkChannel returns the channel name for a specific park.
func GetParkChannel(parkID string) string {
	return EventChannelParkPrefix + parkID
}
