package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"twitterapi/internal/model"
)

// subscriberBuffer is the number of undelivered messages held per subscriber.
// Messages beyond it are dropped for that subscriber.
const subscriberBuffer = 16

// Broker fans out newly created notifications to live subscribers of the
// receiving user.
type Broker interface {
	Publish(ctx context.Context, n *model.Notification) error
	// Subscribe returns a channel of JSON-encoded notifications addressed to
	// receiverID and a func that ends the subscription. The channel is never
	// closed.
	Subscribe(receiverID string) (<-chan []byte, func(), error)
	Close() error
}

// Subject is the NATS subject notifications for receiverID are published on.
func Subject(receiverID string) string {
	return fmt.Sprintf("notifications.%s", receiverID)
}

func encode(n *model.Notification) ([]byte, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return payload, nil
}
