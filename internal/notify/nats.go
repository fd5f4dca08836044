package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"twitterapi/internal/model"
)

// NATSBroker publishes notifications on per-receiver NATS subjects.
type NATSBroker struct {
	conn   *nats.Conn
	logger logrus.FieldLogger
}

// NewNATSBroker connects to url.
func NewNATSBroker(url string, logger logrus.FieldLogger) (*NATSBroker, error) {
	conn, err := nats.Connect(url,
		nats.Name("twitterapi"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.WithField("url", c.ConnectedUrl()).Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSBroker{conn: conn, logger: logger}, nil
}

func (b *NATSBroker) Publish(_ context.Context, n *model.Notification) error {
	if !b.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}
	payload, err := encode(n)
	if err != nil {
		return err
	}
	if err := b.conn.Publish(Subject(n.NotReceiverID), payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (b *NATSBroker) Subscribe(receiverID string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, subscriberBuffer)
	sub, err := b.conn.Subscribe(Subject(receiverID), func(msg *nats.Msg) {
		select {
		case ch <- msg.Data:
		default:
			b.logger.WithField("receiver_id", receiverID).Warn("notification subscriber is slow, dropping message")
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe notifications: %w", err)
	}
	cancel := func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			b.logger.WithError(err).Warn("nats unsubscribe failed")
		}
	}
	return ch, cancel, nil
}

// Close drains subscriptions and closes the connection.
func (b *NATSBroker) Close() error {
	return b.conn.Drain()
}
