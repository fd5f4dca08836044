package notify

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"twitterapi/internal/model"
)

// MemoryBroker delivers notifications to subscribers in the same process.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan []byte]struct{}
	logger logrus.FieldLogger
}

func NewMemoryBroker(logger logrus.FieldLogger) *MemoryBroker {
	return &MemoryBroker{
		subs:   make(map[string]map[chan []byte]struct{}),
		logger: logger,
	}
}

func (b *MemoryBroker) Publish(_ context.Context, n *model.Notification) error {
	payload, err := encode(n)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[n.NotReceiverID] {
		select {
		case ch <- payload:
		default:
			b.logger.WithField("receiver_id", n.NotReceiverID).Warn("notification subscriber is slow, dropping message")
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(receiverID string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, subscriberBuffer)

	b.mu.Lock()
	if b.subs[receiverID] == nil {
		b.subs[receiverID] = make(map[chan []byte]struct{})
	}
	b.subs[receiverID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[receiverID], ch)
			if len(b.subs[receiverID]) == 0 {
				delete(b.subs, receiverID)
			}
		})
	}
	return ch, cancel, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string]map[chan []byte]struct{})
	return nil
}
