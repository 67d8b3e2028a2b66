// Package realtime pushes stored chat messages to connected recipients.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Broker fans messages out to subscribers of the receiving user.
type Broker interface {
	Publish(ctx context.Context, msg *models.Message) error
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func(), error)
}

// Channel is the pub/sub channel carrying messages addressed to userID.
func Channel(userID uuid.UUID) string {
	return "messages:user:" + userID.String()
}

// Event is the payload written to subscribers.
type Event struct {
	Type    string         `json:"type"`
	Message models.Message `json:"message"`
}

func encode(msg *models.Message) ([]byte, error) {
	b, err := json.Marshal(Event{Type: "chat_message", Message: *msg})
	if err != nil {
		return nil, fmt.Errorf("failed to encode message %s: %w", msg.ID, err)
	}
	return b, nil
}

// RedisBroker relays messages through redis pub/sub so every API instance can
// deliver to its own websocket connections.
type RedisBroker struct {
	rdb redis.UniversalClient
}

func NewRedisBroker(rdb redis.UniversalClient) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Publish(ctx context.Context, msg *models.Message) error {
	payload, err := encode(msg)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, Channel(msg.ReceiverID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish message %s: %w", msg.ID, err)
	}
	return nil
}

// Subscribe returns the user's message stream. The returned func releases it.
func (b *RedisBroker) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func(), error) {
	sub := b.rdb.Subscribe(ctx, Channel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", Channel(userID), err)
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		for m := range sub.Channel() {
			select {
			case out <- []byte(m.Payload):
			default:
				log.Printf("RedisBroker: Dropping message for slow subscriber %s", userID)
			}
		}
	}()
	return out, func() { _ = sub.Close() }, nil
}

// Hub is the in-process broker used when no redis is configured.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[uuid.UUID]map[int]chan []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[int]chan []byte)}
}

// Publish never blocks: a subscriber whose buffer is full misses the push and
// catches up by polling.
func (h *Hub) Publish(_ context.Context, msg *models.Message) error {
	payload, err := encode(msg)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[msg.ReceiverID] {
		select {
		case ch <- payload:
		default:
			log.Printf("Hub: Dropping message %s for slow subscriber %s", msg.ID, msg.ReceiverID)
		}
	}
	return nil
}

func (h *Hub) Subscribe(_ context.Context, userID uuid.UUID) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan []byte)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

var (
	_ Broker = (*RedisBroker)(nil)
	_ Broker = (*Hub)(nil)
)
