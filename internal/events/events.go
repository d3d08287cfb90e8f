// Package events fans application events out to every server instance over
// valkey pub/sub.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"clinicdesk/config"
	"clinicdesk/internal/logger"

	"github.com/valkey-io/valkey-go"
)

const channelPrefix = "clinicdesk:events:"

type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type Publisher interface {
	Publish(channel string, event Event) error
}

type EventBus struct {
	client  valkey.Client
	config  config.Config
	log     logger.Logger
	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
}

func New(client valkey.Client, config config.Config) *EventBus {
	return &EventBus{
		client: client,
		config: config,
		log:    logger.New("EventBus"),
	}
}

func channelKey(channel string) string {
	return channelPrefix + channel
}

func (b *EventBus) Publish(channel string, event Event) error {
	log := b.log.Function("Publish")

	if b.client == nil {
		return log.Error("event bus has no cache client", "channel", channel)
	}

	if event.Channel == "" {
		event.Channel = channel
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "channel", channel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := b.client.B().Publish().Channel(channelKey(channel)).Message(string(payload)).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return log.Err("failed to publish event", err, "channel", channel)
	}

	return nil
}

// Subscribe delivers every event published on channel to handler until the
// bus is closed. Malformed payloads are logged and skipped.
func (b *EventBus) Subscribe(channel string, handler func(Event)) error {
	log := b.log.Function("Subscribe")

	if b.client == nil {
		return log.Error("event bus has no cache client", "channel", channel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		cmd := b.client.B().Subscribe().Channel(channelKey(channel)).Build()
		err := b.client.Receive(ctx, cmd, func(msg valkey.PubSubMessage) {
			b.dispatch(msg.Message, handler)
		})
		if err != nil && ctx.Err() == nil {
			log.Er("subscription ended", err, "channel", channel)
		}
	}()

	log.Info("Subscribed to channel", "channel", channel)
	return nil
}

func (b *EventBus) dispatch(payload string, handler func(Event)) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.log.Function("dispatch").Er("failed to decode event", err)
		return
	}
	handler(event)
}

func (b *EventBus) Close() error {
	b.mu.Lock()
	cancels := b.cancels
	b.cancels = nil
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	b.wg.Wait()

	return nil
}
