package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelBus is the in-process pub/sub used for live SSE streams. Publishes
// are not persisted; subscribers only see events emitted while connected,
// which is the contract an announcement ticker wants.
type ChannelBus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewChannelBus(logger *slog.Logger) *ChannelBus {
	return &ChannelBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (b *ChannelBus) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	return b.pubsub.Publish(topic, msg)
}

// Subscribe returns a channel of raw messages for topic. The subscription
// ends when ctx is cancelled.
func (b *ChannelBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *ChannelBus) Close() error {
	return b.pubsub.Close()
}

// FanOutPublisher forwards each event to every underlying publisher; used
// to feed Kafka and the SSE bus from one Publish call. Errors from one sink
// do not stop the others.
type FanOutPublisher struct {
	sinks  []EventPublisher
	logger *slog.Logger
}

func NewFanOutPublisher(logger *slog.Logger, sinks ...EventPublisher) *FanOutPublisher {
	return &FanOutPublisher{sinks: sinks, logger: logger}
}

func (f *FanOutPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, topic, event); err != nil {
			f.logger.Error("event publish failed", "topic", topic, "type", event.Type, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (f *FanOutPublisher) Close() error {
	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
