package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventBus is the messaging surface handed to module routers. It satisfies
// both watermill interfaces so the same value can be wired as a handler's
// subscriber and publisher.
type EventBus interface {
	message.Publisher
	message.Subscriber
	EnsureStream(ctx context.Context, streamName string, subjects ...string) error
}

// natsEventBus implements EventBus on top of NATS JetStream.
type natsEventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// NewEventBus creates and returns an EventBus with a connection to NATS JetStream.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, error) {
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	natsConn, err := nc.Connect(natsURL, options...)
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to initialize JetStream", slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaller := &wmnats.NATSMarshaler{}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaller,
			NatsOptions: options,
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:         natsURL,
			Unmarshaler: marshaller,
			NatsOptions: options,
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		logger.Error("Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &natsEventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}, nil
}

// Publish publishes messages to a topic, assigning UUIDs where missing.
func (eb *natsEventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		eb.logger.Debug("Publishing message",
			slog.String("topic", topic),
			slog.String("message_id", msg.UUID),
		)
	}

	if err := eb.publisher.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

// Subscribe returns the message channel for a topic.
func (eb *natsEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", slog.String("topic", topic))

	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	return messages, nil
}

// EnsureStream creates the stream if it does not exist, or extends its
// subject set if it does. Safe to call repeatedly.
func (eb *natsEventBus) EnsureStream(ctx context.Context, streamName string, subjects ...string) error {
	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	// Already provisioned by this process
	if eb.createdStreams[streamName] {
		return nil
	}

	stream, err := eb.js.Stream(ctx, streamName)
	if err != nil && err != jetstream.ErrStreamNotFound {
		return fmt.Errorf("failed to check if stream exists: %w", err)
	}

	if err == jetstream.ErrStreamNotFound {
		_, err = eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: subjects,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		eb.logger.Info("Stream created",
			slog.String("stream_name", streamName),
			slog.Any("subjects", subjects),
		)
	} else {
		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}

		existing := make(map[string]bool, len(info.Config.Subjects))
		for _, s := range info.Config.Subjects {
			existing[s] = true
		}

		changed := false
		for _, s := range subjects {
			if !existing[s] {
				info.Config.Subjects = append(info.Config.Subjects, s)
				changed = true
			}
		}

		if changed {
			if _, err := eb.js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream with new subjects: %w", err)
			}
			eb.logger.Info("Stream updated with new subjects",
				slog.String("stream_name", streamName),
				slog.Any("subjects", subjects),
			)
		}
	}

	eb.createdStreams[streamName] = true
	return nil
}

// Close closes all NATS and Watermill resources.
func (eb *natsEventBus) Close() error {
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", slog.Any("error", err))
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", slog.Any("error", err))
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return nil
}
