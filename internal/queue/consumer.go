package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/fer/internal/models"
)

// SubmissionHandler receives decoded submission events.
type SubmissionHandler func(ctx context.Context, evt models.SubmissionEvent) error

type Consumer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewConsumer(natsURL string) (*Consumer, error) {
	nc, err := connect(natsURL)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Consumer{nc: nc, js: js}, nil
}

// ConsumeSubmissions delivers new submission events to handler until ctx ends.
func (c *Consumer) ConsumeSubmissions(ctx context.Context, consumerName string, handler SubmissionHandler) error {
	stream, err := c.js.Stream(ctx, SubmissionsStreamName)
	if err != nil {
		return fmt.Errorf("get stream %s: %w", SubmissionsStreamName, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       10 * time.Second,
		MaxDeliver:    3,
		FilterSubject: SubmissionsSubjectBase + ".>",
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", consumerName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			batch, err := cons.Fetch(10, jetstream.FetchMaxWait(5*time.Second))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				time.Sleep(time.Second)
				continue
			}

			for msg := range batch.Messages() {
				if err := dispatch(ctx, msg.Data(), handler); err != nil {
					slog.Error("process submission event", "error", err, "subject", msg.Subject())
					_ = msg.Nak()
				} else {
					_ = msg.Ack()
				}
			}
		}
	}()

	slog.Info("submission consumer started", "consumer", consumerName)
	return nil
}

func dispatch(ctx context.Context, data []byte, handler SubmissionHandler) error {
	var evt models.SubmissionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("decode submission event: %w", err)
	}
	return handler(ctx, evt)
}

func (c *Consumer) Close() {
	c.nc.Close()
}
