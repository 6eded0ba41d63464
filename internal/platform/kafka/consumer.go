package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one message. A nil return commits the offset.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// messageReader is the part of *kafkago.Reader the consumer loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// RetryPolicy bounds how often a failing message is handled again before the
// consumer gives up on it.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries a failing message five times over roughly six seconds.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      5,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     3 * time.Second,
}

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader messageReader
	topic  string
	retry  RetryPolicy
	logger *zap.Logger
}

// NewConsumer creates a group consumer for topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, topic, DefaultRetryPolicy, logger)
}

func newConsumer(reader messageReader, topic string, retry RetryPolicy, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: reader,
		topic:  topic,
		retry:  retry,
		logger: logger,
	}
}

// Consume blocks, dispatching messages to handler until ctx is cancelled.
//
// Group commits are cumulative, so a message is never skipped silently: a
// failing handler is retried with exponential backoff on the same message.
// Once the retries are spent the message is logged as dropped and committed.
// If ctx is cancelled mid-retry the message stays uncommitted and is
// redelivered to the next member of the group.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Error("failed to fetch message",
				zap.String("topic", c.topic),
				zap.Error(err),
			)
			continue
		}

		if err := c.handleWithRetry(ctx, handler, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("dropping message after retries",
				zap.String("topic", c.topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Uint64("retries", c.retry.MaxRetries),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				zap.String("topic", c.topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.retry.MaxRetries), ctx)

	return backoff.RetryNotify(func() error {
		return handler(ctx, msg)
	}, policy, func(err error, wait time.Duration) {
		c.logger.Warn("message handler failed, retrying",
			zap.String("topic", c.topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
