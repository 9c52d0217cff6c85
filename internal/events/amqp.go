package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/cleared-dev/finanza/internal/logger"
)

const publishTimeout = 5 * time.Second

// AMQPClient publishes events to a durable direct exchange and consumes
// them from a queue bound with the queue name as routing key.
type AMQPClient struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
}

// Dial connects to the broker and declares the exchange and queue.
func Dial(url, exchange, queue string) (*AMQPClient, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &AMQPClient{conn: conn, channel: channel, exchange: exchange, queue: queue}
	if err := c.setup(); err != nil {
		c.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return c, nil
}

// DialRetry keeps dialing while the broker refuses connections, backing off
// exponentially, until attempts are exhausted or ctx ends.
func DialRetry(ctx context.Context, url, exchange, queue string, attempts int) (*AMQPClient, error) {
	log := logger.FromContext(ctx)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		c, err := Dial(url, exchange, queue)
		if err == nil {
			return c, nil
		}
		lastErr = err
		if !isConnectionError(err) {
			return nil, err
		}

		wait := backoff(attempt)
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("retry_in", wait).Msg("broker unavailable")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func (c *AMQPClient) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := c.channel.QueueBind(c.queue, c.queue, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends the event as a persistent JSON message.
func (c *AMQPClient) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.ID.String(),
		Type:         string(e.Type),
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	logger.FromContext(ctx).Debug().
		Str("event_id", e.ID.String()).
		Str("type", string(e.Type)).
		Str("exchange", c.exchange).
		Msg("event published")
	return nil
}

// Consume delivers queued events to handler until ctx ends. Undecodable
// messages are dropped; messages the handler fails on are requeued.
func (c *AMQPClient) Consume(ctx context.Context, handler func(context.Context, Event) error) error {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("queue", c.queue).Msg("consuming events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			handle(ctx, d, handler)
		}
	}
}

func handle(ctx context.Context, d amqp091.Delivery, handler func(context.Context, Event) error) {
	log := logger.FromContext(ctx)

	e, err := Decode(d.Body)
	if err != nil {
		log.Error().Err(err).Msg("dropping undecodable message")
		_ = d.Nack(false, false)
		return
	}
	if err := handler(ctx, e); err != nil {
		log.Error().Err(err).Str("event_id", e.ID.String()).Msg("handler failed, requeueing")
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Close closes the channel and the connection.
func (c *AMQPClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func backoff(attempt int) time.Duration {
	const maxWait = 30 * time.Second
	if attempt > 5 {
		return maxWait
	}
	wait := time.Second << attempt
	if wait > maxWait {
		return maxWait
	}
	return wait
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) && amqpErr.Recover {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection reset", "connection closed", "eof", "no such host", "i/o timeout"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
