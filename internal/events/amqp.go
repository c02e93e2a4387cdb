package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	dialTimeout = 10 * time.Second
	retryDelay  = time.Second
)

// amqpChannel is the subset of *amqp091.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON events to the topic exchange. A failed publish
// reopens the channel and is retried once after a short delay.
type AMQPPublisher struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel amqpChannel
	open    func() (amqpChannel, error)
	delay   time.Duration
	log     *zap.Logger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("parse amqp url: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("amqp url scheme must be amqp or amqps")
	}
	return clean, nil
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(rawURL string, log *zap.Logger) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(rawURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(dialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	open := func() (amqpChannel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}

	p, err := newAMQPPublisher(open, retryDelay, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(open func() (amqpChannel, error), delay time.Duration, log *zap.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{open: open, delay: delay, log: log.Named("events")}
	if err := p.reopen(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) reopen() error {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	p.channel = ch
	return nil
}

// Publish marshals body as JSON and sends it with routingKey.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	backoff := retry.WithMaxRetries(1, retry.NewConstant(p.delay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if p.channel == nil {
			if err := p.reopen(); err != nil {
				return retry.RetryableError(err)
			}
		}

		err := p.channel.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        payload,
		})
		if err == nil {
			return nil
		}

		p.log.Warn("publish failed, reopening channel",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		if reopenErr := p.reopen(); reopenErr != nil {
			p.log.Warn("reopen channel failed", zap.Error(reopenErr))
		}
		return retry.RetryableError(fmt.Errorf("publish %s: %w", routingKey, err))
	})
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
