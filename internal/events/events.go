// Package events publishes domain events to RabbitMQ, or to the log when no
// broker is configured.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// Exchange is the durable topic exchange all events go to.
	Exchange = "printdesk.events"

	RoutingQuoteApproved = "quote.approved"
)

// Publisher is implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close()
}

// QuoteApproved is published once per approved quote.
type QuoteApproved struct {
	QuoteID    string    `json:"quoteId"`
	Title      string    `json:"title"`
	ClientID   string    `json:"clientId,omitempty"`
	Channel    string    `json:"channel"`
	TotalCost  float64   `json:"totalCost"`
	FinalPrice float64   `json:"finalPrice"`
	NetValue   float64   `json:"netValue"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// LogPublisher writes events to the logger instead of a broker.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events")}
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, body any) error {
	p.log.Info("event publish skipped, no broker configured",
		zap.String("exchange", Exchange),
		zap.String("routing_key", routingKey),
		zap.Any("body", body),
	)
	return nil
}

func (p *LogPublisher) Close() {}

// Connect returns an AMQP publisher for url, or a LogPublisher when url is empty.
func Connect(url string, log *zap.Logger) (Publisher, error) {
	if url == "" {
		return NewLogPublisher(log), nil
	}
	return NewAMQPPublisher(url, log)
}
