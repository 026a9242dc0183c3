package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

// Envelope wraps every message sent to the exchange
type Envelope struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
}

// AMQPPublisher publishes JSON envelopes to a durable topic exchange
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials url and declares exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Encode builds the wire body for routingKey and data
func Encode(routingKey string, data any) ([]byte, error) {
	body, err := json.Marshal(Envelope{ID: uuid.NewString(), Pattern: routingKey, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return body, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, routingKey string, data any) error {
	body, err := Encode(routingKey, data)
	if err != nil {
		return err
	}

	// amqp.Channel is not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("exchange", p.exchange).Str("routing_key", routingKey).Msg("event published")
	return nil
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
