package events

import (
	"encoding/json"

	"github.com/streadway/amqp"

	apperrors "skillvet/internal/errors"
)

// AMQPPublisher forwards bus events onto a RabbitMQ topic exchange, using
// the event type as the routing key.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *apperrors.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string, logger *apperrors.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, apperrors.NewServiceError(
			apperrors.ErrCodeInvalidRequest,
			"failed to connect to message broker",
			err,
		)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, apperrors.NewServiceError(
			apperrors.ErrCodeInvalidRequest,
			"failed to open broker channel",
			err,
		)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, apperrors.NewServiceError(
			apperrors.ErrCodeInvalidRequest,
			"failed to declare exchange",
			err,
		).WithContext("exchange", exchange)
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// Attach subscribes the publisher to every event on the bus. Publish
// failures are logged, never propagated back to the emitting flow.
func (p *AMQPPublisher) Attach(bus *Bus) {
	bus.Subscribe("", func(e Event) {
		if err := p.publish(e); err != nil {
			p.logger.LogError(err, "Failed to publish event", "event_type", e.Type)
		}
	})
}

func (p *AMQPPublisher) publish(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.channel.Publish(
		p.exchange,
		e.Type,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close shuts the channel and connection down.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
