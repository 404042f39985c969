package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName    = "ex.winsales"
	BackofficeQueue = "q.backoffice.sales"
	DLXName         = "ex.winsales.dlx"
	DLQName         = "q.backoffice.sales.dlq"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher writes events to a topic exchange using the event type as routing key.
type Publisher struct {
	conn *amqp.Connection
	ch   amqpChannel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}

	return &Publisher{conn: conn, ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(DLQName, "", DLXName, false, nil); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	args := amqp.Table{"x-dead-letter-exchange": DLXName}
	if _, err := ch.QueueDeclare(BackofficeQueue, true, false, false, false, args); err != nil {
		return err
	}
	return ch.QueueBind(BackofficeQueue, "sale.*", ExchangeName, false, nil)
}

func (p *Publisher) Notify(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		string(e.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    e.SaleID,
			Timestamp:    e.OccurredAt,
			Type:         string(e.Type),
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var ErrConnectionClosed = errors.New("rabbitmq connection closed")

// PingContext reports whether the broker connection is still open.
func (p *Publisher) PingContext(context.Context) error {
	if p.conn != nil && p.conn.IsClosed() {
		return ErrConnectionClosed
	}
	return nil
}
