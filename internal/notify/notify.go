// Package notify fans sale lifecycle events out to the message broker and to e-mail.
package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"winsales/internal/metrics"
)

type EventType string

const (
	SaleCreated  EventType = "sale.created"
	SaleReviewed EventType = "sale.reviewed"
)

type Event struct {
	Type            EventType `json:"type"`
	SaleID          string    `json:"sale_id"`
	LeadID          string    `json:"lead_id,omitempty"`
	CustomerName    string    `json:"customer_name"`
	AdvisorID       string    `json:"advisor_id"`
	AdvisorName     string    `json:"advisor_name,omitempty"`
	AdvisorEmail    string    `json:"advisor_email,omitempty"`
	ActorID         string    `json:"actor_id"`
	RequestStatus   string    `json:"request_status,omitempty"`
	OrderStatus     string    `json:"order_status,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type Notifier interface {
	Notify(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }
func (Noop) Close() error                        { return nil }

type channel struct {
	name string
	n    Notifier
}

// Multi delivers to every channel; a failing channel does not stop the others.
type Multi struct {
	channels []channel
	log      *zap.Logger
}

func NewMulti(log *zap.Logger) *Multi {
	return &Multi{log: log}
}

func (m *Multi) Add(name string, n Notifier) *Multi {
	m.channels = append(m.channels, channel{name: name, n: n})
	return m
}

func (m *Multi) Len() int {
	return len(m.channels)
}

func (m *Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, c := range m.channels {
		if err := c.n.Notify(ctx, e); err != nil {
			metrics.RecordNotifyError(c.name)
			m.log.Warn("notification failed",
				zap.String("channel", c.name),
				zap.String("event", string(e.Type)),
				zap.String("sale_id", e.SaleID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, c := range m.channels {
		errs = append(errs, c.n.Close())
	}
	return errors.Join(errs...)
}
