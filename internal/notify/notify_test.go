package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, e Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockNotifier) Close() error {
	return m.Called().Error(0)
}

func reviewed() Event {
	return Event{
		Type:            SaleReviewed,
		SaleID:          "sale-1",
		CustomerName:    "Ana Quispe",
		AdvisorID:       "u1",
		AdvisorName:     "Rosa",
		AdvisorEmail:    "rosa@example.com",
		ActorID:         "bo1",
		RequestStatus:   "rejected",
		RejectionReason: "DNI no coincide",
		OccurredAt:      time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	}
}

func TestMultiContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	first, second := new(mockNotifier), new(mockNotifier)
	first.On("Notify", ctx, mock.Anything).Return(errors.New("broker down"))
	second.On("Notify", ctx, mock.Anything).Return(nil)

	m := NewMulti(zap.NewNop()).Add("amqp", first).Add("mail", second)
	err := m.Notify(ctx, reviewed())

	assert.ErrorContains(t, err, "broker down")
	first.AssertExpectations(t)
	second.AssertExpectations(t)
	assert.Equal(t, 2, m.Len())
}

func TestMultiEmpty(t *testing.T) {
	m := NewMulti(zap.NewNop())
	assert.NoError(t, m.Notify(context.Background(), reviewed()))
	assert.NoError(t, m.Close())
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func TestPublisherRoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch}

	require.NoError(t, p.Notify(context.Background(), reviewed()))
	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, "sale.reviewed", ch.key)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var got Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, "sale-1", got.SaleID)
	assert.Equal(t, "rejected", got.RequestStatus)

	ch.err = errors.New("closed")
	assert.Error(t, p.Notify(context.Background(), reviewed()))
	assert.NoError(t, p.Close())
}

type fakeSender struct {
	sent []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return nil
}

func TestMailerSendsOnlyReviews(t *testing.T) {
	s := &fakeSender{}
	m := &Mailer{from: "ventas@example.com", sender: s}

	created := reviewed()
	created.Type = SaleCreated
	require.NoError(t, m.Notify(context.Background(), created))
	assert.Empty(t, s.sent)

	noEmail := reviewed()
	noEmail.AdvisorEmail = ""
	require.NoError(t, m.Notify(context.Background(), noEmail))
	assert.Empty(t, s.sent)

	require.NoError(t, m.Notify(context.Background(), reviewed()))
	require.Len(t, s.sent, 1)
	assert.Equal(t, []string{"rosa@example.com"}, s.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Venta de Ana Quispe: Desaprobado"}, s.sent[0].GetHeader("Subject"))
}

func TestRenderReviewBody(t *testing.T) {
	body, err := renderReviewBody(reviewed())
	require.NoError(t, err)
	assert.Contains(t, body, "Hola Rosa")
	assert.Contains(t, body, "Desaprobado")
	assert.Contains(t, body, "DNI no coincide")
	assert.NotContains(t, body, "Estado de orden")

	e := reviewed()
	e.RequestStatus = "validated"
	e.OrderStatus = "scheduled"
	e.RejectionReason = ""
	body, err = renderReviewBody(e)
	require.NoError(t, err)
	assert.Contains(t, body, "Programado")
	assert.NotContains(t, body, "Motivo")
}
