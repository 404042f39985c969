package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"winsales/internal/models"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer tells the advisor when backoffice has reviewed one of their sales.
type Mailer struct {
	from   string
	sender mailSender
}

func NewMailer(host string, port int, user, password, from string) *Mailer {
	return &Mailer{
		from:   from,
		sender: gomail.NewDialer(host, port, user, password),
	}
}

var reviewTemplate = template.Must(template.New("review").Parse(`<p>Hola {{.AdvisorName}},</p>
<p>Backoffice revisó la venta de <strong>{{.CustomerName}}</strong>.</p>
<ul>
<li>Estado de solicitud: {{.RequestLabel}}</li>
{{if .OrderLabel}}<li>Estado de orden: {{.OrderLabel}}</li>{{end}}
{{if .RejectionReason}}<li>Motivo: {{.RejectionReason}}</li>{{end}}
</ul>
<p>Puedes ver el detalle en el panel de ventas.</p>`))

type reviewData struct {
	AdvisorName     string
	CustomerName    string
	RequestLabel    string
	OrderLabel      string
	RejectionReason string
}

func reviewSubject(e Event) string {
	label := models.GetRequestStatusDisplay(models.RequestStatus(e.RequestStatus)).DisplayName
	return fmt.Sprintf("Venta de %s: %s", e.CustomerName, label)
}

func renderReviewBody(e Event) (string, error) {
	data := reviewData{
		AdvisorName:     e.AdvisorName,
		CustomerName:    e.CustomerName,
		RequestLabel:    models.GetRequestStatusDisplay(models.RequestStatus(e.RequestStatus)).DisplayName,
		RejectionReason: e.RejectionReason,
	}
	if e.OrderStatus != "" {
		data.OrderLabel = models.GetOrderStatusDisplay(models.OrderStatus(e.OrderStatus)).DisplayName
	}

	var body bytes.Buffer
	if err := reviewTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render review email: %w", err)
	}
	return body.String(), nil
}

// Notify only mails review outcomes; other events are ignored.
func (m *Mailer) Notify(ctx context.Context, e Event) error {
	if e.Type != SaleReviewed || e.AdvisorEmail == "" {
		return nil
	}

	body, err := renderReviewBody(e)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", e.AdvisorEmail)
	msg.SetHeader("Subject", reviewSubject(e))
	msg.SetBody("text/html", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send review email: %w", err)
	}
	return nil
}

func (m *Mailer) Close() error {
	return nil
}
