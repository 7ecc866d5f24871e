// Package mailer delivers order mails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"webshop/internal/config"
	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"
)

const subjectOrderConfirmation = "Your order %s has been received"

var orderTemplate = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("€%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html><body>
<h1>Thank you for your order</h1>
<p>Order <strong>{{.ID}}</strong> placed on {{.OrderDate.Format "2006-01-02 15:04"}} is {{.Status}}.</p>
<table>
<tr><th>Product</th><th>Quantity</th><th>Price</th><th>Total</th></tr>
{{range .Products}}<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{money .UnitPrice}}</td><td>{{money .LineTotal}}</td></tr>
{{end}}</table>
<p>Order total: <strong>{{money .TotalPrice}}</strong></p>
</body></html>`))

// RenderOrderConfirmation returns the HTML body of the confirmation mail.
func RenderOrderConfirmation(order *models.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("execute order template: %w", err)
	}
	return buf.String(), nil
}

// SMTPNotifier sends order confirmations via go-mail.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPNotifier(cfg config.Config) *SMTPNotifier {
	return &SMTPNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (s *SMTPNotifier) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error {
	content, err := RenderOrderConfirmation(order)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(fmt.Sprintf(subjectOrderConfirmation, order.ID))
	msg.SetBodyString(gomail.TypeTextHTML, content)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogNotifier only logs; it is used when SMTP is not configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error {
	n.Logger.Info().
		Str("to", to).
		Str("order_id", order.ID.String()).
		Float64("total_price", order.TotalPrice).
		Msg("SMTP not configured, order confirmation skipped")
	return nil
}

// New picks the notifier matching the configuration.
func New(cfg config.Config, logger zerolog.Logger) core.OrderNotifier {
	if cfg.SMTPEnabled() {
		return NewSMTPNotifier(cfg)
	}
	return LogNotifier{Logger: logger}
}
