// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
)

// ErrDisabled is returned when no SMTP host is configured
var ErrDisabled = errors.New("email sending is disabled")

// EmailService renders and delivers transactional mail
type EmailService struct {
	config   *config.Config
	template *template.Template
	send     func(ctx context.Context, email *Email) error
}

// NewEmailService creates a new email service sending over SMTP
func NewEmailService(cfg *config.Config) *EmailService {
	s := &EmailService{
		config:   cfg,
		template: template.Must(template.New("order_confirmation").Funcs(template.FuncMap{
			"date": func(t time.Time) string { return t.In(cfg.Location()).Format("January 2, 2006") },
		}).Parse(orderConfirmationTemplate)),
	}
	s.send = s.sendSMTPEmail
	return s
}

// Enabled reports whether an SMTP host is configured
func (s *EmailService) Enabled() bool {
	return s.config.Email.SMTPHost != ""
}

// SendOrderConfirmationEmail sends the order confirmation email
func (s *EmailService) SendOrderConfirmationEmail(ctx context.Context, data OrderConfirmationData) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	if strings.TrimSpace(data.UserEmail) == "" {
		return fmt.Errorf("order confirmation for %s has no recipient", data.OrderNumber)
	}

	if data.SiteName == "" {
		data.SiteName = s.config.Email.FromName
	}
	if data.SupportEmail == "" {
		data.SupportEmail = s.config.Invoice.CompanyEmail
	}
	data.Year = time.Now().Year()

	htmlContent, err := s.renderTemplate(data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	return s.send(ctx, &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Order Confirmation - %s", data.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
	})
}

func (s *EmailService) renderTemplate(data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.template.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #8b5e34;">{{.SiteName}}</h1>
        <p>Hello {{.UserName}},</p>
        <p>Thank you for your order. We have received it and will let you know once it is accepted.</p>
        <table style="width: 100%; border-collapse: collapse;">
            <tr><td><strong>Order #</strong></td><td>{{.OrderNumber}}</td></tr>
            <tr><td><strong>Date</strong></td><td>{{date .OrderDate}}</td></tr>
            <tr><td><strong>Items</strong></td><td>{{.ItemCount}}</td></tr>
            <tr><td><strong>Payment</strong></td><td>{{.PaymentMethod}}</td></tr>
            <tr><td><strong>Total</strong></td><td>{{.OrderTotal}}</td></tr>
        </table>
        <p>Questions about your order? Contact us at {{.SupportEmail}}.</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}. All rights reserved.</p>
    </div>
</body>
</html>`
