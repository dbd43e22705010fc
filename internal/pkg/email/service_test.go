package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(host string) (*EmailService, *[]*Email) {
	svc := NewEmailService(&config.Config{
		App: config.AppConfig{Timezone: "UTC"},
		Email: config.EmailConfig{
			SMTPHost:  host,
			SMTPPort:  587,
			FromEmail: "orders@furnishop.test",
			FromName:  "Furnishop",
		},
		Invoice: config.InvoiceConfig{CompanyEmail: "help@furnishop.test"},
	})
	var sent []*Email
	svc.send = func(ctx context.Context, e *Email) error {
		sent = append(sent, e)
		return nil
	}
	return svc, &sent
}

func TestSendOrderConfirmationEmail(t *testing.T) {
	svc, sent := newTestService("smtp.furnishop.test")

	err := svc.SendOrderConfirmationEmail(context.Background(), OrderConfirmationData{
		UserName:      "Ada <b>",
		UserEmail:     "ada@example.com",
		OrderNumber:   "INV-3F2A9C1E",
		OrderDate:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		OrderTotal:    "$2.50",
		ItemCount:     3,
		PaymentMethod: "PayPal",
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	e := (*sent)[0]
	assert.Equal(t, []string{"ada@example.com"}, e.To)
	assert.Equal(t, "Order Confirmation - INV-3F2A9C1E", e.Subject)
	assert.Equal(t, EmailTypeOrderConfirmation, e.Type)
	assert.Contains(t, e.HTMLContent, "May 1, 2024")
	assert.Contains(t, e.HTMLContent, "$2.50")
	assert.Contains(t, e.HTMLContent, "help@furnishop.test")
	assert.Contains(t, e.HTMLContent, "Ada &lt;b&gt;")
}

func TestSendOrderConfirmationEmail_Rejections(t *testing.T) {
	disabled, _ := newTestService("")
	assert.ErrorIs(t, disabled.SendOrderConfirmationEmail(context.Background(), OrderConfirmationData{UserEmail: "a@b.c"}), ErrDisabled)

	svc, sent := newTestService("smtp.furnishop.test")
	assert.Error(t, svc.SendOrderConfirmationEmail(context.Background(), OrderConfirmationData{OrderNumber: "INV-1"}))
	assert.Empty(t, *sent)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("Furnishop <orders@furnishop.test>", "help@furnishop.test", &Email{
		To:          []string{"a@example.com", "b@example.com"},
		Subject:     "Hi",
		HTMLContent: "<p>body</p>",
	}))

	head, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, "<p>body</p>", body)
	assert.Equal(t, []string{
		"From: Furnishop <orders@furnishop.test>",
		"To: a@example.com, b@example.com",
		"Subject: Hi",
		"Reply-To: help@furnishop.test",
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="utf-8"`,
	}, strings.Split(head, "\r\n"))
}
