package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/furnishop/furniture-backend/internal/pkg/email"
	"github.com/furnishop/furniture-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profiles map[string]*user.Profile

func (p profiles) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	if profile, ok := p[userID]; ok {
		return profile, nil
	}
	return nil, user.ErrUserNotFound
}

type credentials struct {
	emails map[string]string
	err    error
}

func (c credentials) FindByID(userID string) (*user.Credential, error) {
	if c.err != nil {
		return nil, c.err
	}
	addr, ok := c.emails[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &user.Credential{UserID: userID, Email: addr}, nil
}

type mailer struct {
	sent []email.OrderConfirmationData
	err  error
}

func (m *mailer) SendOrderConfirmationEmail(ctx context.Context, data email.OrderConfirmationData) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}

func newService(creds credentials, m *mailer) *Service {
	cfg := &config.Config{Invoice: config.InvoiceConfig{CurrencySymbol: "$"}}
	p := profiles{"u1": {ID: "u1", Name: "Ada", Email: "stale@example.com"}}
	return NewService(p, creds, m, logger.Discard(), cfg)
}

func placed(userID string) order.OrderPlacedEvent {
	return order.OrderPlacedEvent{
		Type:          order.EventOrderPlaced,
		OrderID:       "3f2a9c1e-0000-4000-8000-000000000000",
		UserID:        userID,
		TotalAmount:   250,
		ItemCount:     3,
		PaymentMethod: order.PaymentPayPal,
		OrderDate:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleOrderPlaced_SendsToCredentialEmail(t *testing.T) {
	m := &mailer{}
	svc := newService(credentials{emails: map[string]string{"u1": "ada@example.com"}}, m)

	require.NoError(t, svc.HandleOrderPlaced(context.Background(), placed("u1")))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "ada@example.com", m.sent[0].UserEmail)
	assert.Equal(t, "Ada", m.sent[0].UserName)
	assert.Equal(t, "INV-3F2A9C1E", m.sent[0].OrderNumber)
	assert.Equal(t, "$2.50", m.sent[0].OrderTotal)
	assert.Equal(t, int64(3), m.sent[0].ItemCount)
}

func TestHandleOrderPlaced_SkipsAndRetries(t *testing.T) {
	ctx := context.Background()

	m := &mailer{}
	svc := newService(credentials{emails: map[string]string{}}, m)
	assert.NoError(t, svc.HandleOrderPlaced(ctx, placed("gone")))
	assert.NoError(t, svc.HandleOrderPlaced(ctx, placed("u1")))

	other := placed("u1")
	other.Type = "order.shipped"
	assert.NoError(t, svc.HandleOrderPlaced(ctx, other))
	assert.Empty(t, m.sent)

	svc = newService(credentials{err: errors.New("db down")}, m)
	assert.Error(t, svc.HandleOrderPlaced(ctx, placed("u1")))

	failing := &mailer{err: errors.New("smtp refused")}
	svc = newService(credentials{emails: map[string]string{"u1": "ada@example.com"}}, failing)
	assert.Error(t, svc.HandleOrderPlaced(ctx, placed("u1")))
}
