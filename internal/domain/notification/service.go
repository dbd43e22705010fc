// internal/domain/notification/service.go
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/furnishop/furniture-backend/internal/pkg/email"
	"github.com/furnishop/furniture-backend/internal/pkg/pdf"
	"github.com/sirupsen/logrus"
)

// ProfileReader loads the buyer's display name
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*user.Profile, error)
}

// CredentialReader resolves the login email, which is the address of record
type CredentialReader interface {
	FindByID(userID string) (*user.Credential, error)
}

// Mailer delivers the rendered confirmation
type Mailer interface {
	SendOrderConfirmationEmail(ctx context.Context, data email.OrderConfirmationData) error
}

// Service turns order events into customer notifications
type Service struct {
	profiles    ProfileReader
	credentials CredentialReader
	mailer      Mailer
	currency    string
	logger      *logrus.Logger
}

// NewService creates a new notification service
func NewService(profiles ProfileReader, credentials CredentialReader, mailer Mailer, logger *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		profiles:    profiles,
		credentials: credentials,
		mailer:      mailer,
		currency:    cfg.Invoice.CurrencySymbol,
		logger:      logger,
	}
}

// HandleOrderPlaced emails the buyer a confirmation. Events for users that no
// longer exist are skipped; lookup and delivery failures are returned so the
// message is retried.
func (s *Service) HandleOrderPlaced(ctx context.Context, event order.OrderPlacedEvent) error {
	log := s.logger.WithFields(logrus.Fields{
		"order_id": event.OrderID,
		"user_id":  event.UserID,
	})

	if event.Type != order.EventOrderPlaced {
		log.WithField("type", event.Type).Debug("Ignoring event")
		return nil
	}

	profile, err := s.profiles.GetProfile(ctx, event.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		log.Warn("Buyer no longer exists, skipping confirmation")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load buyer profile: %w", err)
	}

	cred, err := s.credentials.FindByID(event.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		log.Warn("Buyer has no credential, skipping confirmation")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load buyer email: %w", err)
	}

	data := email.OrderConfirmationData{
		UserName:      profile.Name,
		UserEmail:     cred.Email,
		OrderNumber:   pdf.InvoiceNumber(&order.Order{ID: event.OrderID}),
		OrderDate:     event.OrderDate,
		OrderTotal:    event.TotalAmount.Format(s.currency),
		ItemCount:     event.ItemCount,
		PaymentMethod: event.PaymentMethod,
	}
	if err := s.mailer.SendOrderConfirmationEmail(ctx, data); err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	log.Info("Order confirmation sent")
	return nil
}
