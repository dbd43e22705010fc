// internal/pkg/email/types.go
package email

import "time"

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
)

// Email represents an email message
type Email struct {
	To          []string
	Subject     string
	HTMLContent string
	Type        EmailType
}

// OrderConfirmationData contains data for the order confirmation email
type OrderConfirmationData struct {
	SiteName      string
	UserName      string
	UserEmail     string
	OrderNumber   string
	OrderDate     time.Time
	OrderTotal    string
	ItemCount     int64
	PaymentMethod string
	SupportEmail  string
	Year          int
}
