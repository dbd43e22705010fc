// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/furnishop/furniture-backend/internal/domain/cart"
	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// usersCollection holds the profile read at checkout for the buyer's name
const usersCollection = "users"

// DefaultRecentLimit is how many orders the dashboard shows
const DefaultRecentLimit = 5

// Service handles order business logic
type Service struct {
	store     docstore.Store
	carts     *cart.Service
	publisher EventPublisher
	logger    *logrus.Logger
	now       func() time.Time
}

// NewService creates a new order service. publisher may be nil.
func NewService(store docstore.Store, carts *cart.Service, publisher EventPublisher, logger *logrus.Logger) *Service {
	return &Service{
		store:     store,
		carts:     carts,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CheckoutRequest represents the payment screen submission
type CheckoutRequest struct {
	UserID        string `json:"-"`
	Address       string `json:"address" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

// StatusRequest represents an admin status change
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlaceOrder turns the user's cart into an order and clears the cart.
// When the order is stored but the cart cannot be cleared, the order is returned
// together with an error wrapping ErrCartNotCleared.
func (s *Service) PlaceOrder(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.UserID == "" {
		return nil, ErrNotLoggedIn
	}
	address := strings.TrimSpace(req.Address)
	payment := strings.TrimSpace(req.PaymentMethod)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidCheckout)
	}
	if payment == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrInvalidCheckout)
	}

	userName, err := s.buyerName(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Load(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	order := &Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		UserName:      userName,
		OrderDate:     s.now(),
		Products:      make([]OrderProduct, 0, len(c.Lines)),
		TotalAmount:   c.Total(),
		Status:        StatusPending,
		Address:       address,
		PaymentMethod: payment,
	}
	for _, l := range c.Lines {
		order.Products = append(order.Products, OrderProduct{
			ProductID:    l.ProductID,
			ProductName:  l.Name,
			Quantity:     l.Quantity,
			Price:        l.Price,
			ProductImage: l.Image,
		})
	}

	if err := s.store.Set(ctx, Collection, order.ID, order.toFields()); err != nil {
		s.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to save order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.String(),
		"items":        order.ItemCount(),
	}).Info("Order placed")

	s.publish(ctx, order)

	if err := s.carts.ClearLoaded(ctx, req.UserID, c); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_id": order.ID,
			"user_id":  req.UserID,
		}).Warn("Order placed but cart was not cleared")
		return order, fmt.Errorf("%w: %w", ErrCartNotCleared, err)
	}

	return order, nil
}

func (s *Service) buyerName(ctx context.Context, userID string) (string, error) {
	doc, err := s.store.Get(ctx, usersCollection, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", ErrProfileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user profile: %w", err)
	}
	name, err := docstore.NewDecoder(usersCollection, doc).String("name")
	if err != nil || strings.TrimSpace(name) == "" {
		s.logger.WithField("user_id", userID).Warn("User profile has no name")
		return "", ErrProfileNotFound
	}
	return name, nil
}

func (s *Service) publish(ctx context.Context, order *Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderPlaced(ctx, NewOrderPlacedEvent(order)); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("Failed to publish order event")
	}
}

// List returns every order, newest first
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.query(ctx, docstore.Query{OrderBy: "orderDate", Dir: docstore.Desc})
}

// ListByUser returns a user's order history, newest first
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	q := docstore.Where("userId", userID)
	q.OrderBy = "orderDate"
	q.Dir = docstore.Desc
	return s.query(ctx, q)
}

// Recent returns the latest orders. A non-positive limit uses DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.query(ctx, docstore.Query{OrderBy: "orderDate", Dir: docstore.Desc, Limit: limit})
}

func (s *Service) query(ctx context.Context, q docstore.Query) ([]Order, error) {
	docs, err := s.store.Query(ctx, Collection, q)
	if err != nil {
		s.logger.WithError(err).Error("Failed to query orders")
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	orders := make([]Order, 0, len(docs))
	for _, doc := range docs {
		o, err := decodeOrder(doc)
		if err != nil {
			s.logDecodeError(doc.ID, err)
			continue
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (s *Service) logDecodeError(id string, err error) {
	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"collection": Collection,
		"id":         id,
	})
	var de *docstore.DecodeError
	if errors.As(err, &de) {
		entry = entry.WithField("field", de.Field)
	}
	entry.Warn("Skipping malformed order")
}

// Get retrieves a single order
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	doc, err := s.store.Get(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return decodeOrder(doc)
}

// Create stores an order entered by an admin
func (s *Service) Create(ctx context.Context, o *Order) (*Order, error) {
	s.fillDefaults(o)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	o.ID = uuid.New().String()
	if err := s.store.Set(ctx, Collection, o.ID, o.toFields()); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"user_id":  o.UserID,
	}).Info("Order created by admin")
	return o, nil
}

// Update replaces an existing order's status, address, payment method and products
func (s *Service) Update(ctx context.Context, id string, o *Order) (*Order, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	o.ID = id
	if o.UserID == "" {
		o.UserID = existing.UserID
	}
	if o.UserName == "" {
		o.UserName = existing.UserName
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = existing.OrderDate
	}
	if o.Profit == nil {
		o.Profit = existing.Profit
	}
	s.fillDefaults(o)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, Collection, id, o.toFields()); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return o, nil
}

func (s *Service) fillDefaults(o *Order) {
	if strings.TrimSpace(o.Status) == "" {
		o.Status = StatusPending
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = s.now()
	}
	if o.TotalAmount == 0 {
		o.TotalAmount = o.ProductsTotal()
	}
}

// Accept marks an order as accepted by the shop
func (s *Service) Accept(ctx context.Context, id string) error {
	return s.UpdateStatus(ctx, id, StatusAccepted)
}

// UpdateStatus sets the order status to any non-empty text
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidOrder)
	}

	err := s.store.Update(ctx, Collection, id, docstore.Fields{"status": status})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": id,
		"status":   status,
	}).Info("Order status updated")
	return nil
}

// Delete removes an order
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, Collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to retrieve order: %w", err)
	}
	if err := s.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}
