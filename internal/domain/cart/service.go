// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/product"
	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/sirupsen/logrus"
)

// Catalog resolves the product a cart line is priced from
type Catalog interface {
	Get(ctx context.Context, id string) (*product.Product, error)
}

// Service handles cart business logic
type Service struct {
	store      docstore.Store
	catalog    Catalog
	logger     *logrus.Logger
	maxRetries int
}

// NewService creates a new cart service
func NewService(store docstore.Store, catalog Catalog, logger *logrus.Logger, cfg *config.Config) *Service {
	retries := cfg.Cart.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &Service{
		store:      store,
		catalog:    catalog,
		logger:     logger,
		maxRetries: retries,
	}
}

// AddLineRequest represents an add to cart request. Name, price and image come
// from the catalog, never from the client.
type AddLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1,max=1000"`
}

// Load fetches the user's cart. An absent cart is (nil, nil).
func (s *Service) Load(ctx context.Context, userID string) (*Cart, error) {
	doc, err := s.store.Get(ctx, Collection, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c, err := decodeCart(doc)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Cart document is malformed")
		return nil, err
	}
	return c, nil
}

// AddLine prices the product from the catalog and merges it into the user's cart,
// creating the cart when absent. Unknown products give product.ErrProductNotFound.
func (s *Service) AddLine(ctx context.Context, userID string, req AddLineRequest) (*Cart, error) {
	line := Line{ProductID: req.ProductID, Quantity: req.Quantity}
	if err := line.Validate(); err != nil {
		return nil, err
	}

	p, err := s.catalog.Get(ctx, req.ProductID)
	if err != nil {
		if !errors.Is(err, product.ErrProductNotFound) {
			s.logger.WithError(err).WithField("product_id", req.ProductID).Error("Failed to look up product for cart")
		}
		return nil, err
	}
	line.Name = p.Name
	line.Category = p.Category
	line.Price = p.Price
	line.Image = p.ImageName
	if err := line.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(c *Cart) (*Cart, bool, error) {
		if c == nil {
			return New(userID, line), true, nil
		}
		if err := c.AddLine(line); err != nil {
			return nil, false, err
		}
		return c, true, nil
	})
}

// RemoveLine takes one unit of a product out of the cart
func (s *Service) RemoveLine(ctx context.Context, userID, productID string) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) (*Cart, bool, error) {
		if c == nil {
			s.logger.WithField("user_id", userID).Info("Cart does not exist, nothing to remove")
			return nil, false, nil
		}
		if err := c.RemoveLine(productID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"user_id":    userID,
				"product_id": productID,
			}).Info("Product is not in the cart")
			return c, false, nil
		}
		return c, true, nil
	})
}

// RemoveAllOfProduct drops every line for the product regardless of quantity
func (s *Service) RemoveAllOfProduct(ctx context.Context, userID, productID string) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) (*Cart, bool, error) {
		if c == nil {
			s.logger.WithField("user_id", userID).Info("Cart does not exist, nothing to remove")
			return nil, false, nil
		}
		if !c.RemoveAllOfProduct(productID) {
			s.logger.WithFields(logrus.Fields{
				"user_id":    userID,
				"product_id": productID,
			}).Info("Product is not in the cart")
			return c, false, nil
		}
		return c, true, nil
	})
}

// Clear deletes the cart document. Clearing an absent cart is not an error.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, Collection, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ClearLoaded deletes the cart only if it is still the version that was loaded,
// so a line added since then is kept. A changed cart gives ErrCartConflict.
func (s *Service) ClearLoaded(ctx context.Context, userID string, loaded *Cart) error {
	if loaded == nil {
		return nil
	}
	err := s.store.DeleteIfVersion(ctx, Collection, userID, loaded.Version)
	if errors.Is(err, docstore.ErrVersionConflict) {
		s.logger.WithField("user_id", userID).Warn("Cart changed since it was loaded, leaving it in place")
		return ErrCartConflict
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Totals returns the derived totals of a possibly absent cart
func (s *Service) Totals(c *Cart) CartTotals {
	return c.Totals()
}

// mutate reloads the cart, applies fn to a copy and writes the result guarded by the
// loaded version. A concurrent write restarts the cycle up to maxRetries times.
// fn returns the new cart (nil for absent) and whether anything changed; an error
// from fn aborts without writing.
func (s *Service) mutate(ctx context.Context, userID string, fn func(*Cart) (*Cart, bool, error)) (*Cart, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		current, err := s.Load(ctx, userID)
		if err != nil {
			return nil, err
		}

		var working *Cart
		if current != nil {
			working = current.clone()
		}

		next, changed, err := fn(working)
		if err != nil {
			return nil, err
		}
		if !changed {
			return current, nil
		}

		err = s.persist(ctx, userID, current, next)
		if errors.Is(err, docstore.ErrVersionConflict) {
			s.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"attempt": attempt,
			}).Warn("Cart changed while updating, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}

		if next.IsEmpty() {
			return nil, nil
		}
		return next, nil
	}

	return nil, ErrCartConflict
}

func (s *Service) persist(ctx context.Context, userID string, current, next *Cart) error {
	var expected int64
	if current != nil {
		expected = current.Version
	}

	if next.IsEmpty() {
		if current == nil {
			return nil
		}
		if err := s.store.DeleteIfVersion(ctx, Collection, userID, expected); err != nil {
			if errors.Is(err, docstore.ErrVersionConflict) {
				return err
			}
			s.logger.WithError(err).WithField("user_id", userID).Error("Failed to delete empty cart")
			return fmt.Errorf("failed to save cart: %w", err)
		}
		return nil
	}

	next.ID = userID
	if err := s.store.SetIfVersion(ctx, Collection, userID, next.toFields(), expected); err != nil {
		if errors.Is(err, docstore.ErrVersionConflict) {
			return err
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}
	next.Version = docstore.NextVersion(expected)
	return nil
}
