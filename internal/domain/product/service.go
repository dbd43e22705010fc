// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Service handles product business logic
type Service struct {
	store    docstore.Store
	logger   *logrus.Logger
	validate *validator.Validate
}

// NewService creates a new product service
func NewService(store docstore.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:    store,
		logger:   logger,
		validate: validator.New(),
	}
}

// FetchProducts scans the whole catalog in store order, skipping malformed documents
func (s *Service) FetchProducts(ctx context.Context) ([]Product, error) {
	docs, err := s.store.Query(ctx, Collection, docstore.Query{})
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch products")
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProduct(doc)
		if err != nil {
			logSkipped(s.logger, Collection, doc.ID, err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// Browse fetches the catalog and applies the category and search filters.
// On a fetch failure it returns an empty list together with the error.
func (s *Service) Browse(ctx context.Context, category, search string) ([]Product, error) {
	products, err := s.FetchProducts(ctx)
	if err != nil {
		return []Product{}, err
	}
	return Filter(products, category, search), nil
}

// Get retrieves a single product
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	doc, err := s.store.Get(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	p, err := decodeProduct(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a product to the catalog
func (s *Service) Create(ctx context.Context, p *Product) (*Product, error) {
	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}

	id, err := s.store.Add(ctx, Collection, p.toFields())
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	p.ID = id

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
		"name":       p.Name,
	}).Info("Product created")
	return p, nil
}

// Update replaces a product document
func (s *Service) Update(ctx context.Context, id string, p *Product) (*Product, error) {
	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if err := s.exists(ctx, Collection, id, ErrProductNotFound); err != nil {
		return nil, err
	}

	p.ID = id
	if err := s.store.Set(ctx, Collection, id, p.toFields()); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// Delete removes a product
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.exists(ctx, Collection, id, ErrProductNotFound); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *Service) exists(ctx context.Context, collection, id string, notFound error) error {
	_, err := s.store.Get(ctx, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("failed to retrieve document: %w", err)
	}
	return nil
}

// logSkipped records a document dropped from a list read
func logSkipped(logger *logrus.Logger, collection, id string, err error) {
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"collection": collection,
		"id":         id,
	})
	var de *docstore.DecodeError
	if errors.As(err, &de) {
		entry = entry.WithField("field", de.Field)
	}
	entry.Warn("Skipping malformed document")
}
