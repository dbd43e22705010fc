// internal/domain/product/category_service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// CategoryService handles category business logic
type CategoryService struct {
	store    docstore.Store
	logger   *logrus.Logger
	validate *validator.Validate
}

// NewCategoryService creates a new category service
func NewCategoryService(store docstore.Store, logger *logrus.Logger) *CategoryService {
	return &CategoryService{
		store:    store,
		logger:   logger,
		validate: validator.New(),
	}
}

// CategoryWithProductCount represents category with product count
type CategoryWithProductCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}

// FetchCategories returns every category, skipping documents without a name
func (s *CategoryService) FetchCategories(ctx context.Context) ([]Category, error) {
	docs, err := s.store.Query(ctx, CategoryCollection, docstore.Query{})
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch categories")
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	categories := make([]Category, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeCategory(doc)
		if err != nil {
			logSkipped(s.logger, CategoryCollection, doc.ID, err)
			continue
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// FetchCategoriesWithProductCount counts products per category name
func (s *CategoryService) FetchCategoriesWithProductCount(ctx context.Context) ([]CategoryWithProductCount, error) {
	categories, err := s.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]CategoryWithProductCount, 0, len(categories))
	for _, c := range categories {
		n, err := s.store.Count(ctx, Collection, docstore.Where("category", c.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		result = append(result, CategoryWithProductCount{Category: c, ProductCount: n})
	}
	return result, nil
}

// Create adds a category
func (s *CategoryService) Create(ctx context.Context, c *Category) (*Category, error) {
	if err := s.validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}

	id, err := s.store.Add(ctx, CategoryCollection, c.toFields())
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	c.ID = id
	return c, nil
}

// Update renames a category or changes its image. Products keep the old name.
func (s *CategoryService) Update(ctx context.Context, id string, c *Category) (*Category, error) {
	if err := s.validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}

	err := s.store.Update(ctx, CategoryCollection, id, c.toFields())
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	c.ID = id
	return c, nil
}

// Delete removes a category
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, CategoryCollection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to retrieve category: %w", err)
	}
	if err := s.store.Delete(ctx, CategoryCollection, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
