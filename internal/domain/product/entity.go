// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/furnishop/furniture-backend/internal/pkg/money"
)

// Collections
const (
	Collection         = "products"
	CategoryCollection = "categories"
)

// AllCategories is the pseudo category that disables category filtering
const AllCategories = "All"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrInvalidCategory  = errors.New("invalid category")
)

// Size holds a product's dimensions
type Size struct {
	Height   float64 `json:"height" validate:"gte=0"`
	Width    float64 `json:"width" validate:"gte=0"`
	Diameter float64 `json:"diameter" validate:"gte=0"`
}

// Product represents a catalog item
type Product struct {
	ID              string       `json:"id"`
	Name            string       `json:"name" validate:"required"`
	Description     string       `json:"description"`
	Price           money.Amount `json:"price" validate:"gte=0"`
	ImageName       string       `json:"image_name"`
	Size            Size         `json:"size"`
	Quantity        int64        `json:"quantity" validate:"gte=0"`
	Material        string       `json:"material"`
	AvailableColors []string     `json:"available_colors"`
	Category        string       `json:"category"`
}

// InStock checks if product has stock
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// Category represents a product category
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required"`
	Image string `json:"image"`
}

// Filter narrows products by category and a case-insensitive name search.
// An empty category or "All" matches every category. Input order is kept.
func Filter(products []Product, category, search string) []Product {
	category = strings.TrimSpace(category)
	search = strings.ToLower(strings.TrimSpace(search))
	anyCategory := category == "" || strings.EqualFold(category, AllCategories)

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !anyCategory && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (p *Product) toFields() docstore.Fields {
	colors := make([]interface{}, 0, len(p.AvailableColors))
	for _, c := range p.AvailableColors {
		colors = append(colors, c)
	}
	return docstore.Fields{
		"name":        p.Name,
		"description": p.Description,
		"price":       int64(p.Price),
		"imageName":   p.ImageName,
		"size": docstore.Fields{
			"height":   p.Size.Height,
			"width":    p.Size.Width,
			"diameter": p.Size.Diameter,
		},
		"quantity":        p.Quantity,
		"material":        p.Material,
		"availableColors": colors,
		"category":        p.Category,
	}
}

// decodeProduct reads a product document. Only name and price are required.
func decodeProduct(doc docstore.Document) (Product, error) {
	d := docstore.NewDecoder(Collection, doc)
	p := Product{ID: doc.ID}

	var err error
	if p.Name, err = d.String("name"); err != nil {
		return p, err
	}
	if p.Price, err = money.Decode(d, "price"); err != nil {
		return p, err
	}
	if p.Description, err = d.OptString("description"); err != nil {
		return p, err
	}
	if p.ImageName, err = d.OptString("imageName"); err != nil {
		return p, err
	}
	if p.Quantity, err = d.OptInt64("quantity"); err != nil {
		return p, err
	}
	if p.Material, err = d.OptString("material"); err != nil {
		return p, err
	}
	if p.AvailableColors, err = d.Strings("availableColors"); err != nil {
		return p, err
	}
	if p.Category, err = d.OptString("category"); err != nil {
		return p, err
	}
	if d.Has("size") {
		sd, err := d.Object("size")
		if err != nil {
			return p, err
		}
		if p.Size, err = decodeSize(sd); err != nil {
			return p, err
		}
	}
	return p, nil
}

func decodeSize(d *docstore.Decoder) (Size, error) {
	var s Size
	for field, dst := range map[string]*float64{
		"height":   &s.Height,
		"width":    &s.Width,
		"diameter": &s.Diameter,
	} {
		if !d.Has(field) {
			continue
		}
		v, err := d.Float64(field)
		if err != nil {
			return s, err
		}
		*dst = v
	}
	return s, nil
}

func (c *Category) toFields() docstore.Fields {
	return docstore.Fields{
		"name":  c.Name,
		"image": c.Image,
	}
}

func decodeCategory(doc docstore.Document) (Category, error) {
	d := docstore.NewDecoder(CategoryCollection, doc)
	c := Category{ID: doc.ID}

	var err error
	if c.Name, err = d.String("name"); err != nil {
		return c, err
	}
	if c.Image, err = d.OptString("image"); err != nil {
		return c, err
	}
	return c, nil
}
