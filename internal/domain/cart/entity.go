// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/furnishop/furniture-backend/internal/pkg/money"
	"github.com/google/uuid"
)

// Collection is the document collection carts live in, keyed by user id
const Collection = "carts"

// MaxLineQuantity caps how many units of one product a cart can hold
const MaxLineQuantity = 1000

var (
	ErrLineNotFound     = errors.New("product not in cart")
	ErrInvalidLine      = errors.New("invalid cart line")
	ErrQuantityExceeded = errors.New("too many units of this product in cart")
	ErrCartConflict     = errors.New("cart was modified concurrently, please retry")
)

// Line is one product entry in a cart
type Line struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	Name      string       `json:"name"`
	Category  string       `json:"category"`
	Price     money.Amount `json:"price"`
	Quantity  int64        `json:"quantity"`
	Image     string       `json:"image"`
}

// TotalPrice returns price * quantity
func (l Line) TotalPrice() money.Amount {
	return l.Price.Times(l.Quantity)
}

// Validate checks the line can be stored
func (l Line) Validate() error {
	if l.ProductID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidLine)
	}
	if l.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidLine)
	}
	if l.Quantity > MaxLineQuantity {
		return fmt.Errorf("%w: quantity cannot exceed %d", ErrInvalidLine, MaxLineQuantity)
	}
	if l.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidLine)
	}
	return nil
}

// Cart is a user's cart. It is absent (nil) rather than empty once the last line goes.
type Cart struct {
	ID      string `json:"id"`
	Lines   []Line `json:"products"`
	Version int64  `json:"-"`
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	LineCount     int          `json:"line_count"`
	TotalQuantity int64        `json:"total_quantity"`
	TotalPrice    money.Amount `json:"total_price"`
}

// New creates a cart holding a single line
func New(userID string, line Line) *Cart {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	return &Cart{ID: userID, Lines: []Line{line}}
}

// AddLine merges the line into an existing one with the same product id or appends it.
// A merge that would take the line past MaxLineQuantity leaves the cart unchanged.
func (c *Cart) AddLine(line Line) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != line.ProductID {
			continue
		}
		if line.Quantity > MaxLineQuantity-c.Lines[i].Quantity {
			return fmt.Errorf("%w: at most %d allowed", ErrQuantityExceeded, MaxLineQuantity)
		}
		c.Lines[i].Quantity += line.Quantity
		return nil
	}
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// RemoveLine takes one unit of the product out, dropping the line at quantity 1
func (c *Cart) RemoveLine(productID string) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if c.Lines[i].Quantity > 1 {
			c.Lines[i].Quantity--
		} else {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
		return nil
	}
	return ErrLineNotFound
}

// RemoveAllOfProduct drops every line for the product and reports whether any matched
func (c *Cart) RemoveAllOfProduct(productID string) bool {
	kept := c.Lines[:0]
	removed := false
	for _, l := range c.Lines {
		if l.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	c.Lines = kept
	return removed
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Total is the sum of line totals; 0 for an absent cart
func (c *Cart) Total() money.Amount {
	if c == nil {
		return 0
	}
	var total money.Amount
	for _, l := range c.Lines {
		total += l.TotalPrice()
	}
	return total
}

// ItemCount is the sum of quantities; 0 for an absent cart
func (c *Cart) ItemCount() int64 {
	if c == nil {
		return 0
	}
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Totals summarises the cart
func (c *Cart) Totals() CartTotals {
	if c == nil {
		return CartTotals{}
	}
	return CartTotals{
		LineCount:     len(c.Lines),
		TotalQuantity: c.ItemCount(),
		TotalPrice:    c.Total(),
	}
}

// clone copies the cart so a failed write never leaves a half-applied mutation visible
func (c *Cart) clone() *Cart {
	out := *c
	out.Lines = append([]Line(nil), c.Lines...)
	return &out
}

// toFields encodes the cart document. totalPrice and totalQuantity are always recomputed.
func (c *Cart) toFields() docstore.Fields {
	products := make([]interface{}, 0, len(c.Lines))
	for _, l := range c.Lines {
		products = append(products, docstore.Fields{
			"id":        l.ID,
			"productId": l.ProductID,
			"name":      l.Name,
			"category":  l.Category,
			"price":     int64(l.Price),
			"quantity":  l.Quantity,
			"image":     l.Image,
		})
	}
	return docstore.Fields{
		"id":            c.ID,
		"products":      products,
		"totalPrice":    int64(c.Total()),
		"totalQuantity": c.ItemCount(),
	}
}

// decodeCart reads a cart document
func decodeCart(doc docstore.Document) (*Cart, error) {
	d := docstore.NewDecoder(Collection, doc)

	version, err := d.OptInt64(docstore.VersionField)
	if err != nil {
		return nil, err
	}
	items, err := d.OptSlice("products")
	if err != nil {
		return nil, err
	}

	if !d.Has(docstore.VersionField) {
		version = docstore.Unversioned
	}

	c := &Cart{ID: doc.ID, Version: version, Lines: make([]Line, 0, len(items))}
	for i, item := range items {
		ld, err := d.Element("products", i, item)
		if err != nil {
			return nil, err
		}
		line, err := decodeLine(ld)
		if err != nil {
			return nil, err
		}
		c.Lines = append(c.Lines, line)
	}
	return c, nil
}

func decodeLine(d *docstore.Decoder) (Line, error) {
	var (
		l   Line
		err error
	)
	if l.ID, err = d.OptString("id"); err != nil {
		return l, err
	}
	if l.ProductID, err = decodeProductID(d); err != nil {
		return l, err
	}
	if l.Name, err = d.String("name"); err != nil {
		return l, err
	}
	if l.Category, err = d.OptString("category"); err != nil {
		return l, err
	}
	if l.Price, err = money.Decode(d, "price"); err != nil {
		return l, err
	}
	if l.Quantity, err = d.Int64("quantity"); err != nil {
		return l, err
	}
	if l.Image, err = d.OptString("image"); err != nil {
		return l, err
	}
	return l, nil
}

// decodeProductID accepts the numeric product ids older cart documents carry
func decodeProductID(d *docstore.Decoder) (string, error) {
	raw, ok := d.Raw("productId")
	if ok {
		switch v := raw.(type) {
		case int64:
			return fmt.Sprintf("%d", v), nil
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v)), nil
			}
		}
	}
	return d.String("productId")
}
