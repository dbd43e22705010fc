// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/furnishop/furniture-backend/internal/pkg/money"
)

// Collection is the document collection orders live in
const Collection = "orders"

// Status values the shop uses. Status is free text; these are the known ones.
const (
	StatusPending   = "Pending"
	StatusAccepted  = "Accepted"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
)

// Payment methods offered at checkout
const (
	PaymentCreditCard     = "Credit Card"
	PaymentPayPal         = "PayPal"
	PaymentCashOnDelivery = "Cash on Delivery"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrNotLoggedIn     = errors.New("user is not logged in")
	ErrProfileNotFound = errors.New("user profile not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCheckout = errors.New("invalid checkout request")
	ErrCartNotCleared  = errors.New("order placed but cart could not be cleared")
)

// OrderProduct is the snapshot of a cart line taken when the order is placed
type OrderProduct struct {
	ProductID    string       `json:"product_id" binding:"required"`
	ProductName  string       `json:"product_name" binding:"required"`
	Quantity     int64        `json:"quantity" binding:"required,min=1"`
	Price        money.Amount `json:"price" binding:"min=0"`
	ProductImage string       `json:"product_image,omitempty"`
}

// Total returns price * quantity
func (p OrderProduct) Total() money.Amount {
	return p.Price.Times(p.Quantity)
}

// Order represents a placed order
type Order struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	UserName      string         `json:"user_name"`
	OrderDate     time.Time      `json:"order_date"`
	Products      []OrderProduct `json:"products"`
	TotalAmount   money.Amount   `json:"total_amount"`
	Status        string         `json:"status"`
	Address       string         `json:"address"`
	PaymentMethod string         `json:"payment_method"`
	Profit        *money.Amount  `json:"profit,omitempty"`
}

// ProductsTotal sums the snapshot lines
func (o *Order) ProductsTotal() money.Amount {
	var total money.Amount
	for _, p := range o.Products {
		total += p.Total()
	}
	return total
}

// ItemCount is the sum of snapshot quantities
func (o *Order) ItemCount() int64 {
	var n int64
	for _, p := range o.Products {
		n += p.Quantity
	}
	return n
}

// IsPending checks whether the order still waits for the shop
func (o *Order) IsPending() bool {
	return strings.EqualFold(o.Status, StatusPending)
}

// Validate checks an order written by an admin
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidOrder)
	}
	if strings.TrimSpace(o.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidOrder)
	}
	if strings.TrimSpace(o.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment method is required", ErrInvalidOrder)
	}
	if strings.TrimSpace(o.Status) == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidOrder)
	}
	if len(o.Products) == 0 {
		return fmt.Errorf("%w: at least one product is required", ErrInvalidOrder)
	}
	for i, p := range o.Products {
		if p.ProductID == "" || p.Quantity < 1 || p.Price < 0 {
			return fmt.Errorf("%w: product %d is incomplete", ErrInvalidOrder, i)
		}
	}
	if o.TotalAmount < 0 {
		return fmt.Errorf("%w: total amount cannot be negative", ErrInvalidOrder)
	}
	return nil
}

func (o *Order) toFields() docstore.Fields {
	products := make([]interface{}, 0, len(o.Products))
	for _, p := range o.Products {
		line := docstore.Fields{
			"productId":   p.ProductID,
			"productName": p.ProductName,
			"quantity":    p.Quantity,
			"price":       int64(p.Price),
		}
		if p.ProductImage != "" {
			line["productImage"] = p.ProductImage
		}
		products = append(products, line)
	}

	fields := docstore.Fields{
		"userId":        o.UserID,
		"userName":      o.UserName,
		"orderDate":     o.OrderDate.UTC(),
		"products":      products,
		"totalAmount":   int64(o.TotalAmount),
		"status":        o.Status,
		"address":       o.Address,
		"paymentMethod": o.PaymentMethod,
	}
	if o.Profit != nil {
		fields["profit"] = int64(*o.Profit)
	}
	return fields
}

// decodeOrder reads an order document
func decodeOrder(doc docstore.Document) (*Order, error) {
	d := docstore.NewDecoder(Collection, doc)
	o := &Order{ID: doc.ID}

	var err error
	if o.UserID, err = d.String("userId"); err != nil {
		return nil, err
	}
	if o.UserName, err = d.OptString("userName"); err != nil {
		return nil, err
	}
	if o.OrderDate, err = d.Time("orderDate"); err != nil {
		return nil, err
	}
	if o.TotalAmount, err = money.Decode(d, "totalAmount"); err != nil {
		return nil, err
	}
	if o.Status, err = d.String("status"); err != nil {
		return nil, err
	}
	if o.Address, err = d.OptString("address"); err != nil {
		return nil, err
	}
	if o.PaymentMethod, err = d.OptString("paymentMethod"); err != nil {
		return nil, err
	}

	profit, present, err := money.DecodeOptional(d, "profit")
	if err != nil {
		return nil, err
	}
	if present {
		o.Profit = &profit
	}

	items, err := d.OptSlice("products")
	if err != nil {
		return nil, err
	}
	o.Products = make([]OrderProduct, 0, len(items))
	for i, item := range items {
		pd, err := d.Element("products", i, item)
		if err != nil {
			return nil, err
		}
		var p OrderProduct
		if p.ProductID, err = pd.String("productId"); err != nil {
			return nil, err
		}
		if p.ProductName, err = pd.OptString("productName"); err != nil {
			return nil, err
		}
		if p.Quantity, err = pd.Int64("quantity"); err != nil {
			return nil, err
		}
		if p.Price, err = money.Decode(pd, "price"); err != nil {
			return nil, err
		}
		if p.ProductImage, err = pd.OptString("productImage"); err != nil {
			return nil, err
		}
		o.Products = append(o.Products, p)
	}
	return o, nil
}
