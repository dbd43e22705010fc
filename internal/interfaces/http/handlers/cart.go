// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/furnishop/furniture-backend/internal/domain/cart"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	logger      *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// CartResponse is a cart together with its derived totals. Cart is null when absent.
type CartResponse struct {
	Cart   *cart.Cart      `json:"cart"`
	Totals cart.CartTotals `json:"totals"`
}

func (h *CartHandler) respondCart(c *gin.Context, message string, userCart *cart.Cart) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data": CartResponse{
			Cart:   userCart,
			Totals: h.cartService.Totals(userCart),
		},
	})
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	userCart, err := h.cartService.Load(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve cart")
		return
	}

	h.respondCart(c, "Cart retrieved successfully", userCart)
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	userCart, err := h.cartService.Load(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": h.cartService.Totals(userCart).TotalQuantity,
		},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req cart.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userCart, err := h.cartService.AddLine(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add item to cart")
		return
	}

	h.respondCart(c, "Item added to cart successfully", userCart)
}

// RemoveFromCart handles DELETE /cart/items/:productId, taking one unit out
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	userCart, err := h.cartService.RemoveLine(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to remove item from cart")
		return
	}

	h.respondCart(c, "Item removed from cart successfully", userCart)
}

// RemoveProduct handles DELETE /cart/items/:productId/all
func (h *CartHandler) RemoveProduct(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	userCart, err := h.cartService.RemoveAllOfProduct(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to remove product from cart")
		return
	}

	h.respondCart(c, "Product removed from cart successfully", userCart)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}
