// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxRecentOrders caps ?limit on the admin recent orders listing
const maxRecentOrders = 50

// OrderHandler handles checkout and order endpoints
type OrderHandler struct {
	orderService *order.Service
	logger       *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Checkout handles POST /orders/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.UserID = userID

	placed, err := h.orderService.PlaceOrder(c.Request.Context(), req)
	if errors.Is(err, order.ErrCartNotCleared) && placed != nil {
		c.JSON(http.StatusCreated, gin.H{
			"message": "Order placed successfully",
			"data":    placed,
			"warning": "Your cart could not be emptied, please clear it manually",
		})
		return
	}
	if err != nil {
		respondError(c, h.logger, err, "Failed to place order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// GetOrders handles GET /orders (user's own orders)
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /orders/:id. Users only see their own orders.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, ok := h.loadOwnOrder(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// loadOwnOrder fetches :id and answers 404 when it belongs to another
// non-admin user, so order ids cannot be probed.
func (h *OrderHandler) loadOwnOrder(c *gin.Context) (*order.Order, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}

	o, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve order")
		return nil, false
	}
	if o.UserID != userID && !middleware.IsAdminFromContext(c) {
		respondError(c, h.logger, order.ErrOrderNotFound, "Failed to retrieve order")
		return nil, false
	}
	return o, true
}

// AdminGetOrders handles GET /admin/orders
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	orders, err := h.orderService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// AdminGetRecentOrders handles GET /admin/orders/recent?limit=
func (h *OrderHandler) AdminGetRecentOrders(c *gin.Context) {
	limit := order.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRecentOrders {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = n
	}

	orders, err := h.orderService.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve recent orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recent orders retrieved successfully",
		"data":    orders,
	})
}

// AdminCreateOrder handles POST /admin/orders
func (h *OrderHandler) AdminCreateOrder(c *gin.Context) {
	var req order.Order
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.orderService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    created,
	})
}

// AdminUpdateOrder handles PUT /admin/orders/:id
func (h *OrderHandler) AdminUpdateOrder(c *gin.Context) {
	var req order.Order
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.orderService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated successfully",
		"data":    updated,
	})
}

// AdminAcceptOrder handles PUT /admin/orders/:id/accept
func (h *OrderHandler) AdminAcceptOrder(c *gin.Context) {
	if err := h.orderService.Accept(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to accept order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order accepted successfully",
	})
}

// AdminUpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	var req order.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, h.logger, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data": gin.H{
			"id":     c.Param("id"),
			"status": req.Status,
		},
	})
}

// AdminDeleteOrder handles DELETE /admin/orders/:id
func (h *OrderHandler) AdminDeleteOrder(c *gin.Context) {
	if err := h.orderService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to delete order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted successfully",
	})
}
