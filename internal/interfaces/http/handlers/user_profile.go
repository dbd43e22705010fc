// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/furnishop/furniture-backend/internal/domain/cart"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// dashboardRecentOrders caps the orders shown on the user dashboard
const dashboardRecentOrders = 5

// UserProfileHandler handles user profile endpoints
type UserProfileHandler struct {
	userService  *user.Service
	orderService *order.Service
	cartService  *cart.Service
	logger       *logrus.Logger
}

// NewUserProfileHandler creates a new user profile handler
func NewUserProfileHandler(userService *user.Service, orderService *order.Service, cartService *cart.Service, logger *logrus.Logger) *UserProfileHandler {
	return &UserProfileHandler{
		userService:  userService,
		orderService: orderService,
		cartService:  cartService,
		logger:       logger,
	}
}

// GetProfile handles GET /users/profile
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

// UpdateProfile handles PUT /users/profile
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req user.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

// GetDashboard handles GET /users/dashboard
func (h *UserProfileHandler) GetDashboard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	profile, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve profile")
		return
	}

	orders, err := h.orderService.ListByUser(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve orders")
		return
	}
	recent := orders
	if len(recent) > dashboardRecentOrders {
		recent = recent[:dashboardRecentOrders]
	}

	userCart, err := h.cartService.Load(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard retrieved successfully",
		"data": gin.H{
			"profile":       profile,
			"order_count":   len(orders),
			"recent_orders": recent,
			"cart":          h.cartService.Totals(userCart),
		},
	})
}

// ChangePassword handles PUT /users/password
func (h *UserProfileHandler) ChangePassword(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, h.logger, err, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

// ChangeEmail handles PUT /users/email
func (h *UserProfileHandler) ChangeEmail(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req user.ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ChangeEmail(c.Request.Context(), userID, &req); err != nil {
		respondError(c, h.logger, err, "Failed to change email")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email changed successfully",
	})
}
