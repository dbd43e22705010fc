// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"

	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/furnishop/furniture-backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserAdminHandler handles admin user management endpoints
type UserAdminHandler struct {
	adminService *user.AdminService
	logger       *logrus.Logger
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(adminService *user.AdminService, logger *logrus.Logger) *UserAdminHandler {
	return &UserAdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// GetUsers handles GET /admin/users
func (h *UserAdminHandler) GetUsers(c *gin.Context) {
	users, err := h.adminService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users retrieved successfully",
		"data":    users,
	})
}

// DeleteUser handles DELETE /admin/users/:id
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if current, _ := middleware.GetUserIDFromContext(c); current == id {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Admins cannot delete their own account",
		})
		return
	}

	if err := h.adminService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

// SetUserRole handles PUT /admin/users/:id/role
func (h *UserAdminHandler) SetUserRole(c *gin.Context) {
	var req user.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.adminService.SetRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		respondError(c, h.logger, err, "Failed to update user role")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User role updated successfully",
		"data": gin.H{
			"user_id": c.Param("id"),
			"role":    req.Role,
		},
	})
}
