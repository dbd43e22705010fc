// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/furnishop/furniture-backend/internal/domain/cart"
	"github.com/furnishop/furniture-backend/internal/domain/news"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/domain/product"
	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/furnishop/furniture-backend/internal/interfaces/http/middleware"
	"github.com/furnishop/furniture-backend/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{product.ErrProductNotFound, http.StatusNotFound},
	{product.ErrCategoryNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{news.ErrNewsNotFound, http.StatusNotFound},
	{news.ErrCommentNotFound, http.StatusNotFound},
	{user.ErrUserNotFound, http.StatusNotFound},
	{order.ErrProfileNotFound, http.StatusNotFound},

	{product.ErrInvalidProduct, http.StatusBadRequest},
	{product.ErrInvalidCategory, http.StatusBadRequest},
	{order.ErrInvalidOrder, http.StatusBadRequest},
	{order.ErrInvalidCheckout, http.StatusBadRequest},
	{order.ErrEmptyCart, http.StatusBadRequest},
	{cart.ErrInvalidLine, http.StatusBadRequest},
	{cart.ErrQuantityExceeded, http.StatusBadRequest},
	{news.ErrInvalidNews, http.StatusBadRequest},
	{news.ErrInvalidComment, http.StatusBadRequest},
	{user.ErrInvalidRole, http.StatusBadRequest},
	{user.ErrNoFieldsToUpdate, http.StatusBadRequest},
	{user.ErrIncorrectPassword, http.StatusBadRequest},
	{auth.ErrWeakPassword, http.StatusBadRequest},

	{order.ErrNotLoggedIn, http.StatusUnauthorized},
	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{user.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrTokenRevoked, http.StatusUnauthorized},
	{user.ErrRoleNotFound, http.StatusForbidden},

	{user.ErrEmailTaken, http.StatusConflict},
	{cart.ErrCartConflict, http.StatusConflict},
}

// statusFor maps a domain error to its HTTP status; unknown errors are 500
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the error envelope. Client errors carry the domain
// message; server errors are logged and answered with message only.
func respondError(c *gin.Context, logger *logrus.Logger, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error(message)
		c.JSON(status, gin.H{
			"error": message,
		})
		return
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

// respondBindError answers a request whose body or query failed to bind
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// requireUserID returns the authenticated user id or answers 401
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return "", false
	}
	return userID, true
}
