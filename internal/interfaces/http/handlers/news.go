// internal/interfaces/http/handlers/news.go
package handlers

import (
	"net/http"

	"github.com/furnishop/furniture-backend/internal/domain/news"
	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/furnishop/furniture-backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewsHandler handles news and comment endpoints
type NewsHandler struct {
	newsService *news.Service
	userService *user.Service
	logger      *logrus.Logger
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(newsService *news.Service, userService *user.Service, logger *logrus.Logger) *NewsHandler {
	return &NewsHandler{
		newsService: newsService,
		userService: userService,
		logger:      logger,
	}
}

// GetNews handles GET /news
func (h *NewsHandler) GetNews(c *gin.Context) {
	articles, err := h.newsService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve news")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "News retrieved successfully",
		"data":    articles,
	})
}

// GetArticle handles GET /news/:id
func (h *NewsHandler) GetArticle(c *gin.Context) {
	article, err := h.newsService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve news")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "News retrieved successfully",
		"data":    article,
	})
}

// GetComments handles GET /news/:id/comments
func (h *NewsHandler) GetComments(c *gin.Context) {
	comments, err := h.newsService.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comments retrieved successfully",
		"data":    comments,
	})
}

// AddComment handles POST /news/:id/comments. The author name comes from the profile.
func (h *NewsHandler) AddComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req news.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve profile")
		return
	}

	comment, err := h.newsService.AddComment(c.Request.Context(), c.Param("id"), news.Comment{
		UserID:   userID,
		UserName: profile.Name,
		Comment:  req.Comment,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"data":    comment,
	})
}

// DeleteComment handles DELETE /news/:id/comments/:commentId.
// Only the comment's author or an admin may delete it.
func (h *NewsHandler) DeleteComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	newsID, commentID := c.Param("id"), c.Param("commentId")

	comment, err := h.newsService.GetComment(c.Request.Context(), newsID, commentID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve comment")
		return
	}
	if comment.UserID != userID && !middleware.IsAdminFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You can only delete your own comments",
		})
		return
	}

	if err := h.newsService.DeleteComment(c.Request.Context(), newsID, commentID); err != nil {
		respondError(c, h.logger, err, "Failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}

// AdminCreateNews handles POST /admin/news
func (h *NewsHandler) AdminCreateNews(c *gin.Context) {
	var req news.News
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	article, err := h.newsService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create news")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "News created successfully",
		"data":    article,
	})
}

// AdminUpdateNews handles PUT /admin/news/:id
func (h *NewsHandler) AdminUpdateNews(c *gin.Context) {
	var req news.News
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	article, err := h.newsService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update news")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "News updated successfully",
		"data":    article,
	})
}

// AdminDeleteNews handles DELETE /admin/news/:id
func (h *NewsHandler) AdminDeleteNews(c *gin.Context) {
	if err := h.newsService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to delete news")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "News deleted successfully",
	})
}
