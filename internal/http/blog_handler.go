package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"st-blogs/internal/service"
)

// BlogHandler mantiene dependencias para los endpoints de blogs.
// A diferencia de las rutas de auth, estas responden errores como {"error": ...}.
type BlogHandler struct {
	logger   *zap.Logger
	blogServ *service.BlogService
}

// NewBlogHandler crea una instancia de BlogHandler con dependencias necesarias.
func NewBlogHandler(logger *zap.Logger, blogServ *service.BlogService) *BlogHandler {
	return &BlogHandler{
		logger:   logger,
		blogServ: blogServ,
	}
}

type blogRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Author  string `json:"author" binding:"required"`
	Image   string `json:"image"`
}

// List maneja GET /api/blogs (protegido): posts del usuario logueado.
func (h *BlogHandler) List(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	blogs, err := h.blogServ.ListByOwner(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list blogs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, blogs)
}

// ListAll maneja GET /api/blogs/all (público): el feed completo.
func (h *BlogHandler) ListAll(c *gin.Context) {
	blogs, err := h.blogServ.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list all blogs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching blogs"})
		return
	}
	c.JSON(http.StatusOK, blogs)
}

// GetByID maneja GET /api/blogs/:id (público).
func (h *BlogHandler) GetByID(c *gin.Context) {
	blog, err := h.blogServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBlogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog not found"})
			return
		}
		h.logger.Error("fetch blog failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, blog)
}

// Create maneja POST /api/blogs (protegido).
func (h *BlogHandler) Create(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	blog, err := h.blogServ.Create(c.Request.Context(), claims.UserID, service.BlogInput{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
		Image:   req.Image,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.logger.Error("create blog failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save blog"})
		return
	}

	c.JSON(http.StatusCreated, blog)
}

// Update maneja PUT /api/blogs/:id (protegido, sólo el dueño).
func (h *BlogHandler) Update(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	blog, err := h.blogServ.Update(c.Request.Context(), c.Param("id"), claims.UserID, service.BlogInput{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
		Image:   req.Image,
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrBlogNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog not found"})
		case errors.Is(err, service.ErrNotBlogOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		default:
			h.logger.Error("update blog failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update blog"})
		}
		return
	}

	c.JSON(http.StatusOK, blog)
}

// Delete maneja DELETE /api/blogs/:id (protegido, sólo el dueño).
func (h *BlogHandler) Delete(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.blogServ.Delete(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlogNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog not found"})
		case errors.Is(err, service.ErrNotBlogOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		default:
			h.logger.Error("delete blog failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete blog"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted successfully"})
}
