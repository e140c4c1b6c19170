package addresses

import (
	"errors"
	"net/http"

	"commerce-platform/internal/auth"
	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the signed-in user's address book.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func userFrom(c *gin.Context) (string, bool) {
	u, err := auth.CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return "", false
	}
	return u.ID, true
}

// List handles GET /addresses.
func (h *Handler) List(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		logger.FromGin(c).Error("list addresses failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": list})
}

// Get handles GET /addresses/:id.
func (h *Handler) Get(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Address not found")
		return
	default:
		logger.FromGin(c).Error("get address failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": a})
}

// Create handles POST /addresses.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "invalid address payload")
		return
	}

	a, err := h.svc.Create(c.Request.Context(), userID, req)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "", err.Error())
		return
	default:
		logger.FromGin(c).Error("create address failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": a})
}

// Update handles PUT /addresses/:id.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "invalid address payload")
		return
	}

	a, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), req)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Address not found")
		return
	case errors.Is(err, ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "", err.Error())
		return
	default:
		logger.FromGin(c).Error("update address failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": a})
}

// Delete handles DELETE /addresses/:id.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}
	err := h.svc.Delete(c.Request.Context(), userID, c.Param("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Address not found")
		return
	default:
		logger.FromGin(c).Error("delete address failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetDefault handles POST /addresses/:id/default.
func (h *Handler) SetDefault(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}
	a, err := h.svc.SetDefault(c.Request.Context(), userID, c.Param("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Address not found")
		return
	default:
		logger.FromGin(c).Error("set default address failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": a})
}
