package profile

import (
	"errors"
	"net/http"

	"commerce-platform/internal/auth"
	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the signed-in user's profile.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Get handles GET /profile.
func (h *Handler) Get(c *gin.Context) {
	u, err := auth.CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return
	}
	p, err := h.svc.Get(c.Request.Context(), u.ID)
	if err != nil {
		logger.FromGin(c).Error("get profile failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// Save handles PUT /profile.
func (h *Handler) Save(c *gin.Context) {
	u, err := auth.CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "invalid profile payload")
		return
	}

	p, err := h.svc.Save(c.Request.Context(), u.ID, req)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "", err.Error())
		return
	default:
		logger.FromGin(c).Error("save profile failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}
