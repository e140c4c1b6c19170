package messages

import (
	"errors"
	"net/http"
	"strconv"

	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the contact endpoints: public create, admin list and
// status changes.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Create handles POST /messages (public).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "name, email and comment are required")
		return
	}

	m, err := h.svc.Create(c.Request.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "name, email and comment are required")
		return
	default:
		logger.FromGin(c).Error("create message failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": m})
}

// List handles GET /admin/messages.
func (h *Handler) List(c *gin.Context) {
	f := ListFilter{Status: Status(c.Query("status"))}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		f.PerPage = v
	}

	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		logger.FromGin(c).Error("list messages failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list, "total": total})
}

type setStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// SetStatus handles PATCH /admin/messages/:id.
func (h *Handler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "status", "a status is required")
		return
	}

	m, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Message not found")
		return
	case errors.Is(err, ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "status", "unknown status")
		return
	default:
		logger.FromGin(c).Error("set message status failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": m})
}
