package audit

import (
	"net/http"
	"strconv"

	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the admin audit log listing.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// List handles GET /admin/audit.
func (h *Handler) List(c *gin.Context) {
	f := ListFilter{
		Type:         EventType(c.Query("type")),
		TargetUserID: c.Query("user_id"),
		OrderID:      c.Query("order_id"),
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		f.PerPage = v
	}

	events, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		logger.FromGin(c).Error("list audit events failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": total})
}
