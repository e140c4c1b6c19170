package customers

import (
	"errors"
	"net/http"
	"strconv"

	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the admin customer directory.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// List handles GET /admin/customers.
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		f.PerPage = v
	}

	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		logger.FromGin(c).Error("list customers failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": list, "total": total})
}

// Get handles GET /admin/customers/:id.
func (h *Handler) Get(c *gin.Context) {
	customer, history, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Customer not found")
		return
	default:
		logger.FromGin(c).Error("get customer failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "orders": history})
}
