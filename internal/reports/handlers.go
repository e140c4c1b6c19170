package reports

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the admin report endpoints. Dates come in as ?from= and
// ?to= in YYYY-MM-DD form; to defaults to tomorrow so "today" is included.
type Handler struct {
	svc   *Service
	clock func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, clock: time.Now}
}

func (h *Handler) rangeFromQuery(c *gin.Context) (TimeRange, bool) {
	now := h.clock().UTC()
	r := TimeRange{
		From: now.AddDate(0, 0, -30).Truncate(24 * time.Hour),
		To:   now.AddDate(0, 0, 1).Truncate(24 * time.Hour),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpapi.AbortWithError(c, http.StatusBadRequest, "from", "expected YYYY-MM-DD")
			return TimeRange{}, false
		}
		r.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpapi.AbortWithError(c, http.StatusBadRequest, "to", "expected YYYY-MM-DD")
			return TimeRange{}, false
		}
		// Inclusive end date: bump to the next day boundary.
		r.To = t.AddDate(0, 0, 1)
	}
	if !r.valid() {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "from must be before to")
		return TimeRange{}, false
	}
	return r, true
}

func limitFromQuery(c *gin.Context) int {
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		return v
	}
	return 0
}

// Sales handles GET /admin/reports/sales.
func (h *Handler) Sales(c *gin.Context) {
	r, ok := h.rangeFromQuery(c)
	if !ok {
		return
	}
	out, err := h.svc.Sales(c.Request.Context(), r)
	if err != nil {
		h.fail(c, "sales report failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Returns handles GET /admin/reports/returns.
func (h *Handler) Returns(c *gin.Context) {
	r, ok := h.rangeFromQuery(c)
	if !ok {
		return
	}
	out, err := h.svc.Returns(c.Request.Context(), r)
	if err != nil {
		h.fail(c, "returns report failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// TopProducts handles GET /admin/reports/products.
func (h *Handler) TopProducts(c *gin.Context) {
	r, ok := h.rangeFromQuery(c)
	if !ok {
		return
	}
	out, err := h.svc.TopProducts(c.Request.Context(), r, limitFromQuery(c))
	if err != nil {
		h.fail(c, "product report failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

// TopCustomers handles GET /admin/reports/customers.
func (h *Handler) TopCustomers(c *gin.Context) {
	r, ok := h.rangeFromQuery(c)
	if !ok {
		return
	}
	out, err := h.svc.TopCustomers(c.Request.Context(), r, limitFromQuery(c))
	if err != nil {
		h.fail(c, "customer report failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": out})
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	if errors.Is(err, ErrInvalidRequest) {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "invalid report range")
		return
	}
	logger.FromGin(c).Error(msg, "error", err.Error())
	httpapi.AbortInternal(c, "")
}
