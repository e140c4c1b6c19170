package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"commerce-platform/internal/audit"
	"commerce-platform/internal/auth"
	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes customer and admin order endpoints. Customers only ever
// see their own orders; the admin surface can list everything and drive the
// lifecycle, with each manual transition audited.
type Handler struct {
	svc   *Service
	audit *audit.Service

	// onRefund fires after a refund transition commits. Best effort; wired
	// to the refund email in production.
	onRefund func(ctx context.Context, o Order)
}

func NewHandler(svc *Service, auditSvc *audit.Service) *Handler {
	return &Handler{svc: svc, audit: auditSvc}
}

// WithRefundHook installs a callback invoked after each successful refund.
func (h *Handler) WithRefundHook(fn func(ctx context.Context, o Order)) *Handler {
	h.onRefund = fn
	return h
}

// ListMine handles GET /orders.
func (h *Handler) ListMine(c *gin.Context) {
	u, err := auth.CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return
	}

	f := listFilterFromQuery(c)
	f.UserID = u.ID
	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		logger.FromGin(c).Error("list orders failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": withTotals(list), "total": total})
}

// GetMine handles GET /orders/:id.
func (h *Handler) GetMine(c *gin.Context) {
	u, err := auth.CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return
	}

	o, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil || o.UserID != u.ID {
		// Someone else's order looks identical to a missing one.
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Order not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": orderView(o)})
}

// AdminList handles GET /admin/orders.
func (h *Handler) AdminList(c *gin.Context) {
	f := listFilterFromQuery(c)
	f.UserID = c.Query("user_id")
	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		logger.FromGin(c).Error("admin list orders failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": withTotals(list), "total": total})
}

// AdminGet handles GET /admin/orders/:id.
func (h *Handler) AdminGet(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Order not found")
		return
	default:
		logger.FromGin(c).Error("admin get order failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": orderView(o)})
}

type updateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// AdminUpdateStatus handles PATCH /admin/orders/:id/status.
func (h *Handler) AdminUpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "status", "a target status is required")
		return
	}

	before, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Order not found")
		return
	default:
		logger.FromGin(c).Error("get order failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}

	o, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Order not found")
		return
	case errors.Is(err, ErrInvalidTransition):
		httpapi.AbortWithError(c, http.StatusConflict, "status",
			fmt.Sprintf("Cannot move order from %s to %s", before.Status, req.Status))
		return
	default:
		logger.FromGin(c).Error("update order status failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}

	h.logTransition(c, before, o)
	if h.onRefund != nil && o.Status == StatusRefunded && before.Status != StatusRefunded {
		h.onRefund(c.Request.Context(), o)
	}
	c.JSON(http.StatusOK, gin.H{"order": orderView(o)})
}

func (h *Handler) logTransition(c *gin.Context, before, after Order) {
	if h.audit == nil {
		return
	}
	actor := audit.Actor{IP: c.ClientIP()}
	if u, err := auth.CurrentUser(c.Request.Context()); err == nil {
		actor.UserID = u.ID
		actor.Email = u.Email
	}
	eventType := audit.EventOrderStatusChanged
	if after.Status == StatusRefunded {
		eventType = audit.EventOrderRefunded
	}
	msg := fmt.Sprintf("%s -> %s", before.Status, after.Status)
	if err := h.audit.LogOrderAction(c.Request.Context(), eventType, actor, after.ID, msg, ""); err != nil {
		logger.FromGin(c).Warn("audit append failed", "error", err.Error())
	}
}

// view wraps an order with its computed totals for API responses.
type view struct {
	Order
	SubtotalMinor int64 `json:"subtotal_minor"`
	TotalMinor    int64 `json:"total_minor"`
}

func orderView(o Order) view {
	return view{Order: o, SubtotalMinor: o.SubtotalMinor(), TotalMinor: o.TotalMinor()}
}

func withTotals(list []Order) []view {
	out := make([]view, 0, len(list))
	for _, o := range list {
		out = append(out, orderView(o))
	}
	return out
}

func listFilterFromQuery(c *gin.Context) ListFilter {
	f := ListFilter{Status: OrderStatus(c.Query("status"))}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		f.PerPage = v
	}
	return f
}
