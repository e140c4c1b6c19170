package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the product endpoints. List and slug lookup are public
// storefront routes; create/update/archive are admin-only (guarded at the
// router).
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// List handles GET /products.
func (h *Handler) List(c *gin.Context) {
	f := ListFilter{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 50),
		Search:  c.Query("search"),
	}
	if s := c.Query("status"); s != "" {
		f.Status = ProductStatus(s)
	}

	products, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		logger.FromGin(c).Error("list products failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": total})
}

// GetBySlug handles GET /products/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	p, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusNotFound, "slug", "Product not found")
		return
	default:
		logger.FromGin(c).Error("get product failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p, "effective_price_minor": p.EffectivePriceMinor()})
}

// Create handles POST /admin/products.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "invalid product payload")
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "sku, name and a non-negative price are required")
		return
	case errors.Is(err, ErrAlreadyExists):
		httpapi.AbortWithError(c, http.StatusConflict, "sku", "A product with this SKU or name already exists")
		return
	default:
		logger.FromGin(c).Error("create product failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": p})
}

// Update handles PATCH /admin/products/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "invalid product payload")
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Product not found")
		return
	case errors.Is(err, ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "invalid product update")
		return
	case errors.Is(err, ErrAlreadyExists):
		httpapi.AbortWithError(c, http.StatusConflict, "name", "A product with this SKU or name already exists")
		return
	default:
		logger.FromGin(c).Error("update product failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// Archive handles DELETE /admin/products/:id. Products are archived, never
// hard-deleted; existing order line items keep referring to them.
func (h *Handler) Archive(c *gin.Context) {
	err := h.svc.Archive(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "Product not found")
		return
	default:
		logger.FromGin(c).Error("archive product failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": true})
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
