package cart

import (
	"errors"
	"net/http"

	"commerce-platform/internal/auth"
	"commerce-platform/internal/catalog"
	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the cart endpoints. All routes run behind RequireAuth;
// the cart session is the authenticated user's id, so guest sessions get
// carts too.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// Get handles GET /cart.
func (h *Handler) Get(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	cart, err := h.svc.Get(c.Request.Context(), session)
	if err != nil {
		logger.FromGin(c).Error("get cart failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// AddItem handles POST /cart/items.
func (h *Handler) AddItem(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "product_id and a positive quantity are required")
		return
	}

	cart, err := h.svc.Add(c.Request.Context(), session, req.ProductID, req.Quantity)
	if !h.respondCartError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// SetQuantity handles PUT /cart/items/:productID.
func (h *Handler) SetQuantity(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "quantity", "a non-negative quantity is required")
		return
	}

	cart, err := h.svc.SetQuantity(c.Request.Context(), session, c.Param("productID"), req.Quantity)
	if !h.respondCartError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// RemoveItem handles DELETE /cart/items/:productID.
func (h *Handler) RemoveItem(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	cart, err := h.svc.Remove(c.Request.Context(), session, c.Param("productID"))
	if !h.respondCartError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// Clear handles DELETE /cart.
func (h *Handler) Clear(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	if err := h.svc.Clear(c.Request.Context(), session); err != nil {
		logger.FromGin(c).Error("clear cart failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// respondCartError maps service errors to responses. Returns true when the
// caller may proceed with the success path.
func (h *Handler) respondCartError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, catalog.ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "product_id", "Product not found")
	case errors.Is(err, ErrNotPurchasable):
		httpapi.AbortWithError(c, http.StatusConflict, "quantity", "Product is not available in the requested quantity")
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, catalog.ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "invalid cart request")
	default:
		logger.FromGin(c).Error("cart operation failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
	}
	return false
}

func sessionFrom(c *gin.Context) (string, bool) {
	u, err := auth.CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return "", false
	}
	return u.ID, true
}
