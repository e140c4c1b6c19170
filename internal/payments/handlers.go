package payments

import (
	"errors"
	"io"
	"net/http"
	"time"

	"commerce-platform/internal/auth"
	"commerce-platform/internal/cart"
	"commerce-platform/internal/catalog"
	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

// Handler exposes checkout (authenticated) and the Stripe webhook (public,
// signature-verified).
type Handler struct {
	svc           *Service
	webhookSecret string
	clock         func() time.Time
}

func NewHandler(svc *Service, webhookSecret string) *Handler {
	return &Handler{svc: svc, webhookSecret: webhookSecret, clock: time.Now}
}

type checkoutRequest struct {
	Country string `json:"country"`
}

// CreateCheckout handles POST /checkout.
func (h *Handler) CreateCheckout(c *gin.Context) {
	u, err := auth.CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return
	}

	var req checkoutRequest
	// Country is optional; a missing body defaults it.
	_ = c.ShouldBindJSON(&req)
	if req.Country == "" {
		req.Country = "US"
	}

	out, err := h.svc.CreateCheckout(c.Request.Context(), u.ID, req.Country)
	switch {
	case err == nil:
	case errors.Is(err, ErrEmptyCart):
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "Your cart is empty")
		return
	case errors.Is(err, ErrCartNotPriced), errors.Is(err, catalog.ErrOutOfStock), errors.Is(err, cart.ErrNotPurchasable):
		httpapi.AbortWithError(c, http.StatusConflict, "", "Some items in your cart are no longer available")
		return
	case errors.Is(err, ErrStripeUnavailable):
		logger.FromGin(c).Error("stripe unavailable", "error", err.Error())
		httpapi.AbortWithError(c, http.StatusBadGateway, "", "Payment provider is unavailable, try again later")
		return
	default:
		logger.FromGin(c).Error("checkout failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"checkout": out})
}

// StripeWebhook handles POST /webhooks/stripe. The raw body is needed for
// signature verification, so this handler does its own reading.
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "unreadable payload")
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if err := VerifyStripeSignature(payload, sig, h.webhookSecret, h.clock().UTC()); err != nil {
		logger.FromGin(c).Warn("stripe webhook rejected", "reason", err.Error())
		httpapi.AbortWithError(c, http.StatusUnauthorized, "", "invalid signature")
		return
	}

	event, err := ParseEvent(payload)
	if err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "malformed event")
		return
	}

	if err := h.svc.HandleEvent(c.Request.Context(), event); err != nil {
		// Non-2xx makes Stripe retry; order application is idempotent.
		logger.FromGin(c).Error("stripe event failed", "event", event.Type, "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
