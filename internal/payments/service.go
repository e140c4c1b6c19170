package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commerce-platform/internal/cart"
	"commerce-platform/internal/orders"

	"github.com/google/uuid"
)

const metadataSessionKey = "checkout_session"

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrCartNotPriced = errors.New("cart contains unavailable items")
)

// Notifier announces payment outcomes. Implementations must be best effort;
// a notification failure never unwinds the payment.
type Notifier interface {
	OrderPaid(ctx context.Context, o orders.Order)
}

// Service runs checkout: it turns the caller's cart into a pending order,
// prices it server-side, and opens a Stripe payment intent whose metadata
// carries the checkout session. The webhook closes the loop by marking the
// order paid.
type Service struct {
	stripe *StripeClient
	cart   *cart.Service
	orders *orders.Service
	notify Notifier
	clock  func() time.Time
}

func NewService(stripe *StripeClient, cartSvc *cart.Service, orderSvc *orders.Service) *Service {
	return &Service{stripe: stripe, cart: cartSvc, orders: orderSvc, clock: time.Now}
}

// WithNotifier installs the payment outcome notifier.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notify = n
	return s
}

// Checkout is the result handed back to the storefront client.
type Checkout struct {
	Session       string `json:"session"`
	OrderID       string `json:"order_id"`
	IntentID      string `json:"intent_id"`
	ClientSecret  string `json:"client_secret"`
	SubtotalMinor int64  `json:"subtotal_minor"`
	TaxMinor      int64  `json:"tax_minor"`
	TotalMinor    int64  `json:"total_minor"`
	Currency      string `json:"currency"`
}

// CreateCheckout prices the user's cart from the catalog, calculates tax,
// creates a pending order, and opens the payment intent. Client-supplied
// prices are never consulted.
func (s *Service) CreateCheckout(ctx context.Context, userID, country string) (Checkout, error) {
	c, err := s.cart.Get(ctx, userID)
	if err != nil {
		return Checkout{}, err
	}
	if len(c.Lines) == 0 {
		return Checkout{}, ErrEmptyCart
	}

	currency := c.Lines[0].Currency
	var items []orders.ItemRequest
	var taxLines []TaxLine
	for _, l := range c.Lines {
		if !l.Purchasable {
			return Checkout{}, fmt.Errorf("%w: %s", ErrCartNotPriced, l.ProductID)
		}
		items = append(items, orders.ItemRequest{ProductID: l.ProductID, Quantity: l.Quantity})
		taxLines = append(taxLines, TaxLine{
			AmountMinor: l.LineTotalMinor,
			Quantity:    l.Quantity,
			Reference:   l.ProductID,
		})
	}

	taxMinor, err := s.stripe.CalculateTax(ctx, currency, country, taxLines)
	if err != nil {
		return Checkout{}, err
	}

	session := uuid.NewString()
	order, err := s.orders.Create(ctx, orders.CreateRequest{
		UserID:   userID,
		Session:  session,
		TaxMinor: taxMinor,
		Items:    items,
	})
	if err != nil {
		return Checkout{}, err
	}

	intent, err := s.stripe.CreatePaymentIntent(ctx, order.TotalMinor(), currency, map[string]string{
		metadataSessionKey: session,
		"order_id":         order.ID,
		"user_id":          userID,
	})
	if err != nil {
		// The order stays pending; the client can retry checkout and the
		// unpaid order is cancellable from the admin surface.
		return Checkout{}, err
	}

	// Payment opened; the cart has done its job.
	if err := s.cart.Clear(ctx, userID); err != nil {
		return Checkout{}, err
	}

	return Checkout{
		Session:       session,
		OrderID:       order.ID,
		IntentID:      intent.ID,
		ClientSecret:  intent.ClientSecret,
		SubtotalMinor: order.SubtotalMinor(),
		TaxMinor:      taxMinor,
		TotalMinor:    order.TotalMinor(),
		Currency:      currency,
	}, nil
}

// HandleEvent applies a verified webhook event to order state. Unhandled
// event types are ignored so the endpoint can be subscribed broadly.
func (s *Service) HandleEvent(ctx context.Context, e Event) error {
	switch e.Type {
	case "payment_intent.succeeded":
		session := e.CheckoutSession()
		if session == "" {
			return fmt.Errorf("payment_intent.succeeded %s without %s metadata", e.Data.Object.ID, metadataSessionKey)
		}
		before, err := s.orders.GetBySession(ctx, session)
		if err != nil {
			return err
		}
		o, err := s.orders.MarkPaid(ctx, session)
		if err != nil {
			return err
		}
		// Notify only on the first successful transition; webhook retries
		// must not send duplicate confirmations.
		if s.notify != nil && before.Status == orders.StatusPending {
			s.notify.OrderPaid(ctx, o)
		}
		return nil
	case "payment_intent.payment_failed", "payment_intent.canceled":
		session := e.CheckoutSession()
		if session == "" {
			return nil
		}
		o, err := s.orders.GetBySession(ctx, session)
		if err != nil {
			if errors.Is(err, orders.ErrNotFound) {
				return nil
			}
			return err
		}
		if o.Status != orders.StatusPending {
			return nil
		}
		_, err = s.orders.UpdateStatus(ctx, o.ID, orders.StatusCancelled)
		return err
	default:
		return nil
	}
}
