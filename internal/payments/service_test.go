package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"commerce-platform/internal/cart"
	"commerce-platform/internal/catalog"
	"commerce-platform/internal/orders"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type checkoutFixture struct {
	svc     *Service
	cart    *cart.Service
	catalog *catalog.Service
	orders  *orders.Service
}

// newCheckoutFixture wires the full checkout stack against a stub Stripe
// server returning a fixed tax amount and intent.
func newCheckoutFixture(t *testing.T, taxMinor int64) checkoutFixture {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/tax/calculations":
			w.Write([]byte(`{"tax_amount_exclusive":` + strconv.FormatInt(taxMinor, 10) + `}`))
		case "/v1/payment_intents":
			_ = r.ParseForm()
			w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret","status":"requires_payment_method","amount":` +
				r.PostForm.Get("amount") + `,"currency":"` + r.PostForm.Get("currency") + `"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	cat := catalog.NewService(catalog.NewMemoryRepo())
	cartSvc := cart.NewService(cart.NewStore(rdb, time.Hour), cat)
	orderSvc := orders.NewService(orders.NewMemoryRepo(), cat)
	stripe := NewStripeClient("sk_test").WithBaseURL(srv.URL)

	return checkoutFixture{
		svc:     NewService(stripe, cartSvc, orderSvc),
		cart:    cartSvc,
		catalog: cat,
		orders:  orderSvc,
	}
}

func seedPublished(t *testing.T, cat *catalog.Service, sku string, priceMinor int64, stock int) catalog.Product {
	t.Helper()
	p, err := cat.Create(context.Background(), catalog.CreateRequest{
		SKU:        sku,
		Name:       "Product " + sku,
		PriceMinor: priceMinor,
		Status:     catalog.ProductStatusPublished,
		Stock:      stock,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestCreateCheckoutFullFlow(t *testing.T) {
	fx := newCheckoutFixture(t, 300)
	ctx := context.Background()
	p := seedPublished(t, fx.catalog, "A", 1000, 5)

	if _, err := fx.cart.Add(ctx, "u1", p.ID, 2); err != nil {
		t.Fatalf("cart add: %v", err)
	}

	out, err := fx.svc.CreateCheckout(ctx, "u1", "US")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if out.SubtotalMinor != 2000 || out.TaxMinor != 300 || out.TotalMinor != 2300 {
		t.Errorf("amounts: %+v", out)
	}
	if out.ClientSecret != "pi_1_secret" || out.Session == "" {
		t.Errorf("intent fields: %+v", out)
	}

	// Order created pending, stock reserved, cart cleared.
	o, err := fx.orders.GetBySession(ctx, out.Session)
	if err != nil {
		t.Fatalf("order by session: %v", err)
	}
	if o.Status != orders.StatusPending || o.TotalMinor() != 2300 {
		t.Errorf("order: %+v", o)
	}
	got, _ := fx.catalog.Get(ctx, p.ID)
	if got.Stock != 3 {
		t.Errorf("stock = %d, want 3", got.Stock)
	}
	c, _ := fx.cart.Get(ctx, "u1")
	if len(c.Lines) != 0 {
		t.Errorf("cart not cleared: %d lines", len(c.Lines))
	}
}

func TestCreateCheckoutEmptyCart(t *testing.T) {
	fx := newCheckoutFixture(t, 0)
	if _, err := fx.svc.CreateCheckout(context.Background(), "u1", "US"); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCreateCheckoutStockDrained(t *testing.T) {
	fx := newCheckoutFixture(t, 0)
	ctx := context.Background()
	p := seedPublished(t, fx.catalog, "A", 1000, 2)

	if _, err := fx.cart.Add(ctx, "u1", p.ID, 2); err != nil {
		t.Fatalf("cart add: %v", err)
	}
	// Someone else buys the stock between carting and checkout.
	if _, err := fx.catalog.ReserveStock(ctx, p.ID, 2); err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	_, err := fx.svc.CreateCheckout(ctx, "u1", "US")
	if !errors.Is(err, ErrCartNotPriced) && !errors.Is(err, catalog.ErrOutOfStock) {
		t.Errorf("err = %v, want a stock failure", err)
	}
}

func TestHandleEventSucceededMarksProcessing(t *testing.T) {
	fx := newCheckoutFixture(t, 0)
	ctx := context.Background()
	p := seedPublished(t, fx.catalog, "A", 1000, 5)
	if _, err := fx.cart.Add(ctx, "u1", p.ID, 1); err != nil {
		t.Fatalf("cart add: %v", err)
	}
	out, err := fx.svc.CreateCheckout(ctx, "u1", "US")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}

	e, err := ParseEvent([]byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_1", "metadata": {"checkout_session": "` + out.Session + `"}}}
	}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}

	if err := fx.svc.HandleEvent(ctx, e); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	o, _ := fx.orders.GetBySession(ctx, out.Session)
	if o.Status != orders.StatusProcessing {
		t.Errorf("status = %q, want processing", o.Status)
	}

	// Stripe retries are no-ops.
	if err := fx.svc.HandleEvent(ctx, e); err != nil {
		t.Errorf("retry HandleEvent: %v", err)
	}
}

func TestHandleEventFailureCancelsAndRestocks(t *testing.T) {
	fx := newCheckoutFixture(t, 0)
	ctx := context.Background()
	p := seedPublished(t, fx.catalog, "A", 1000, 5)
	if _, err := fx.cart.Add(ctx, "u1", p.ID, 2); err != nil {
		t.Fatalf("cart add: %v", err)
	}
	out, err := fx.svc.CreateCheckout(ctx, "u1", "US")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}

	e, err := ParseEvent([]byte(`{
		"id": "evt_2",
		"type": "payment_intent.payment_failed",
		"data": {"object": {"id": "pi_1", "metadata": {"checkout_session": "` + out.Session + `"}}}
	}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if err := fx.svc.HandleEvent(ctx, e); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	o, _ := fx.orders.GetBySession(ctx, out.Session)
	if o.Status != orders.StatusCancelled {
		t.Errorf("status = %q, want cancelled", o.Status)
	}
	got, _ := fx.catalog.Get(ctx, p.ID)
	if got.Stock != 5 {
		t.Errorf("stock = %d, want 5 after cancel", got.Stock)
	}
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	fx := newCheckoutFixture(t, 0)
	e := Event{Type: "customer.created"}
	if err := fx.svc.HandleEvent(context.Background(), e); err != nil {
		t.Errorf("unknown event type: %v", err)
	}
}

type countingNotifier struct {
	paid []orders.Order
}

func (n *countingNotifier) OrderPaid(ctx context.Context, o orders.Order) {
	n.paid = append(n.paid, o)
}

func TestHandleEventNotifiesOncePerPayment(t *testing.T) {
	fx := newCheckoutFixture(t, 0)
	ctx := context.Background()
	notifier := &countingNotifier{}
	fx.svc.WithNotifier(notifier)

	p := seedPublished(t, fx.catalog, "A", 1000, 5)
	if _, err := fx.cart.Add(ctx, "u1", p.ID, 1); err != nil {
		t.Fatalf("cart add: %v", err)
	}
	out, err := fx.svc.CreateCheckout(ctx, "u1", "US")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}

	e, err := ParseEvent([]byte(`{
		"id": "evt_n", "type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_1", "metadata": {"checkout_session": "` + out.Session + `"}}}
	}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if err := fx.svc.HandleEvent(ctx, e); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if err := fx.svc.HandleEvent(ctx, e); err != nil {
		t.Fatalf("retry HandleEvent: %v", err)
	}

	if len(notifier.paid) != 1 {
		t.Fatalf("notifications = %d, want exactly 1", len(notifier.paid))
	}
	if notifier.paid[0].ID != out.OrderID {
		t.Errorf("notified order = %q, want %q", notifier.paid[0].ID, out.OrderID)
	}
}
