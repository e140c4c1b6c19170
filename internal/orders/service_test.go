package orders

import (
	"context"
	"errors"
	"testing"

	"commerce-platform/internal/catalog"
)

func newTestOrders(t *testing.T) (*Service, *catalog.Service) {
	t.Helper()
	cat := catalog.NewService(catalog.NewMemoryRepo())
	return NewService(NewMemoryRepo(), cat), cat
}

func seedProduct(t *testing.T, cat *catalog.Service, sku string, priceMinor int64, stock int) catalog.Product {
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

func TestCreateSnapshotsPricesAndReservesStock(t *testing.T) {
	svc, cat := newTestOrders(t)
	ctx := context.Background()
	a := seedProduct(t, cat, "A", 1000, 5)
	b := seedProduct(t, cat, "B", 300, 5)

	o, err := svc.Create(ctx, CreateRequest{
		UserID:   "u1",
		Session:  "sess-1",
		TaxMinor: 130,
		Items: []ItemRequest{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.Status != StatusPending {
		t.Errorf("status = %q, want pending", o.Status)
	}
	if o.SubtotalMinor() != 2300 || o.TotalMinor() != 2430 {
		t.Errorf("totals: subtotal=%d total=%d", o.SubtotalMinor(), o.TotalMinor())
	}

	gotA, _ := cat.Get(ctx, a.ID)
	if gotA.Stock != 3 {
		t.Errorf("stock A = %d, want 3", gotA.Stock)
	}

	// Raising the catalog price later must not change the order.
	newPrice := int64(9999)
	if _, err := cat.Update(ctx, a.ID, catalog.UpdateRequest{PriceMinor: &newPrice}); err != nil {
		t.Fatalf("catalog update: %v", err)
	}
	reread, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reread.LineItems[0].UnitPriceMinor != 1000 {
		t.Errorf("line price changed to %d", reread.LineItems[0].UnitPriceMinor)
	}
}

func TestCreateRollsBackReservationsOnFailure(t *testing.T) {
	svc, cat := newTestOrders(t)
	ctx := context.Background()
	a := seedProduct(t, cat, "A", 1000, 5)
	b := seedProduct(t, cat, "B", 300, 1)

	_, err := svc.Create(ctx, CreateRequest{
		UserID:  "u1",
		Session: "sess-1",
		Items: []ItemRequest{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 5},
		},
	})
	if !errors.Is(err, catalog.ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}

	// The first line's reservation must have been returned.
	gotA, _ := cat.Get(ctx, a.ID)
	if gotA.Stock != 5 {
		t.Errorf("stock A = %d, want 5", gotA.Stock)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, cat := newTestOrders(t)
	p := seedProduct(t, cat, "A", 100, 5)
	ctx := context.Background()

	cases := map[string]CreateRequest{
		"no user":      {Session: "s", Items: []ItemRequest{{ProductID: p.ID, Quantity: 1}}},
		"no session":   {UserID: "u", Items: []ItemRequest{{ProductID: p.ID, Quantity: 1}}},
		"no items":     {UserID: "u", Session: "s"},
		"zero qty":     {UserID: "u", Session: "s", Items: []ItemRequest{{ProductID: p.ID, Quantity: 0}}},
		"negative qty": {UserID: "u", Session: "s", Items: []ItemRequest{{ProductID: p.ID, Quantity: -1}}},
	}
	for name, req := range cases {
		if _, err := svc.Create(ctx, req); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestCancelRestocks(t *testing.T) {
	svc, cat := newTestOrders(t)
	ctx := context.Background()
	p := seedProduct(t, cat, "A", 1000, 5)

	o, err := svc.Create(ctx, CreateRequest{
		UserID: "u1", Session: "sess-1",
		Items: []ItemRequest{{ProductID: p.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, o.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := cat.Get(ctx, p.ID)
	if got.Stock != 5 {
		t.Errorf("stock = %d, want 5 after cancel", got.Stock)
	}
}

func TestInvalidTransitionRejected(t *testing.T) {
	svc, cat := newTestOrders(t)
	ctx := context.Background()
	p := seedProduct(t, cat, "A", 1000, 5)

	o, err := svc.Create(ctx, CreateRequest{
		UserID: "u1", Session: "sess-1",
		Items: []ItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, o.ID, StatusDelivered); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	svc, cat := newTestOrders(t)
	ctx := context.Background()
	p := seedProduct(t, cat, "A", 1000, 5)

	if _, err := svc.Create(ctx, CreateRequest{
		UserID: "u1", Session: "sess-1",
		Items: []ItemRequest{{ProductID: p.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.MarkPaid(ctx, "sess-1")
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if first.Status != StatusProcessing {
		t.Errorf("status = %q, want processing", first.Status)
	}

	// Webhook retry: same session again is a no-op.
	second, err := svc.MarkPaid(ctx, "sess-1")
	if err != nil {
		t.Fatalf("MarkPaid retry: %v", err)
	}
	if second.Status != StatusProcessing {
		t.Errorf("retry status = %q", second.Status)
	}

	if _, err := svc.MarkPaid(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown session err = %v, want ErrNotFound", err)
	}
}

func TestRefundRestocksAndFlags(t *testing.T) {
	svc, cat := newTestOrders(t)
	ctx := context.Background()
	p := seedProduct(t, cat, "A", 1000, 5)

	o, err := svc.Create(ctx, CreateRequest{
		UserID: "u1", Session: "sess-1",
		Items: []ItemRequest{{ProductID: p.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, "sess-1"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	refunded, err := svc.UpdateStatus(ctx, o.ID, StatusRefunded)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if !refunded.Refunded {
		t.Error("refunded flag not set")
	}
	got, _ := cat.Get(ctx, p.ID)
	if got.Stock != 5 {
		t.Errorf("stock = %d, want 5 after refund", got.Stock)
	}
}
