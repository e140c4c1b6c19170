package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"commerce-platform/internal/catalog"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCart(t *testing.T) (*Service, *catalog.Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cat := catalog.NewService(catalog.NewMemoryRepo())
	return NewService(NewStore(rdb, time.Hour), cat), cat, mr
}

func seedProduct(t *testing.T, cat *catalog.Service, sku string, priceMinor int64, stock int, backorders bool) catalog.Product {
	t.Helper()
	p, err := cat.Create(context.Background(), catalog.CreateRequest{
		SKU:             sku,
		Name:            "Product " + sku,
		PriceMinor:      priceMinor,
		Status:          catalog.ProductStatusPublished,
		Stock:           stock,
		AllowBackorders: backorders,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestCartAddAndGet(t *testing.T) {
	svc, cat, _ := newTestCart(t)
	ctx := context.Background()
	a := seedProduct(t, cat, "A", 1000, 10, false)
	b := seedProduct(t, cat, "B", 250, 10, false)

	if _, err := svc.Add(ctx, "s1", a.ID, 2); err != nil {
		t.Fatalf("Add a: %v", err)
	}
	got, err := svc.Add(ctx, "s1", b.ID, 3)
	if err != nil {
		t.Fatalf("Add b: %v", err)
	}

	if len(got.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(got.Lines))
	}
	if got.SubtotalMinor != 2*1000+3*250 {
		t.Errorf("subtotal = %d, want %d", got.SubtotalMinor, 2*1000+3*250)
	}
}

func TestCartAddRespectsStock(t *testing.T) {
	svc, cat, _ := newTestCart(t)
	ctx := context.Background()
	p := seedProduct(t, cat, "A", 1000, 3, false)

	if _, err := svc.Add(ctx, "s1", p.ID, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// 2 already in the cart; 2 more would exceed the 3 in stock.
	if _, err := svc.Add(ctx, "s1", p.ID, 2); !errors.Is(err, ErrNotPurchasable) {
		t.Errorf("err = %v, want ErrNotPurchasable", err)
	}

	// Backordered products have no ceiling.
	bo := seedProduct(t, cat, "B", 100, 0, true)
	if _, err := svc.Add(ctx, "s1", bo.ID, 50); err != nil {
		t.Errorf("backorder add: %v", err)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	svc, _, _ := newTestCart(t)
	if _, err := svc.Add(context.Background(), "s1", "nope", 1); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want catalog.ErrNotFound", err)
	}
}

func TestCartSetQuantityAndRemove(t *testing.T) {
	svc, cat, _ := newTestCart(t)
	ctx := context.Background()
	p := seedProduct(t, cat, "A", 500, 10, false)

	if _, err := svc.Add(ctx, "s1", p.ID, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := svc.SetQuantity(ctx, "s1", p.ID, 4)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if got.Lines[0].Quantity != 4 || got.SubtotalMinor != 2000 {
		t.Errorf("after set: %+v", got)
	}

	// Zero removes the line.
	got, err = svc.SetQuantity(ctx, "s1", p.ID, 0)
	if err != nil {
		t.Fatalf("SetQuantity 0: %v", err)
	}
	if len(got.Lines) != 0 {
		t.Errorf("lines = %d, want 0", len(got.Lines))
	}
}

func TestCartDiscountedPricing(t *testing.T) {
	svc, cat, _ := newTestCart(t)
	ctx := context.Background()
	p, err := cat.Create(ctx, catalog.CreateRequest{
		SKU: "D", Name: "Deal", PriceMinor: 1000,
		Status: catalog.ProductStatusPublished, Stock: 10,
		DiscountType: catalog.DiscountPercentage, PercentDiscount: 20,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Add(ctx, "s1", p.ID, 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got.Lines[0].UnitPriceMinor != 800 || got.SubtotalMinor != 1600 {
		t.Errorf("discounted line: %+v", got.Lines[0])
	}
}

func TestCartClearAndIsolation(t *testing.T) {
	svc, cat, _ := newTestCart(t)
	ctx := context.Background()
	p := seedProduct(t, cat, "A", 100, 10, false)

	if _, err := svc.Add(ctx, "s1", p.ID, 1); err != nil {
		t.Fatalf("Add s1: %v", err)
	}
	if _, err := svc.Add(ctx, "s2", p.ID, 2); err != nil {
		t.Fatalf("Add s2: %v", err)
	}

	if err := svc.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get s1: %v", err)
	}
	if len(got.Lines) != 0 {
		t.Errorf("s1 lines = %d, want 0", len(got.Lines))
	}

	other, err := svc.Get(ctx, "s2")
	if err != nil {
		t.Fatalf("Get s2: %v", err)
	}
	if len(other.Lines) != 1 || other.Lines[0].Quantity != 2 {
		t.Errorf("s2 cart affected: %+v", other)
	}
}

func TestCartExpires(t *testing.T) {
	svc, cat, mr := newTestCart(t)
	ctx := context.Background()
	p := seedProduct(t, cat, "A", 100, 10, false)

	if _, err := svc.Add(ctx, "s1", p.ID, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	got, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Lines) != 0 {
		t.Errorf("expired cart still has %d lines", len(got.Lines))
	}
}
