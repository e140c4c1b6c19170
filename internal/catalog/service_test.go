package catalog

import (
	"context"
	"errors"
	"testing"
)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	return NewService(repo), repo
}

func TestCreateDerivesSlugAndDefaults(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Create(context.Background(), CreateRequest{
		SKU:        "CHAIR-01",
		Name:       "Ergonomic Desk Chair",
		PriceMinor: 24999,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Slug != "ergonomic-desk-chair" {
		t.Errorf("slug = %q", p.Slug)
	}
	if p.Status != ProductStatusDraft {
		t.Errorf("status = %q, want draft", p.Status)
	}
	if p.Currency != "USD" {
		t.Errorf("currency = %q, want USD", p.Currency)
	}
	if p.DiscountType != DiscountNone {
		t.Errorf("discount type = %q, want none", p.DiscountType)
	}
	if p.ID == "" || p.CreatedAt.IsZero() {
		t.Error("id/timestamps not set")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()

	cases := map[string]CreateRequest{
		"missing name":      {SKU: "A", PriceMinor: 100},
		"missing sku":       {Name: "A", PriceMinor: 100},
		"negative price":    {SKU: "A", Name: "A", PriceMinor: -1},
		"bad percent":       {SKU: "A", Name: "A", PriceMinor: 100, DiscountType: DiscountPercentage, PercentDiscount: 101},
		"fixed over price":  {SKU: "A", Name: "A", PriceMinor: 100, DiscountType: DiscountFixed, FixedDiscountMinor: 101},
		"unknown discount":  {SKU: "A", Name: "A", PriceMinor: 100, DiscountType: "bogus"},
	}
	for name, req := range cases {
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), CreateRequest{SKU: "X", Name: "First", PriceMinor: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateRequest{SKU: "X", Name: "Second", PriceMinor: 1}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateRenamesSlug(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.Create(context.Background(), CreateRequest{SKU: "X", Name: "Old Name", PriceMinor: 100})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newName := "New Name"
	updated, err := svc.Update(context.Background(), p.ID, UpdateRequest{Name: &newName})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "new-name" {
		t.Errorf("slug = %q, want new-name", updated.Slug)
	}

	if _, err := svc.GetBySlug(context.Background(), "new-name"); err != nil {
		t.Errorf("GetBySlug after rename: %v", err)
	}
}

func TestReserveAndRestock(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.Create(context.Background(), CreateRequest{
		SKU: "X", Name: "Widget", PriceMinor: 100,
		Status: ProductStatusPublished, Stock: 5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	after, err := svc.ReserveStock(context.Background(), p.ID, 3)
	if err != nil {
		t.Fatalf("ReserveStock: %v", err)
	}
	if after.Stock != 2 {
		t.Errorf("stock = %d, want 2", after.Stock)
	}

	if _, err := svc.ReserveStock(context.Background(), p.ID, 3); !errors.Is(err, ErrOutOfStock) {
		t.Errorf("over-reserve err = %v, want ErrOutOfStock", err)
	}

	after, err = svc.RestockReturn(context.Background(), p.ID, 3)
	if err != nil {
		t.Fatalf("RestockReturn: %v", err)
	}
	if after.Stock != 5 {
		t.Errorf("stock = %d, want 5", after.Stock)
	}
}

func TestReserveStockBackorders(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.Create(context.Background(), CreateRequest{
		SKU: "X", Name: "Widget", PriceMinor: 100,
		Status: ProductStatusPublished, Stock: 1, AllowBackorders: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	after, err := svc.ReserveStock(context.Background(), p.ID, 4)
	if err != nil {
		t.Fatalf("ReserveStock with backorders: %v", err)
	}
	if after.Stock != -3 {
		t.Errorf("stock = %d, want -3", after.Stock)
	}
}

func TestListFiltersByStatusAndSearch(t *testing.T) {
	svc, _ := newTestService()
	mk := func(sku, name string, status ProductStatus) {
		t.Helper()
		if _, err := svc.Create(context.Background(), CreateRequest{SKU: sku, Name: name, PriceMinor: 1, Status: status}); err != nil {
			t.Fatalf("Create %s: %v", sku, err)
		}
	}
	mk("A", "Red Chair", ProductStatusPublished)
	mk("B", "Blue Chair", ProductStatusPublished)
	mk("C", "Hidden Lamp", ProductStatusDraft)

	// Default listing shows published only.
	got, total, err := svc.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Errorf("published list: total=%d len=%d, want 2/2", total, len(got))
	}

	got, total, err = svc.List(context.Background(), ListFilter{Search: "blue"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if total != 1 || got[0].SKU != "B" {
		t.Errorf("search result: total=%d", total)
	}

	_, total, err = svc.List(context.Background(), ListFilter{Status: ProductStatusDraft})
	if err != nil {
		t.Fatalf("List draft: %v", err)
	}
	if total != 1 {
		t.Errorf("draft total = %d, want 1", total)
	}
}
