package addresses

import (
	"context"
	"errors"
	"testing"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo())
}

func validCreate() CreateRequest {
	return CreateRequest{
		FullName: "Jordan Reyes",
		Line1:    "12 High Street",
		City:     "Leeds",
		PostCode: "LS1 4AB",
		Country:  "gb",
	}
}

func TestCreateDefaultsAndNormalizes(t *testing.T) {
	svc := newTestService()

	a, err := svc.Create(context.Background(), "user-1", validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Kind != KindShipping {
		t.Errorf("kind = %q, want shipping", a.Kind)
	}
	if a.Country != "GB" {
		t.Errorf("country = %q, want GB", a.Country)
	}
	if !a.Default {
		t.Error("first address of a kind should become default")
	}
	if a.ID == "" || a.CreatedAt.IsZero() {
		t.Error("id/timestamps not set")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := map[string]func(*CreateRequest){
		"no full name": func(r *CreateRequest) { r.FullName = " " },
		"no line1":     func(r *CreateRequest) { r.Line1 = "" },
		"no city":      func(r *CreateRequest) { r.City = "" },
		"no post code": func(r *CreateRequest) { r.PostCode = "" },
		"no country":   func(r *CreateRequest) { r.Country = "" },
		"bad kind":     func(r *CreateRequest) { r.Kind = "office" },
	}
	for name, mutate := range cases {
		req := validCreate()
		mutate(&req)
		if _, err := svc.Create(ctx, "user-1", req); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestDefaultExclusivePerKind(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1", validCreate())
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}

	second := validCreate()
	second.Line1 = "99 Canal Road"
	secondAddr, err := svc.Create(ctx, "user-1", second)
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if secondAddr.Default {
		t.Error("second address should not steal the default")
	}

	billing := validCreate()
	billing.Kind = KindBilling
	billingAddr, err := svc.Create(ctx, "user-1", billing)
	if err != nil {
		t.Fatalf("Create billing: %v", err)
	}
	if !billingAddr.Default {
		t.Error("first billing address should be the billing default")
	}

	// Promote the second shipping address; the first loses the flag, the
	// billing default is untouched.
	if _, err := svc.SetDefault(ctx, "user-1", secondAddr.ID); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	got, err := svc.Get(ctx, "user-1", first.ID)
	if err != nil {
		t.Fatalf("Get first: %v", err)
	}
	if got.Default {
		t.Error("old shipping default not cleared")
	}
	gotBilling, err := svc.Get(ctx, "user-1", billingAddr.ID)
	if err != nil {
		t.Fatalf("Get billing: %v", err)
	}
	if !gotBilling.Default {
		t.Error("billing default should survive a shipping default change")
	}
}

func TestAddressesAreUserScoped(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, "user-a", validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, "user-b", a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get foreign address err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, "user-b", a.ID, validCreate()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update foreign address err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "user-b", a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete foreign address err = %v, want ErrNotFound", err)
	}
	if _, err := svc.SetDefault(ctx, "user-b", a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetDefault foreign address err = %v, want ErrNotFound", err)
	}

	list, err := svc.List(ctx, "user-b")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("user-b sees %d addresses, want 0", len(list))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, "user-1", validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := validCreate()
	req.City = "York"
	updated, err := svc.Update(ctx, "user-1", a.ID, req)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.City != "York" {
		t.Errorf("city = %q, want York", updated.City)
	}
	if !updated.Default {
		t.Error("update should not clear the default flag")
	}

	if err := svc.Delete(ctx, "user-1", a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "user-1", a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}

func TestDefaultFor(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.DefaultFor(ctx, "user-1", KindShipping); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty book err = %v, want ErrNotFound", err)
	}

	a, err := svc.Create(ctx, "user-1", validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.DefaultFor(ctx, "user-1", KindShipping)
	if err != nil {
		t.Fatalf("DefaultFor: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("DefaultFor id = %q, want %q", got.ID, a.ID)
	}
	if _, err := svc.DefaultFor(ctx, "user-1", KindBilling); !errors.Is(err, ErrNotFound) {
		t.Errorf("billing default err = %v, want ErrNotFound", err)
	}
}
