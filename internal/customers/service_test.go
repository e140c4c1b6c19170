package customers

import (
	"context"
	"errors"
	"testing"
	"time"

	"commerce-platform/internal/orders"
	"commerce-platform/internal/profile"
	"commerce-platform/internal/users"
)

type fixture struct {
	svc      *Service
	users    *users.MemoryRepo
	profiles *profile.Service
	orders   *orders.MemoryRepo
}

func newFixture() fixture {
	u := users.NewMemoryRepo()
	p := profile.NewService(profile.NewMemoryRepo())
	o := orders.NewMemoryRepo()
	return fixture{
		svc:      NewService(u, p, o),
		users:    u,
		profiles: p,
		orders:   o,
	}
}

func (f fixture) seedCustomer(t *testing.T, id, email string) {
	t.Helper()
	_, err := f.users.Create(context.Background(), users.User{
		ID:        id,
		Email:     email,
		Roles:     []string{users.RoleCustomer},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func (f fixture) seedOrder(t *testing.T, userID string, status orders.OrderStatus, unitMinor int64, qty int) {
	t.Helper()
	_, err := f.orders.Create(context.Background(), orders.Order{
		ID:      userID + "-" + string(status) + "-" + time.Now().Format("150405.000000000"),
		UserID:  userID,
		Session: userID + string(status) + time.Now().Format("150405.000000000"),
		Status:  status,
		LineItems: []orders.LineItem{
			{ProductID: "p1", Name: "Widget", UnitPriceMinor: unitMinor, Quantity: qty},
		},
		Currency:  "usd",
		TaxMinor:  0,
		CreatedAt: time.Now().UTC(),
		Refunded:  status == orders.StatusRefunded,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestListRollsUpSpend(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedCustomer(t, "c1", "one@example.com")
	if _, err := f.profiles.Save(ctx, "c1", profile.UpdateRequest{FirstName: "One", LastName: "Person"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	f.seedOrder(t, "c1", orders.StatusCompleted, 1000, 2) // counts: 2000
	f.seedOrder(t, "c1", orders.StatusPending, 500, 1)    // unpaid, excluded
	f.seedOrder(t, "c1", orders.StatusRefunded, 9000, 1)  // refunded, excluded

	list, total, err := f.svc.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("total = %d, len = %d", total, len(list))
	}
	c := list[0]
	if c.FullName != "One Person" {
		t.Errorf("full name = %q", c.FullName)
	}
	if c.OrderCount != 3 {
		t.Errorf("order count = %d, want 3", c.OrderCount)
	}
	if c.TotalSpentMinor != 2000 {
		t.Errorf("spend = %d, want 2000", c.TotalSpentMinor)
	}
}

func TestListExcludesNonCustomers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedCustomer(t, "c1", "one@example.com")
	if _, err := f.users.Create(ctx, users.User{
		ID:        "admin",
		Email:     "admin@example.com",
		Roles:     []string{users.RoleAdmin},
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	_, total, err := f.svc.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1 (admins excluded)", total)
	}
}

func TestListWithoutProfile(t *testing.T) {
	f := newFixture()

	f.seedCustomer(t, "c1", "one@example.com")
	list, _, err := f.svc.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].FullName != "" {
		t.Errorf("customer without profile should list with empty name: %+v", list)
	}
}

func TestGetReturnsHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedCustomer(t, "c1", "one@example.com")
	f.seedOrder(t, "c1", orders.StatusCompleted, 1500, 1)
	f.seedOrder(t, "c1", orders.StatusDelivered, 2500, 2)

	c, history, err := f.svc.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history len = %d, want 2", len(history))
	}
	if c.OrderCount != 2 {
		t.Errorf("order count = %d", c.OrderCount)
	}
	if c.TotalSpentMinor != 1500+5000 {
		t.Errorf("spend = %d, want 6500", c.TotalSpentMinor)
	}
}

func TestGetUnknownCustomer(t *testing.T) {
	f := newFixture()
	if _, _, err := f.svc.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
