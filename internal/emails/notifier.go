package emails

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"commerce-platform/internal/orders"
	"commerce-platform/internal/profile"
	"commerce-platform/internal/users"
)

// Notifier turns domain events into queued emails. Everything here is best
// effort: a failed enqueue is logged, never surfaced to the request that
// triggered it.
type Notifier struct {
	queue    *Queue
	users    users.Repository
	profiles *profile.Service
	store    string
	log      *slog.Logger
}

func NewNotifier(q *Queue, u users.Repository, p *profile.Service, storeName string, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{queue: q, users: u, profiles: p, store: storeName, log: log}
}

// UserRegistered queues the welcome email.
func (n *Notifier) UserRegistered(ctx context.Context, u users.User) {
	name := ""
	if p, err := n.profiles.Get(ctx, u.ID); err == nil {
		name = p.FullName()
	}
	if err := n.queue.Welcome(ctx, u.Email, name, n.store); err != nil {
		n.log.Warn("welcome email enqueue failed", "user_id", u.ID, "error", err.Error())
	}
}

// OrderPaid queues the order confirmation.
func (n *Notifier) OrderPaid(ctx context.Context, o orders.Order) {
	to, name, ok := n.recipient(ctx, o.UserID)
	if !ok {
		return
	}
	total := FormatMinor(o.TotalMinor(), o.Currency)
	if err := n.queue.OrderConfirmation(ctx, to, name, n.store, o.ID, total); err != nil {
		n.log.Warn("order confirmation enqueue failed", "order_id", o.ID, "error", err.Error())
	}
}

// OrderRefunded queues the refund notice.
func (n *Notifier) OrderRefunded(ctx context.Context, o orders.Order) {
	to, name, ok := n.recipient(ctx, o.UserID)
	if !ok {
		return
	}
	total := FormatMinor(o.TotalMinor(), o.Currency)
	if err := n.queue.OrderRefunded(ctx, to, name, n.store, o.ID, total); err != nil {
		n.log.Warn("refund email enqueue failed", "order_id", o.ID, "error", err.Error())
	}
}

func (n *Notifier) recipient(ctx context.Context, userID string) (string, string, bool) {
	u, err := n.users.FindActiveByID(ctx, userID)
	if err != nil {
		n.log.Warn("email recipient lookup failed", "user_id", userID, "error", err.Error())
		return "", "", false
	}
	name := ""
	if p, err := n.profiles.Get(ctx, u.ID); err == nil {
		name = p.FullName()
	}
	return u.Email, name, true
}

// FormatMinor renders a minor-unit amount as "12.34 USD".
func FormatMinor(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, strings.ToUpper(currency))
}
