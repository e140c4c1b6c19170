package main

import (
	"database/sql"
	"log/slog"

	"commerce-platform/internal/addresses"
	"commerce-platform/internal/audit"
	"commerce-platform/internal/auth"
	"commerce-platform/internal/cart"
	"commerce-platform/internal/catalog"
	"commerce-platform/internal/config"
	"commerce-platform/internal/customers"
	"commerce-platform/internal/emails"
	"commerce-platform/internal/messages"
	"commerce-platform/internal/orders"
	"commerce-platform/internal/payments"
	"commerce-platform/internal/profile"
	"commerce-platform/internal/reports"
	"commerce-platform/internal/users"

	"github.com/redis/go-redis/v9"
)

// app is the wired object graph: repositories on Postgres, the cart and
// email queue on Redis, services on top, handlers on top of those.
type app struct {
	guard *auth.Guard

	authHandler      *auth.Handler
	usersHandler     *users.Handler
	profileHandler   *profile.Handler
	addressesHandler *addresses.Handler
	catalogHandler   *catalog.Handler
	cartHandler      *cart.Handler
	ordersHandler    *orders.Handler
	paymentsHandler  *payments.Handler
	messagesHandler  *messages.Handler
	customersHandler *customers.Handler
	reportsHandler   *reports.Handler
	auditHandler     *audit.Handler
	emailsHandler    *emails.Handler

	emailWorker *emails.Worker
}

func buildApp(cfg config.Config, codec *auth.Codec, db *sql.DB, rdb *redis.Client, log *slog.Logger) *app {
	usersRepo := users.NewPostgresRepo(db)
	usersSvc := users.NewService(usersRepo)

	guard := auth.NewGuard(codec, usersRepo, cfg.Auth.RefreshTokenBytes)
	google := auth.NewGoogleAuthenticator(cfg.Google)
	authSvc := auth.NewService(usersRepo, codec, cfg.Auth.RefreshTokenBytes, google)

	profileSvc := profile.NewService(profile.NewPostgresRepo(db))
	addressSvc := addresses.NewService(addresses.NewPostgresRepo(db))

	catalogSvc := catalog.NewService(catalog.NewPostgresRepo(db))
	cartSvc := cart.NewService(cart.NewStore(rdb, 0), catalogSvc)

	ordersRepo := orders.NewPostgresRepo(db)
	ordersSvc := orders.NewService(ordersRepo, catalogSvc)

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	messagesSvc := messages.NewService(messages.NewPostgresRepo(db))

	queue := emails.NewQueue(rdb)
	sender := emails.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	notifier := emails.NewNotifier(queue, usersRepo, profileSvc, cfg.SendGrid.FromName, log)

	stripe := payments.NewStripeClient(cfg.Stripe.SecretKey)
	paymentsSvc := payments.NewService(stripe, cartSvc, ordersSvc).WithNotifier(notifier)

	return &app{
		guard: guard,

		authHandler:      auth.NewHandler(authSvc, usersSvc, rdb).WithRegisterHook(notifier.UserRegistered),
		usersHandler:     users.NewHandler(usersSvc, auditSvc, auth.CurrentUser),
		profileHandler:   profile.NewHandler(profileSvc),
		addressesHandler: addresses.NewHandler(addressSvc),
		catalogHandler:   catalog.NewHandler(catalogSvc),
		cartHandler:      cart.NewHandler(cartSvc),
		ordersHandler:    orders.NewHandler(ordersSvc, auditSvc).WithRefundHook(notifier.OrderRefunded),
		paymentsHandler:  payments.NewHandler(paymentsSvc, cfg.Stripe.WebhookSecret),
		messagesHandler:  messages.NewHandler(messagesSvc),
		customersHandler: customers.NewHandler(customers.NewService(usersRepo, profileSvc, ordersRepo)),
		reportsHandler:   reports.NewHandler(reports.NewService(ordersRepo)),
		auditHandler:     audit.NewHandler(auditSvc),
		emailsHandler:    emails.NewHandler(rdb),

		emailWorker: emails.NewWorker(rdb, sender, log),
	}
}
