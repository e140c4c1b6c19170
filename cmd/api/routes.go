package main

import (
	"commerce-platform/internal/auth"
	"commerce-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, a *app) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Storefront catalog is browsable without an account.
	r.GET("/products", a.catalogHandler.List)
	r.GET("/products/:slug", a.catalogHandler.GetBySlug)

	// Contact form.
	r.POST("/messages", a.messagesHandler.Create)

	// Stripe webhook (public, protected by signature verification).
	r.POST("/webhooks/stripe", a.paymentsHandler.StripeWebhook)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", a.authHandler.Login)
		authGroup.POST("/register", a.authHandler.Register)
		authGroup.POST("/visitor", a.authHandler.VisitorLogin)
		authGroup.GET("/google", a.authHandler.GoogleRedirect)
		authGroup.GET("/google/callback", a.authHandler.GoogleCallback)
	}

	// Everything below runs behind the session guard: valid access token, or
	// transparent rotation via the refresh token.
	authed := r.Group("/")
	authed.Use(auth.RequireAuth(a.guard))
	{
		authed.POST("/auth/logout", a.authHandler.Logout)
		authed.GET("/auth/me", a.authHandler.Me)
		authed.POST("/account/password", a.usersHandler.ChangePassword)

		authed.GET("/profile", a.profileHandler.Get)
		authed.PUT("/profile", a.profileHandler.Save)

		addr := authed.Group("/addresses")
		{
			addr.GET("", a.addressesHandler.List)
			addr.POST("", a.addressesHandler.Create)
			addr.GET("/:id", a.addressesHandler.Get)
			addr.PUT("/:id", a.addressesHandler.Update)
			addr.DELETE("/:id", a.addressesHandler.Delete)
			addr.POST("/:id/default", a.addressesHandler.SetDefault)
		}

		cartGroup := authed.Group("/cart")
		{
			cartGroup.GET("", a.cartHandler.Get)
			cartGroup.POST("/items", a.cartHandler.AddItem)
			cartGroup.PUT("/items/:productID", a.cartHandler.SetQuantity)
			cartGroup.DELETE("/items/:productID", a.cartHandler.RemoveItem)
			cartGroup.DELETE("", a.cartHandler.Clear)
		}

		authed.POST("/checkout", a.paymentsHandler.CreateCheckout)

		authed.GET("/orders", a.ordersHandler.ListMine)
		authed.GET("/orders/:id", a.ordersHandler.GetMine)
	}

	// Admin surface.
	admin := r.Group("/admin")
	admin.Use(auth.RequireAuth(a.guard))
	admin.Use(rbac.RequireAdmin())
	{
		products := admin.Group("/products")
		{
			products.POST("", a.catalogHandler.Create)
			products.PUT("/:id", a.catalogHandler.Update)
			products.DELETE("/:id", a.catalogHandler.Archive)
		}

		ordersGroup := admin.Group("/orders")
		{
			ordersGroup.GET("", a.ordersHandler.AdminList)
			ordersGroup.GET("/:id", a.ordersHandler.AdminGet)
			ordersGroup.PATCH("/:id/status", a.ordersHandler.AdminUpdateStatus)
		}

		usersGroup := admin.Group("/users")
		{
			usersGroup.GET("", a.usersHandler.List)
			usersGroup.GET("/:id", a.usersHandler.Get)
			usersGroup.POST("/:id/suspend", a.usersHandler.Suspend)
			usersGroup.POST("/:id/unsuspend", a.usersHandler.Unsuspend)
			usersGroup.DELETE("/:id", a.usersHandler.Delete)
		}

		admin.GET("/customers", a.customersHandler.List)
		admin.GET("/customers/:id", a.customersHandler.Get)

		messagesGroup := admin.Group("/messages")
		{
			messagesGroup.GET("", a.messagesHandler.List)
			messagesGroup.PATCH("/:id", a.messagesHandler.SetStatus)
		}

		reportsGroup := admin.Group("/reports")
		{
			reportsGroup.GET("/sales", a.reportsHandler.Sales)
			reportsGroup.GET("/returns", a.reportsHandler.Returns)
			reportsGroup.GET("/products", a.reportsHandler.TopProducts)
			reportsGroup.GET("/customers", a.reportsHandler.TopCustomers)
		}

		admin.GET("/audit", a.auditHandler.List)
		admin.GET("/emails/dead", a.emailsHandler.DeadLetters)
	}
}
