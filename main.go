package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"estore/internal/cache"
	"estore/internal/config"
	"estore/internal/database"
	"estore/internal/handlers"
	"estore/internal/live"
	"estore/internal/middleware"
	"estore/internal/notify"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureProviderIndexes(db); err != nil {
		log.Printf("provider index warning: %v", err)
	}
	if err := database.EnsureDeliveryIndexes(db); err != nil {
		log.Printf("delivery index warning: %v", err)
	}
	if err := database.EnsureAnalyticsIndexes(db); err != nil {
		log.Printf("analytics index warning: %v", err)
	}
	if err := database.EnsureSettingsIndexes(db); err != nil {
		log.Printf("settings index warning: %v", err)
	}
	if err := database.EnsureBannerIndexes(db); err != nil {
		log.Printf("banner index warning: %v", err)
	}

	cache.Init(config.AppEnv.RedisAddr)

	sender := notify.NewSender(
		config.AppEnv.SMTPHost,
		config.AppEnv.SMTPPort,
		config.AppEnv.SMTPUsername,
		config.AppEnv.SMTPPassword,
		config.AppEnv.EmailFrom,
	)

	hub := live.NewHub(db)
	go hub.Run(context.Background())

	trackLimiter := middleware.NewRateLimiter(rate.Limit(5), 20)

	secret := config.AppEnv.JWTSecret
	r := gin.Default()

	// Public catalog
	r.GET("/api/products", handlers.GetProducts(db))
	r.GET("/api/products/:id", handlers.GetProductByID(db))
	r.POST("/api/products/:id/view", trackLimiter.Limit(), handlers.CountProductView(db))
	r.POST("/api/products/:id/like", trackLimiter.Limit(), handlers.ToggleProductLike(db))
	r.POST("/api/products/:id/reviews", middleware.UserAuth(secret), handlers.CreateProductReview(db))

	r.GET("/api/categories", handlers.GetCategories(db))
	r.GET("/api/banners/active", handlers.GetActiveBanners(db))
	r.GET("/api/hero-banner", handlers.GetHeroBanner(db))
	r.GET("/api/settings", handlers.GetSettings(db))

	// Customer orders
	orders := r.Group("/api/orders")
	{
		orders.POST("", middleware.UserAuth(secret), handlers.CreateOrder(db))
		orders.GET("/myorders", middleware.UserAuth(secret), handlers.GetMyOrders(db))
		orders.GET("/:id", middleware.UserAuth(secret), handlers.GetOrderByID(db))
		orders.PUT("/:id/pay", middleware.UserAuth(secret), handlers.PayOrder(db))
		orders.PUT("/:id/eft-proof", middleware.UserAuth(secret), handlers.UploadEFTProof(db))
		orders.PUT("/:id/cancel", middleware.UserAuth(secret), handlers.CancelOrder(db))
	}

	// Analytics tracking (public, rate limited)
	analytics := r.Group("/api/analytics", trackLimiter.Limit())
	{
		analytics.POST("/session", handlers.CreateOrUpdateSession(db))
		analytics.POST("/session/end", handlers.EndSession(db))
		analytics.POST("/pageview", handlers.TrackPageView(db))
		analytics.POST("/productview", handlers.TrackProductView(db))
	}

	// Delivery provider self-service
	delivery := r.Group("/api/delivery")
	{
		delivery.POST("/providers/register", handlers.RegisterProvider(db))
		delivery.GET("/jobs/available", handlers.GetAvailableJobs(db))
		delivery.PUT("/:id/respond", handlers.RespondToDelivery(db))
		delivery.PUT("/:id/status", handlers.UpdateDeliveryStatus(db))
		delivery.PUT("/:id/complete", handlers.CompleteDelivery(db))
		delivery.PUT("/providers/:id/availability", handlers.UpdateProviderAvailability(db))
	}

	// Admin API
	admin := r.Group("/api/admin")
	admin.Use(middleware.UserAuth(secret), middleware.AdminAuth())
	{
		admin.GET("/orders", handlers.GetOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db, sender))
		admin.PUT("/orders/:id/deliver", handlers.UpdateOrderToDelivered(db))
		admin.PUT("/orders/:id/cod-confirm", handlers.ConfirmCODPayment(db))
		admin.PUT("/orders/:id/eft-verify", handlers.VerifyEFTProof(db))
		admin.POST("/orders/:id/send-confirmation", handlers.SendPaymentConfirmation(db, sender))
		admin.GET("/orders/:id/export", handlers.ExportOrderReceipt(db, config.AppEnv.PublicBaseURL))
		admin.GET("/orders/export/csv", handlers.ExportOrdersCSV(db, false))
		admin.GET("/orders/export/paid-csv", handlers.ExportOrdersCSV(db, true))

		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))

		admin.GET("/banners", handlers.GetAllBanners(db))
		admin.POST("/banners", handlers.CreateBanner(db))
		admin.PUT("/banners/:id", handlers.UpdateBanner(db))
		admin.DELETE("/banners/:id", handlers.DeleteBanner(db))
		admin.PUT("/hero-banner", handlers.UpdateHeroBanner(db))

		admin.PUT("/settings", handlers.UpdateSettings(db))
		admin.PATCH("/settings/:section", handlers.UpdateSettingSection(db))
		admin.POST("/settings/reset", handlers.ResetSettings(db))

		admin.GET("/delivery", handlers.GetAllDeliveries(db))
		admin.POST("/delivery", handlers.CreateDeliveryJob(db))
		admin.PUT("/delivery/:id/assign", handlers.AssignDelivery(db))
		admin.GET("/delivery/statistics", handlers.GetDeliveryStatistics(db))
		admin.GET("/delivery/providers", handlers.GetAllProviders(db))
		admin.PUT("/delivery/providers/:id/status", handlers.UpdateProviderStatus(db))
		admin.GET("/delivery/providers/:id/history", handlers.GetProviderDeliveryHistory(db))

		admin.GET("/analytics/visitors", handlers.GetVisitorStats(db))
		admin.GET("/analytics/popular", handlers.GetPopularContent(db))
		admin.GET("/analytics/interests", handlers.GetUserInterests(db))
		admin.GET("/analytics/time-spent", handlers.GetTimeSpentAnalysis(db))
		admin.GET("/analytics/active", handlers.GetActiveSessions(db))

		admin.GET("/stats/dashboard", handlers.GetDashboardStats(db))
	}

	r.GET("/api/admin/live", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
