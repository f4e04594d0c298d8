package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"noel_back_end/internal/checkout"
	"noel_back_end/internal/config"
	"noel_back_end/internal/handlers"
	"noel_back_end/internal/middleware"
)

// NewRouter moteur gin avec CORS, logger et recovery
func NewRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	return r
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg *config.Config, sessions *checkout.Sessions, counter middleware.Counter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")

	// --- Catalogue public ---
	api.GET("/products", h.ListProducts)
	api.GET("/products/search", h.SearchProducts)
	api.GET("/products/:slug", h.GetProductBySlug)

	// --- Session de commande (cookie checkout_session_id) ---
	shop := api.Group("")
	shop.Use(middleware.CheckoutSession(sessions))
	{
		shop.GET("/cart", h.GetCart)
		shop.POST("/cart/items",
			middleware.RateLimit(counter, "cart", middleware.CartMaxRequests, middleware.RateWindow, middleware.BySession),
			h.AddCartItem)
		shop.PATCH("/cart/items/:productId", h.UpdateCartItem)
		shop.DELETE("/cart/items/:productId", h.RemoveCartItem)
		shop.DELETE("/cart", h.ClearCart)

		shop.GET("/checkout/summary", h.CheckoutSummary)
		shop.GET("/checkout/draft", h.GetDraft)
		shop.POST("/checkout/draft", h.SaveDraft)
		shop.DELETE("/checkout/draft", h.DeleteDraft)

		shop.POST("/order",
			middleware.RateLimit(counter, "order", middleware.OrderMaxRequests, middleware.RateWindow, middleware.ByIP),
			h.CreateOrder)
	}

	// --- Back-office ---
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired([]byte(cfg.JWTSecret)), middleware.RequireAdmin)
	{
		admin.GET("/products", h.AdminListProducts)
		admin.POST("/products", h.CreateProduct)
		admin.POST("/products/bulk-delete", h.DeleteProducts)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)
		admin.POST("/products/:id/move", h.MoveProduct)
		admin.POST("/products/:id/photos", h.UploadPhoto)
		admin.DELETE("/products/:id/photos", h.RemovePhoto)

		admin.GET("/products/:id/variants", h.ListVariants)
		admin.POST("/products/:id/variants", h.SaveVariant)
		admin.PUT("/products/:id/variants/:variantId", h.SaveVariant)
		admin.DELETE("/products/:id/variants/:variantId", h.DeleteVariant)

		admin.GET("/orders", h.ListOrders)
		admin.GET("/orders/:id", h.GetOrder)
		admin.PATCH("/orders/:id/status", h.SetOrderStatus)
		admin.POST("/orders/:id/paid", h.ToggleOrderPaid)
		admin.DELETE("/orders/:id", h.DeleteOrder)

		admin.GET("/site-config", h.GetSiteConfig)
		admin.PUT("/site-config", h.UpsertSiteConfig)

		admin.GET("/dashboard", h.DashboardSnapshot)
		admin.GET("/dashboard/ws", h.DashboardSocket)

		admin.POST("/notify/email", h.NotifyEmail)
		admin.POST("/notify/whatsapp", h.NotifyWhatsApp)
	}
}
