package routes

import (
	"bakery-menu-api/handlers"
	"bakery-menu-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/categories", handlers.GetCategories)
		public.GET("/categories/:id/products", handlers.GetCategoryProducts)
		public.GET("/products/search", handlers.SearchProducts)
		public.GET("/delivery-charge", handlers.GetDeliveryCharge)

		public.GET("/views", handlers.GetPageViews)
		public.POST("/views", handlers.CountPageView)

		public.GET("/live", handlers.LiveFeed)

		// Admin password gate
		public.POST("/admin/login", handlers.AdminLogin)
	}

	// ── Cart routes (session cookie scoped) ────────────────────────
	cart := r.Group("/api/cart")
	{
		cart.GET("", handlers.GetCart)
		cart.POST("/items", handlers.AddCartItem)
		cart.PUT("/items", handlers.AdjustCartItem)
		cart.DELETE("/items", handlers.RemoveCartItem)
		cart.DELETE("", handlers.ClearCart)
		cart.GET("/total", handlers.GetCartTotal)
	}
	r.POST("/api/checkout", handlers.Checkout)

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/categories", handlers.CreateCategory)
		admin.PUT("/categories/:id", handlers.UpdateCategory)
		admin.DELETE("/categories/:id", handlers.DeleteCategory)

		admin.POST("/categories/:id/products", handlers.CreateProduct)
		admin.PUT("/categories/:id/products/:productId", handlers.UpdateProduct)
		admin.DELETE("/categories/:id/products/:productId", handlers.DeleteProduct)

		admin.PUT("/delivery-charge", handlers.SetDeliveryCharge)
		admin.POST("/images", handlers.UploadImage)
	}
}
