package main

import (
	"log"
	"net/http"
	"os"

	"bakery-menu-api/config"
	"bakery-menu-api/docstore"
	"bakery-menu-api/handlers"
	"bakery-menu-api/live"
	"bakery-menu-api/logger"
	"bakery-menu-api/metrics"
	"bakery-menu-api/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	// Load config and initialize database
	config.Load()
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       config.GetEnv("LOG_LEVEL", "info"),
		Environment: config.GetEnv("APP_ENV", "development"),
		ServiceName: "bakery-menu-api",
	}); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	config.InitDB()

	// Document store and live menu projector
	store := docstore.New(config.DB)
	feed := live.NewProjector(store)
	defer feed.Close()

	handlers.Init(store, feed)

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(), metrics.Middleware())

	// CORS middleware for frontend integration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Bakery Menu & Ordering API",
			"version": "1.0.0",
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", metrics.Handler())

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🧁 Welcome to the Bakery Menu & Ordering API",
			"menu":    "/api/categories",
			"health":  "/health",
		})
	})

	// Register all routes
	routes.SetupRoutes(r)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
