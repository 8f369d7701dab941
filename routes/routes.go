package routes

import (
	"time"

	"everafter/handlers"
	"everafter/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	// Add health check endpoint for testing
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Everafter API is running",
			"time":    time.Now().Unix(),
		})
	})

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5500", "http://127.0.0.1:5500"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Guest submissions (public, rate limited)
	uploads := router.Group("/api/upload")
	uploads.Use(middleware.UploadRateLimit())
	uploads.POST("/image", handlers.UploadImage)
	uploads.POST("/video", handlers.UploadVideo)
	uploads.POST("/post", handlers.UploadPost)

	// Galleries and feed
	router.GET("/api/images", handlers.ListImages)
	router.GET("/api/videos", handlers.ListVideos)
	router.GET("/api/posts", handlers.ListPosts)
	router.POST("/api/posts/:id/like", handlers.LikePost)
	router.POST("/api/posts/:id/comments", handlers.AddComment)

	// Push subscriptions
	router.GET("/api/vapid-public-key", handlers.GetVapidPublicKey)
	router.POST("/api/subscribe", handlers.SubscribePush)

	// Moderation (admin only)
	router.POST("/api/admin/login", handlers.AdminLogin)

	admin := router.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware())
	admin.DELETE("/images/:id", handlers.DeleteImage)
	admin.DELETE("/videos/:id", handlers.DeleteVideo)
	admin.DELETE("/posts/:id", handlers.DeletePost)

	// Add a catch-all for undefined API routes
	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error":   "Endpoint not found",
				"path":    c.Request.URL.Path,
				"message": "Check the API documentation for available endpoints",
			})
			return
		}
		c.Next()
	})

	return router
}
