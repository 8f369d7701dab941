package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"everafter/database"
	"everafter/handlers"
	"everafter/jobs"
	"everafter/routes"
	"everafter/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("🚀 Starting Everafter Content Server...")

	// Local development reads .env; deployed environments set real vars
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// ===== REQUIRED ENV VARIABLES =====
	jwtSecret := os.Getenv("JWT_SECRET")
	mongoURI := os.Getenv("MONGODB_URI")
	cloudinaryURL := os.Getenv("CLOUDINARY_URL")

	if jwtSecret == "" || mongoURI == "" || cloudinaryURL == "" {
		log.Fatal("❌ JWT_SECRET, MONGODB_URI and CLOUDINARY_URL must be set")
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Println("🔌 Connecting to MongoDB...")

	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(); err != nil {
			dbErr = err
			log.Printf("❌ MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}

	if dbErr != nil {
		log.Fatal("❌ Failed to connect to MongoDB:", dbErr)
	}

	log.Println("✅ MongoDB connected successfully")

	// ===== WIRE STORES =====
	store := database.NewStore()
	handlers.SetStore(store)

	assets, err := storage.NewCloudinary(cloudinaryURL, "everafter")
	if err != nil {
		log.Fatal("❌ Cloudinary configuration error:", err)
	}
	handlers.SetAssetStore(assets)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := handlers.SeedAdmin(seedCtx); err != nil {
		log.Fatal("❌ Failed to seed admin account:", err)
	}
	seedCancel()

	// ===== GIN MODE =====
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
		log.Println("⚙️ Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("⚙️ Running in DEBUG mode")
	}

	// ===== ROUTER =====
	router := routes.SetupRouter()

	// Health check for the hosting platform
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "Everafter Content Server Running 🚀",
			"service": "healthy",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// ===== ORPHANED-ASSET SWEEPER =====
	sweeper := jobs.NewSweeper(store, assets)
	if err := sweeper.Start(); err != nil {
		log.Fatal("❌ Failed to start sweeper:", err)
	}

	// ===== SERVER CONFIG =====
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  120 * time.Second, // video uploads are slow
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🌐 Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Server error:", err)
		}
	}()

	log.Println("✅ Server is ready and accepting connections")

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}

	if err := database.DisconnectMongo(); err != nil {
		log.Println("❌ MongoDB disconnect error:", err)
	}

	log.Println("👋 Server stopped gracefully")
}
