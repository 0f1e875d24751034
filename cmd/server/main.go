package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Import Swagger docs
	_ "github.com/rodamidia/roda-campaign-services-backend/docs"
	"github.com/rodamidia/roda-campaign-services-backend/internal/database"
	"github.com/rodamidia/roda-campaign-services-backend/internal/router"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services/auth"
	"github.com/rodamidia/roda-campaign-services-backend/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title Roda Campaign Services API
// @version 1.0
// @description Field evidence backend for outdoor vehicle-advertising campaigns

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter `Bearer ` followed by your session token

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Configure logging
	configureLogging()

	// Initialize Sentry
	utils.InitSentry()

	// Initialize database connection
	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize evidence photo storage
	baseURL := getEnv("BASE_URL", "")
	storage := services.NewStorageService(baseURL)

	// Initialize the sheet mirror publisher. The mirror is best-effort:
	// evidence capture keeps working without it.
	mirror, err := services.NewMirrorService()
	if err != nil {
		logrus.Warnf("Failed to initialize sheet mirror publisher: %v", err)
		mirror = nil
	} else {
		defer mirror.Close()
	}

	// Create admin user if not exists
	authService := auth.NewAuthService(db)
	if err := authService.CreateAdminUser(); err != nil {
		logrus.Warnf("Failed to create admin user: %v", err)
	} else {
		logrus.Info("Admin user check completed")
	}

	// Initialize router
	r := router.SetupRouter(db, storage, mirror)

	// Configure HTTP server
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging() {
	logLevel := getEnv("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
