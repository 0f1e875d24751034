package router

import (
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/handlers"
	"github.com/rodamidia/roda-campaign-services-backend/internal/middleware"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin router with the field-evidence API routes
func SetupRouter(db *gorm.DB, storage *services.StorageService, mirror *services.MirrorService) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Create a new router
	r := gin.New()

	// Use middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Create services
	authService := auth.NewAuthService(db)

	// Create middleware with services
	sessionMiddleware := middleware.NewSessionMiddleware(authService)

	// Create handlers with services
	authHandler := handlers.NewAuthHandler(authService)
	evidenceHandler := handlers.NewEvidenceHandler(db, storage, mirror)
	adminHandler := handlers.NewAdminHandler(db, storage, mirror)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Stored evidence photos
	if storage != nil {
		r.Static("/uploads", storage.Dir())
	}

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Public login routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/driver/login", authHandler.DriverLogin)
			authRoutes.POST("/graphic/login", authHandler.GraphicLogin)
			authRoutes.POST("/admin/login", authHandler.AdminLogin)
		}

		// Driver session routes
		driver := api.Group("/driver")
		driver.Use(sessionMiddleware.RequireRole("driver"))
		{
			driver.POST("/evidence", evidenceHandler.SubmitDriverEvidence)
			driver.GET("/status", evidenceHandler.GetDriverStatus)
		}

		// Graphic session routes
		graphic := api.Group("/graphic")
		graphic.Use(sessionMiddleware.RequireRole("graphic"))
		{
			graphic.POST("/evidence", evidenceHandler.SubmitGraphicEvidence)
			graphic.GET("/status", evidenceHandler.GetGraphicStatus)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(sessionMiddleware.RequireRole("admin"))
		{
			admin.POST("/campaigns", adminHandler.CreateCampaign)
			admin.GET("/campaigns", adminHandler.GetCampaigns)
			admin.GET("/campaigns/:id", adminHandler.GetCampaignByID)
			admin.PUT("/campaigns/:id/cooldown", adminHandler.UpdateCooldown)
			admin.POST("/campaigns/:id/graphics", adminHandler.CreateGraphic)
			admin.GET("/campaigns/:id/drivers", adminHandler.GetCampaignDrivers)
			admin.POST("/campaigns/:id/import", adminHandler.ImportRoster)
			admin.GET("/campaigns/:id/export", adminHandler.ExportRoster)
			admin.POST("/campaigns/:id/drivers/:driver_id/verify", adminHandler.SetVerified)
			admin.GET("/campaigns/:id/drivers/:driver_id/status", adminHandler.GetDriverStatus)
		}
	}

	return r
}
