// @title           iHeadshot Backend API
// @version         1.0.0
// @description     Backend API for iheadshot.app. Handles checkout, selfie uploads, AI face-model training, headshot generation and upscaling, with order status polling and realtime updates via Supabase Realtime.

// @contact.name   API Support
// @contact.email  support@iheadshot.app

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an admin JWT.

package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"iheadshot-backend/internal/astria"
	"iheadshot-backend/internal/config"
	"iheadshot-backend/internal/database"
	"iheadshot-backend/internal/handlers"
	"iheadshot-backend/internal/logger"
	"iheadshot-backend/internal/mailer"
	"iheadshot-backend/internal/middleware"
	"iheadshot-backend/internal/payments"
	"iheadshot-backend/internal/replicate"
	"iheadshot-backend/internal/services"
	"iheadshot-backend/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required; set it to your Supabase PostgreSQL connection string")
	}

	// Run migrations before anything touches the schema
	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()
	logger.Info("migrations completed")

	// Database client for direct queries
	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	// Supabase clients for storage and realtime
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	// External providers
	paymentsClient := payments.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	astriaClient := astria.NewClient(cfg.AstriaBaseURL, cfg.AstriaAPIKey)
	replicateClient := replicate.NewClient(cfg.ReplicateBaseURL, cfg.ReplicateAPIToken, cfg.ReplicateFallbackModel, cfg.ReplicateUpscaleModel)

	mail := mailer.NewMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	})

	callbackURL := cfg.WebhookCallbackURL
	if callbackURL == "" {
		callbackURL = cfg.BaseURL
	}

	pipeline := services.NewPipeline(
		dbClient,
		astriaClient,
		astriaClient,
		replicateClient,
		replicateClient,
		storageClient,
		mail,
		realtimeClient,
		callbackURL,
	)

	// Handlers
	checkoutHandler := handlers.NewCheckoutHandler(paymentsClient)
	stripeWebhookHandler := handlers.NewStripeWebhookHandler(paymentsClient, pipeline)
	generationWebhookHandler := handlers.NewGenerationWebhookHandler(pipeline)
	uploadHandler := handlers.NewUploadHandler(dbClient, storageClient)
	trainHandler := handlers.NewTrainHandler(pipeline)
	statusHandler := handlers.NewStatusHandler(dbClient)
	galleryHandler := handlers.NewGalleryHandler(dbClient)
	upscaleHandler := handlers.NewUpscaleHandler(pipeline)
	adminHandler := handlers.NewAdminOrdersHandler(dbClient)

	// Setup router
	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// Public API routes
	api := router.Group("/api/v1")

	api.POST("/checkout", checkoutHandler.CreateCheckout)

	api.POST("/orders/:order_id/uploads", uploadHandler.UploadPhotos)
	api.POST("/orders/:order_id/train", trainHandler.StartTraining)
	api.GET("/orders/:order_id/status", statusHandler.GetStatus)
	api.GET("/orders/:order_id/gallery", galleryHandler.GetGallery)
	api.POST("/orders/:order_id/upscale", upscaleHandler.UpscaleImages)

	// Webhooks (no auth; verified by signature or correlation id)
	api.POST("/webhooks/stripe", stripeWebhookHandler.HandleWebhook)
	api.POST("/webhooks/generation", generationWebhookHandler.HandleWebhook)

	// Admin routes behind JWT
	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg))
	admin.GET("/orders", adminHandler.ListOrders)
	admin.GET("/orders/:order_id", adminHandler.GetOrder)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
