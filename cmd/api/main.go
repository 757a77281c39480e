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

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/salescribe-team/salescribe/pkg/validator"

	"github.com/salescribe-team/salescribe/internal/adapter/handler"
	"github.com/salescribe-team/salescribe/internal/adapter/repository"
	"github.com/salescribe-team/salescribe/internal/infrastructure/cache"
	"github.com/salescribe-team/salescribe/internal/infrastructure/database"
	"github.com/salescribe-team/salescribe/internal/infrastructure/external/email"
	stripeclient "github.com/salescribe-team/salescribe/internal/infrastructure/external/stripe"
	whatsappclient "github.com/salescribe-team/salescribe/internal/infrastructure/external/whatsapp"
	httpmw "github.com/salescribe-team/salescribe/internal/infrastructure/http/middleware"
	"github.com/salescribe-team/salescribe/internal/infrastructure/storage"
	"github.com/salescribe-team/salescribe/internal/usecase/billing"
	"github.com/salescribe-team/salescribe/internal/usecase/extraction"
	"github.com/salescribe-team/salescribe/internal/usecase/messaging"
	"github.com/salescribe-team/salescribe/pkg/ai"
	"github.com/salescribe-team/salescribe/pkg/config"
	"github.com/salescribe-team/salescribe/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("🔄 Applying SQL migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	deduper := cache.NewEventDeduper(redisClient, 24*time.Hour)
	activationBus := cache.NewActivationBus(redisClient)

	// Initialize object storage for voice note archival
	var archive *storage.AudioArchive
	if cfg.Storage.Enabled {
		log.Println("🗄️  Connecting to object storage...")
		archive, err = storage.NewAudioArchive(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
	} else {
		log.Println("🗄️  Object storage disabled; voice notes will not be archived")
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	transcriptRepo := repository.NewTranscriptRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	phoneRepo := repository.NewPhoneMappingRepository(db)

	// Initialize vendor clients
	log.Println("🌐 Initializing vendor clients...")
	waClient := whatsappclient.NewClient(&cfg.WhatsApp)
	stripeAPI := stripeclient.NewClient(&cfg.Stripe)
	openaiClient := ai.NewOpenAIClient(&cfg.OpenAI)
	mailer := email.NewClient(&cfg.Email)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize services
	log.Println("✨ Initializing services...")
	billingService := billing.NewService(
		subscriptionRepo, walletRepo, profileRepo,
		stripeAPI, activationBus, mailer, deduper,
		&cfg.Stripe, logger,
	)
	extractionService := extraction.NewService(openaiClient, logger)

	var archiver messaging.Archiver
	if archive != nil {
		archiver = archive
	}
	messagingService := messaging.NewService(
		transcriptRepo, templateRepo, profileRepo, phoneRepo,
		waClient, openaiClient, archiver, deduper,
		extractionService, billingService, logger,
	)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	whatsappWebhook := handler.NewWhatsAppWebhookHandler(messagingService, &cfg.WhatsApp, logger)
	stripeWebhook := handler.NewStripeWebhookHandler(billingService, &cfg.Stripe, logger)
	billingHandler := handler.NewBillingHandler(billingService, logger)
	templateHandler := handler.NewTemplateHandler(templateRepo, logger)
	transcriptHandler := handler.NewTranscriptHandler(transcriptRepo, profileRepo, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	authMW := httpmw.NewAuthMiddleware(jwtManager)
	router := handler.NewRouter(cfg, authMW, whatsappWebhook, stripeWebhook, billingHandler, templateHandler, transcriptHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
