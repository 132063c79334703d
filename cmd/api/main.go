package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sandiara-digital/ged-api/internal/config"
	"github.com/sandiara-digital/ged-api/internal/database"
	"github.com/sandiara-digital/ged-api/internal/handler"
	"github.com/sandiara-digital/ged-api/internal/middleware"
	"github.com/sandiara-digital/ged-api/internal/models"
	"github.com/sandiara-digital/ged-api/internal/repository"
	"github.com/sandiara-digital/ged-api/internal/router"
	"github.com/sandiara-digital/ged-api/internal/service"
	"github.com/sandiara-digital/ged-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Document{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate store: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	ledgerRepo := repository.NewActivityLogRepository(db)

	if err := seed(userRepo, docRepo, logger); err != nil {
		log.Fatalf("failed to seed store: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	var extractor ai.Extractor = ai.Unavailable{}
	if cfg.ExtractionEnabled() {
		extractor, err = ai.NewOpenAIExtractor(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create extractor: %v", err)
		}
	} else {
		logger.Warn().Msg("extraction provider not configured, registrations will use fallback metadata")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	feedService := service.NewActivityFeedService(natsConn, logger)
	if err := feedService.Start(); err != nil {
		log.Fatalf("failed to start activity feed: %v", err)
	}
	defer feedService.Stop()

	dashboardService := service.NewDashboardService(docRepo, ledgerRepo, redisClient, cfg.DashboardCacheTTL, logger)
	documentService := service.NewDocumentService(docRepo, extractor, validate, feedService, dashboardService, cfg.ExtractionTimeout, logger)
	activityService := service.NewActivityService(ledgerRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DocumentHandler:   handler.NewDocumentHandler(documentService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		UserHandler:       handler.NewUserHandler(userRepo, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		FeedHandler:       handler.NewFeedHandler(feedService, logger),
		SessionMiddleware: middleware.Session(userRepo),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func openStore(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return database.ConnectPostgres(cfg.DatabaseURL)
	}
	return database.ConnectSQLite(database.InMemoryDSN)
}

// seed installs the agent roster and, on an empty register, the initial
// document from the reference deployment.
func seed(users repository.UserRepository, docs repository.DocumentRepository, logger zerolog.Logger) error {
	ctx := context.Background()

	roster := []models.User{
		{ID: "1", Name: "M. le Maire Serigne Diop", Role: models.RoleMaire},
		{ID: "2", Name: "Fatou Ndiaye (Admin)", Role: models.RoleAdministrateur},
		{ID: "3", Name: "Amadou Fall (Secrétariat)", Role: models.RoleSecretaire},
	}
	if err := users.Seed(ctx, roster); err != nil {
		return err
	}

	total, err := docs.Count(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	initial := models.Document{
		ID:              "DOC-2024-001",
		Title:           "Délibération n°12 - Extension Zone Industrielle",
		Description:     "Vote pour l'extension de la zone franche de Sandiara.",
		Category:        models.CategoryDeliberation,
		Service:         "Conseil Municipal",
		Sender:          "Secrétariat Général",
		ReceivedAt:      time.Now().Add(-24 * time.Hour),
		Status:          models.StatusValide,
		Confidentiality: models.ConfidentialityPublic,
		Summary:         "Document stratégique actant l'extension de 50 hectares.",
		Tags:            []string{"Industrie", "Emploi"},
		ScannedBy:       "Amadou Fall",
		ViewCount:       45,
	}
	if err := docs.Create(ctx, &initial); err != nil {
		return err
	}

	logger.Info().Msg("seeded register with reference document")
	return nil
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
