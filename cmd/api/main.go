package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/config"
	"github.com/findajob/jobboard/internal/handlers"
	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/repositories"
	"github.com/findajob/jobboard/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	zlog, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initializes repositories
	categoryRepo := repositories.NewCategoryRepository(db)
	companyRepo := repositories.NewCompanyRepository(db)
	listingRepo := repositories.NewListingRepository(db)
	userRepo := repositories.NewUserRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	wishlistRepo := repositories.NewWishlistRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	ctx := context.Background()

	// Initialize AI
	generator, err := services.NewGenerator(ctx, cfg.AI.Provider, cfg.AIKey(), cfg.AIModel())
	if err != nil {
		log.Fatalf("❌ Failed to initialize AI provider: %v", err)
	}
	oracle := services.NewOracle(generator, services.OracleConfig{
		Timeout:         cfg.AI.Timeout,
		ExtractionModel: cfg.AI.ExtractionModel,
		MaxLogLength:    cfg.AI.MaxLogLength,
	}, zlog)
	if oracle.Enabled() {
		log.Printf("✅ AI initialized successfully (%s)", cfg.AI.Provider)
	} else {
		log.Println("⚠️  No AI key configured, AI features are disabled")
	}

	// Initialize Qdrant
	index, err := services.NewCategoryIndex(services.QdrantIndexConfig{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
		VectorSize: cfg.Qdrant.VectorSize,
		MinScore:   cfg.Qdrant.MinScore,
		Timeout:    cfg.AI.Timeout,
	}, oracle, zlog)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if index.Enabled() {
		if err := index.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		log.Println("✅ Qdrant initialized successfully")
	}

	taxonomy := services.NewTaxonomyService(categoryRepo, zlog)
	if created, err := taxonomy.Seed(); err != nil {
		log.Fatalf("❌ Failed to seed job categories: %v", err)
	} else if created > 0 {
		log.Printf("✅ Seeded %d job categories", created)
	}

	mailer := services.NewMailer(services.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, zlog)
	log.Println("✅ Services initialized successfully")

	// Initialize worker
	notifier := services.NewJobNotifier(listingRepo, userRepo, notificationRepo, mailer, cfg.Mail.SiteURL, zlog)
	worker := services.NewWorker(
		listingRepo,
		notifier,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
		zlog,
	)
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	scheduler := services.NewScheduler(cfg.Scheduler.ExpirySweepSchedule, listingRepo, zlog)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("❌ Failed to start scheduler: %v", err)
	}
	log.Println("✅ Scheduler started successfully")

	userService := services.NewUserService(db, userRepo, categoryRepo, zlog)
	listingService := services.NewListingService(db, listingRepo, categoryRepo, companyRepo, worker, zlog)
	extractionService := services.NewExtractionService(
		db,
		listingRepo,
		categoryRepo,
		companyRepo,
		oracle,
		services.NewPreviewStore(cfg.Preview.TTL),
		worker,
		zlog,
	)
	searchService := services.NewSearchService(listingRepo, categoryRepo, oracle, index, zlog)
	documentService := services.NewDocumentService(
		db,
		docRepo,
		userRepo,
		categoryRepo,
		storageService,
		services.NewTextExtractor(),
		oracle,
		zlog,
	)
	applicationService := services.NewApplicationService(
		db,
		appRepo,
		listingRepo,
		docRepo,
		documentService,
		services.NewDocumentGenerator(),
		oracle,
		mailer,
		zlog,
	)

	chatService := services.NewChatService(chatRepo, oracle, zlog)

	// Initialize Handlers
	h := &handlers.Handlers{
		Categories:    handlers.NewCategoryHandler(taxonomy),
		Jobs:          handlers.NewJobHandler(searchService, listingService, extractionService),
		Applications:  handlers.NewApplicationHandler(applicationService),
		Documents:     handlers.NewDocumentHandler(documentService, cfg.Storage.MaxFileSize),
		Wishlist:      handlers.NewWishlistHandler(wishlistRepo, listingService),
		Notifications: handlers.NewNotificationHandler(notificationRepo),
		Profile:       handlers.NewProfileHandler(userService),
		Chat:          handlers.NewChatHandler(chatService),
	}
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "FindAJob.ai API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + handlers.UserHeader,
	}))

	// Routes
	api := app.Group("/api/v1", handlers.Authenticate(userService))
	h.Register(api)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "FindAJob.ai API",
			"version":   "1.0.0",
			"endpoints": handlers.Endpoints,
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()

		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		scheduler.Stop(stopCtx)

		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
