package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/TopengDev/ai-resume-analyzer/internal/config"
	"github.com/TopengDev/ai-resume-analyzer/internal/handlers"
	"github.com/TopengDev/ai-resume-analyzer/internal/repositories"
	"github.com/TopengDev/ai-resume-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize the record store backend
	recordStore, err := buildRecordStore(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize record store: %v", err)
	}
	log.Printf("✅ Record store initialized (%s)", cfg.Records.Backend)

	// Initialize services
	contentStore := services.NewContentStore(cfg.Storage.UploadPath)
	converter := services.NewPDFConverter(cfg.Converter.ImageWidth)
	pdfParser := services.NewPDFParserService()
	idGenerator := services.NewIDGenerator()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	inference, err := services.NewGeminiInferenceClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		contentStore,
		pdfParser,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize the submission pipeline and read projection
	pipeline := services.NewSubmissionPipeline(
		idGenerator,
		contentStore,
		converter,
		recordStore,
		inference,
	)
	projection := services.NewResumeProjection(recordStore)
	log.Println("✅ Submission pipeline initialized")

	// Initialize Handlers
	submissionHandler := handlers.NewSubmissionHandler(pipeline, cfg.Storage.MaxFileSize)
	resumeHandler := handlers.NewResumeHandler(projection)
	artifactHandler := handlers.NewArtifactHandler(contentStore)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")
	if cfg.Auth.Token != "" {
		api.Use(bearerTokenGate(cfg.Auth.Token))
	}

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/submissions", submissionHandler.HandleSubmit)
	api.Get("/submissions", resumeHandler.HandleList)
	api.Get("/submissions/:id", resumeHandler.HandleGetResume)
	api.Get("/status", submissionHandler.HandleStatus)
	api.Get("/artifacts/*", artifactHandler.HandleGetArtifact)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Resume Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/submissions",
				"GET /api/v1/submissions",
				"GET /api/v1/submissions/:id",
				"GET /api/v1/status",
				"GET /api/v1/artifacts/*",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func buildRecordStore(cfg *config.Config) (repositories.RecordStore, error) {
	switch cfg.Records.Backend {
	case "postgres":
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return repositories.NewGormRecordStore(db), nil
	case "redis":
		client, err := config.InitRedis(cfg)
		if err != nil {
			return nil, err
		}
		return repositories.NewRedisRecordStore(client), nil
	default:
		return nil, fmt.Errorf("unknown records backend: %q", cfg.Records.Backend)
	}
}

// bearerTokenGate is the auth boundary: a shared token check in front of
// the API group. Identity itself is owned by whatever sits in front of
// this service.
func bearerTokenGate(token string) fiber.Handler {
	expected := "Bearer " + token
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != expected {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
