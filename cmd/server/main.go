package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/pra2107tham/Reeva/configs"
	"github.com/pra2107tham/Reeva/internal/api/handlers"
	"github.com/pra2107tham/Reeva/internal/api/middleware"
	job "github.com/pra2107tham/Reeva/internal/jobs"
	"github.com/pra2107tham/Reeva/internal/queue"
	"github.com/pra2107tham/Reeva/internal/repository"
	"github.com/pra2107tham/Reeva/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // webhook payloads are small
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return origin == cfg.FrontendURL
		},
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	profileRepo := repository.NewProfileRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	tokenRepo := repository.NewVerificationTokenRepository(db)
	outboundRepo := repository.NewOutboundMessageRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	tokenService := service.NewTokenService(tokenRepo)
	deliveryService := service.NewDeliveryService(*cfg, outboundRepo)
	mediaService := service.NewMediaService(mediaRepo)
	profileService := service.NewProfileService(*cfg)
	submitter := queue.NewProcessSubmitter(client)
	ingestService := service.NewIngestService(*cfg, profileRepo, messageRepo,
		tokenService, deliveryService, mediaService, profileService, submitter)

	archiveService, err := service.NewArchiveService(*cfg)
	if err != nil {
		log.Printf("Warning: payload archive disabled: %v", err)
		archiveService = nil
	}

	authMiddleware := middleware.NewAuthMiddleware(*cfg)
	signatureMiddleware := middleware.NewSignatureMiddleware(*cfg)

	webhook := handlers.NewWebhookHandler(*cfg, client, archiveService)
	app.Get("/webhook", webhook.Verify)
	app.Post("/webhook", webhook.Receive)

	consume := handlers.NewConsumeHandler(ingestService)
	app.Post("/queue/consume", signatureMiddleware.VerifyQueueSignature(), consume.Consume)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	link := handlers.NewLinkHandler(tokenService, profileRepo)
	api.Post("/instagram/link", link.LinkAccount)

	media := handlers.NewMediaHandler(mediaRepo)
	api.Get("/media", media.ListMedia)

	// cron jobs
	tokenCleanupJob := job.NewTokenCleanupJob(tokenRepo)

	//queue
	queueW := queue.NewQueue(ingestService)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", tokenCleanupJob.CleanupTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeIngestEvent, queueW.HandleIngestTask)
		mux.HandleFunc(queue.TaskTypeProcessMessage, queueW.HandleProcessMessageTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
