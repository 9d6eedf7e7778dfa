package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron"

	config "github.com/socialorchestrator/api/configs"
	"github.com/socialorchestrator/api/internal/api/handlers"
	"github.com/socialorchestrator/api/internal/api/middleware"
	"github.com/socialorchestrator/api/internal/database"
	job "github.com/socialorchestrator/api/internal/jobs"
	"github.com/socialorchestrator/api/internal/metrics"
	"github.com/socialorchestrator/api/internal/provider"
	"github.com/socialorchestrator/api/internal/queue"
	"github.com/socialorchestrator/api/internal/repository"
	"github.com/socialorchestrator/api/internal/service"
	"github.com/socialorchestrator/api/internal/timezone"
	"github.com/socialorchestrator/api/pkg/statetoken"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	signer, err := statetoken.New([]byte(cfg.SecretKey))
	if err != nil {
		log.Fatalf("SECRET_KEY is not usable: %v", err)
	}

	db, err := database.Open(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if err := database.RunMigrations(cfg.PostgresURI); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return origin == cfg.FrontendURL
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	workspaceRepo := repository.NewWorkspaceRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	authTokenRepo := repository.NewAuthTokenRepository(db)
	postRepo := repository.NewPostRepository(db)
	postVariantRepo := repository.NewPostVariantRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)

	providers := provider.NewRegistry()
	for _, p := range []interface {
		provider.AuthProvider
		provider.Publisher
	}{
		provider.NewFacebookProvider(*cfg),
		provider.NewInstagramProvider(*cfg),
		provider.NewTwitterProvider(*cfg),
		provider.NewLinkedInProvider(*cfg),
	} {
		providers.RegisterAuthProvider(p)
		providers.RegisterPublisher(p)
	}

	scheduler := queue.NewAsynqScheduler(client)
	storageService := service.NewStorageService(*cfg)
	accountService := service.NewAccountService(workspaceRepo, socialAccountRepo, authTokenRepo, providers, collector)
	postService := service.NewPostService(db, workspaceRepo, postRepo, postVariantRepo, socialAccountRepo, mediaAssetRepo, timezone.NewSystemResolver(), scheduler)
	publishService := service.NewPublishService(postVariantRepo, socialAccountRepo, authTokenRepo, mediaAssetRepo, providers, collector)
	assetService := service.NewAssetService(workspaceRepo, mediaAssetRepo, storageService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	oauth := handlers.NewOAuthHandler(signer, providers, workspaceRepo, accountService)
	app.Get("/oauth/:network/callback", oauth.Callback)
	app.Get("/oauth/:network/authorize", authMiddleware.AuthMiddleware(), oauth.Authorize)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService)
	api.Post("/workspaces/:id/posts", post.CreatePost)
	api.Get("/workspaces/:id/posts/:postId", post.GetPost)
	api.Get("/workspaces/:id/posts", post.ListPosts)

	account := handlers.NewAccountHandler(accountService)
	api.Get("/workspaces/:id/social-accounts", account.ListSocialAccounts)
	api.Delete("/workspaces/:id/social-accounts/:accountId", account.DisconnectSocialAccount)

	asset := handlers.NewAssetHandler(assetService)
	api.Post("/workspaces/:id/media-assets", asset.UploadAsset)

	tokenJob := job.NewTokenMaintenanceJob(authTokenRepo, socialAccountRepo, providers, collector)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", tokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		worker := queue.NewWorker(publishService)
		mux.HandleFunc(queue.TaskTypePublishVariant, worker.HandlePublishVariantTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := http.ListenAndServe(cfg.MetricsAddr, metrics.SetupMetricsRoute(registry)); err != nil {
			log.Fatalf("Failed to start metrics listener: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(cfg.ServerAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ServerAddr)

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
