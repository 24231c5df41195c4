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
	"github.com/robfig/cron"

	config "github.com/renefichtmueller/ctxpost-sub002/configs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/api/handlers"
	"github.com/renefichtmueller/ctxpost-sub002/internal/api/middleware"
	"github.com/renefichtmueller/ctxpost-sub002/internal/cache"
	job "github.com/renefichtmueller/ctxpost-sub002/internal/jobs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/platform"
	"github.com/renefichtmueller/ctxpost-sub002/internal/queue"
	"github.com/renefichtmueller/ctxpost-sub002/internal/ratelimit"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
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

	views, err := cache.New(cfg.RedisURI)
	if err != nil {
		log.Printf("Warning: view cache unavailable: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)
	targetRepo := repository.NewPostTargetRepository(db)
	accountRepo := repository.NewSocialAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	shortLinkRepo := repository.NewShortLinkRepository(db)
	credentialRepo := repository.NewPlatformCredentialRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	limiter := ratelimit.NewMemoryLimiter()
	connectors := platform.NewRegistry()
	connectors.Register("instagram", platform.NewInstagramConnector())
	credentialResolver := service.NewCredentialResolver(*cfg, credentialRepo)

	mediaStorage := service.NewMediaStorage(*cfg)
	postService := service.NewPostService(db, postRepo, targetRepo, accountRepo, mediaAssetRepo, postMediaRepo, mediaStorage)
	lifecycleService := service.NewLifecycleService(postRepo, views)
	publishService := service.NewPublishService(postRepo, targetRepo, accountRepo, auditRepo, connectors, limiter, views)
	recycleService := service.NewRecycleService(db, postRepo, targetRepo, postMediaRepo, auditRepo)
	shortLinkService := service.NewShortLinkService(shortLinkRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	shortLinks := handlers.NewShortLinkHandler(shortLinkService, cfg.ShortLinkBase)
	app.Get("/s/:code", shortLinks.Redirect)

	connectService := service.NewConnectService(*cfg, accountRepo, connectors)
	connect := handlers.NewConnectHandler(connectService, *cfg)
	app.Get("/auth/:platform", connect.AddSocialAccount)
	app.Get("/auth/:platform/callback", connect.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, lifecycleService, views, client)
	api.Post("/posts/create", post.CreatePost)
	api.Post("/posts/reschedule", post.ReschedulePost)
	api.Post("/posts/evergreen", post.MarkEvergreen)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	account := handlers.NewAccountHandler(accountRepo)
	api.Get("/accounts", account.ListAccounts)
	api.Post("/accounts/remove", account.RemoveAccount)

	api.Post("/links/new", shortLinks.CreateShortLink)

	credential := handlers.NewCredentialHandler(*cfg, credentialRepo, credentialResolver)
	api.Post("/credentials/update", credential.UpdateCredentials)
	api.Get("/credentials/:platform", credential.CredentialStatus)

	var insightGen service.InsightGenerator // wired by deployments that enable it
	insight := handlers.NewInsightHandler(insightGen)
	api.Post("/insights/stream", insight.Stream)

	// cron jobs
	duePostJob := job.NewDuePostJob(postRepo, client)
	recycleJob := job.NewRecycleJob(recycleService)

	cronJobs := handlers.NewCronHandler(recycleService, duePostJob)
	cronGroup := app.Group("/cron", authMiddleware.CronMiddleware())
	cronGroup.Post("/recycle", cronJobs.RecycleEvergreen)
	cronGroup.Post("/sweep", cronJobs.SweepDuePosts)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", duePostJob.Run)
	c.AddFunc("@every 01h00m00s", recycleJob.Run)
	c.Start()

	queueW := queue.NewQueue(publishService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

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

	gracefulShutdown(app, db, views)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, views *cache.ViewCache) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	if err := views.Close(); err != nil {
		log.Printf("Failed to close view cache: %v", err)
	}
	closeDB(db)
	log.Println("Server shutdown complete.")
}
