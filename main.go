package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stattact-service/config"
	"stattact-service/handlers"
	"stattact-service/middleware"
	"stattact-service/models"
	"stattact-service/observability"
	"stattact-service/services"
	"stattact-service/tactics"
	"stattact-service/utils"
	"stattact-service/workers"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics("stattact", reg)

	// --- Storage ---
	var db *gorm.DB
	var store services.KVStore
	if cfg.DatabaseURL != "" {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		if err := db.AutoMigrate(
			&models.StoredValue{},
			&models.Team{},
			&models.CommunityFormation{},
			&models.LeaderboardEntry{},
			&models.CheckoutSession{},
		); err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		store = services.NewGormKVStore(db)
	} else {
		log.Println("⚠️  DATABASE_URL not set, keeping state in memory (community and leaderboard disabled)")
		store = services.NewMemoryKVStore()
	}

	var teamCache services.TeamCache
	var redisCache *services.RedisTeamCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("⚠️  Redis unreachable, team list will not be cached: %v", err)
		} else {
			redisCache = services.NewRedisTeamCache(rdb)
			teamCache = redisCache
		}
		cancel()
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal("failed to create scheduler:", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Printf("Scheduler shutdown error: %v", err)
		}
	}()

	// --- Services ---
	seed := cfg.SimSeed
	if seed == 0 {
		seed = tactics.SeedFromTime()
	}
	rng := tactics.NewSource(seed)

	var backend *services.BackendClient
	if cfg.BackendURL != "" {
		backend = services.NewBackendClient(cfg.BackendURL, utils.HTTPClient, metrics)
	} else {
		log.Println("⚠️  BACKEND_URL not set, analyses come from the built-in generator")
	}

	teams := services.NewTeamDirectory(db, teamCache, backend)
	tracker := services.NewProgressTracker(sched, metrics)
	history := services.NewHistoryService(store, metrics)

	var leaderboard *services.LeaderboardService
	var community *services.CommunityService
	var results services.ResultRecorder
	if db != nil {
		leaderboard = services.NewLeaderboardService(db)
		if err := leaderboard.Seed(ctx); err != nil {
			log.Fatal("failed to seed leaderboard:", err)
		}
		if err := leaderboard.StartRankScheduler(sched); err != nil {
			log.Fatal("failed to schedule rank job:", err)
		}
		results = leaderboard

		community = services.NewCommunityService(db, history)
		if err := community.Seed(ctx); err != nil {
			log.Fatal("failed to seed community formations:", err)
		}
	}

	tacticsService := services.NewTacticsService(history, teams, backend, tracker, rng, metrics)
	simulationService := services.NewSimulationService(rng, tracker, results, metrics)

	var users services.UserResolver
	var authService *services.AuthService
	if cfg.Supabase.URL != "" {
		supabase := services.NewSupabaseClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
		users = supabase
		authService = services.NewAuthService(supabase)
	} else {
		log.Println("⚠️  SUPABASE_URL not set, only anonymous client ids are accepted")
	}

	var checkout services.CheckoutCreator
	if cfg.Stripe.SecretKey != "" {
		checkout = services.NewStripeCheckout(cfg.Stripe.SecretKey)
	}
	billing := services.NewBillingService(db, checkout, cfg.Stripe, metrics)

	var uploader services.ObjectUploader
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Client(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		uploader = r2
	}
	share := services.NewShareService(history, uploader)

	var teamSync *workers.TeamSyncWorker
	if db != nil && backend != nil {
		var invalidator workers.CacheInvalidator
		if redisCache != nil {
			invalidator = redisCache
		}
		teamSync = workers.NewTeamSyncWorker(db, backend, invalidator, metrics, cfg.TeamSyncInterval)
		teamSync.Start(ctx)
	}

	// --- HTTP ---
	app := fiber.New(fiber.Config{
		AppName:   "stattact-service",
		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Client-ID, Cache-Control",
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
		MaxAge:        86400,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "database": db != nil, "cache": teamCache != nil})
	})
	app.Get("/metrics", metrics.Handler())

	owner := middleware.OwnerContextMiddleware(users)
	handlers.SetupTacticsRoutes(app, owner, middleware.SSEAuthMiddleware(users), tacticsService, simulationService, teams, tracker)
	handlers.SetupHistoryRoutes(app, owner, history, share)
	if community != nil {
		handlers.SetupCommunityRoutes(app, owner, community, leaderboard)
	}
	handlers.SetupAccountRoutes(app, owner, middleware.UserContextMiddleware(users), authService, billing)
	handlers.SetupInternalRoutes(app, cfg.ServiceToken, teamSync, leaderboard)

	if err := os.MkdirAll(cfg.Server.StaticDir, os.ModePerm); err != nil {
		log.Fatal("failed to ensure static dir:", err)
	}
	app.Use("/", filesystem.New(filesystem.Config{
		Root:   http.Dir(cfg.Server.StaticDir),
		Index:  "index.html",
		MaxAge: 3600,
	}))

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Server.Port)
	log.Printf("✅ CORS configured for origins: %s", cfg.Server.AllowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
