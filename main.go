package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"affiliate-dashboard-system/handlers"
	"affiliate-dashboard-system/models"
	"affiliate-dashboard-system/services"
	"affiliate-dashboard-system/utils"
	"affiliate-dashboard-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func envDuration(name string, unit time.Duration, fallback int) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return time.Duration(fallback) * unit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Fatalf("invalid %s: %q", name, raw)
	}
	return time.Duration(n) * unit
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB — this service only moves JSON
	})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}
	utils.InitJWT()
	redisClient := utils.InitRedis()

	// TranslateError lets the link service catch tracking-code collisions
	// as gorm.ErrDuplicatedKey instead of a raw pgconn error.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Affiliate{},
		&models.AffiliateLink{},
		&models.ClickEvent{},
		&models.VisitEvent{},
		&models.EarningRecord{},
		&models.PayoutRecord{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// --- Attribution and payout policy, all env-tunable ---
	attributionWindow := envDuration("ATTRIBUTION_WINDOW_HOURS", time.Hour, 24)
	earningHold := envDuration("EARNING_HOLD_DAYS", 24*time.Hour, 7)
	minPageViews := 0
	if raw := os.Getenv("ATTRIBUTION_MIN_PAGE_VIEWS"); raw != "" {
		minPageViews, err = strconv.Atoi(raw)
		if err != nil || minPageViews < 0 {
			log.Fatalf("invalid ATTRIBUTION_MIN_PAGE_VIEWS: %q", raw)
		}
	}
	minPayout := decimal.NewFromInt(50)
	if raw := os.Getenv("MIN_PAYOUT_AMOUNT"); raw != "" {
		minPayout, err = decimal.NewFromString(raw)
		if err != nil {
			log.Fatalf("invalid MIN_PAYOUT_AMOUNT: %q", raw)
		}
	}
	// --- END CONFIG ---

	eventService := services.NewEventService(db)
	linkerService := services.NewLinkerService(db, attributionWindow, minPageViews)
	aggregatorService := services.NewAggregatorService(db)
	statsService := services.NewStatsService(db, redisClient, aggregatorService)
	earningService := services.NewEarningService(db, linkerService, statsService)
	payoutService := services.NewPayoutService(db, minPayout, statsService)
	linkService := services.NewLinkService(db)
	reportService := services.NewReportService(db)

	// --- Affiliate directory sync from the identity service ---
	identityServiceURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityServiceURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("AFFILIATE_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("AFFILIATE_SERVICE_TOKEN environment variable not set")
	}
	syncWorker := workers.NewAffiliateSyncWorker(db, identityServiceURL, "/api/v1/internal/affiliates", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting Affiliate Sync Worker...")
		syncWorker.Start(ctx)
	}()

	go workers.PollUnlinkedEarnings(ctx, linkerService, 1*time.Minute)

	earningService.StartMaturationScheduler(earningHold)

	handlers.SetupTrackingRoutes(app, eventService, linkService)
	handlers.SetupLinkRoutes(app, linkService, statsService)
	handlers.SetupStatsRoutes(app, statsService, earningService)
	handlers.SetupEarningRoutes(app, earningService)
	handlers.SetupPayoutRoutes(app, payoutService)
	handlers.SetupReportRoutes(app, reportService)

	go func() {
		if err := app.Listen(":5100"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5100")
	log.Println("✅ Affiliate Sync Worker running")
	log.Println("✅ Conversion linker sweep running (every 1m)")
	log.Printf("✅ Attribution window: %s, earning hold: %s", attributionWindow, earningHold)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
