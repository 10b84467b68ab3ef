package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/config"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/database"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/handler"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/middleware"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/queue"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis backs the response cache and the rate limiter.  nil means
	// Redis is unreachable and both middlewares become pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	categories := repository.NewCategoryRepo(db)
	events := repository.NewEventRepo(db)
	tiers := repository.NewPriceTierRepo(db)
	tickets := repository.NewTicketRepo(db)
	banners := repository.NewBannerRepo(db)
	stats := repository.NewStatsRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	browseH := handler.NewBrowseHandler(categories, events, tiers, banners)
	purchaseH := handler.NewPurchaseHandler(cfg, events, tiers, tickets)
	checkinH := handler.NewCheckinHandler(tickets)
	manageEvH := handler.NewManageEventHandler(events, tiers, stats)
	categoryH := handler.NewCategoryAdminHandler(categories)
	bannerH := handler.NewBannerAdminHandler(banners)
	adminH := handler.NewAdminHandler(users, stats, tickets, tiers)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, browseH, rateMW, cacheMW)
	router.RegisterBuyer(e, purchaseH, cfg.JWTSecret, rateMW)
	router.RegisterManage(e, cfg.JWTSecret, manageEvH, checkinH, categoryH, bannerH, adminH, cacheMW)

	// Background consumer for the ticket.issued and ticket.checkedin
	// queues; it reconnects on broker failure and never takes the API
	// down.
	go func() {
		if err := queue.StartTicketingConsumer(); err != nil {
			log.Printf("ticketing-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
