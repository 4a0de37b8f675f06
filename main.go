package main

import (
	"linkpulse/internal/cache"
	"linkpulse/internal/config"
	"linkpulse/internal/controllers"
	"linkpulse/internal/enrichment"
	"linkpulse/internal/geoip"
	"linkpulse/internal/logger"
	"linkpulse/internal/middleware"
	"linkpulse/internal/repository"
	"linkpulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := logger.Init(cfg.Env == "development"); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		var err error
		cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		} else {
			log.Info("Connected to Redis cache")
		}
	}

	// The store holds every link and click for the process lifetime
	store := repository.NewMemoryStore()

	// Geolocation resolver chain: optional local database first, then
	// the HTTP providers in primary/fallback order
	var resolvers []geoip.Resolver
	if cfg.GeoIPDBPath != "" {
		mmdb, err := geoip.OpenMMDB(cfg.GeoIPDBPath)
		if err != nil {
			log.Warn("GeoIP database unavailable, using HTTP providers only", zap.Error(err))
		} else {
			defer mmdb.Close()
			resolvers = append(resolvers, mmdb)
		}
	}
	resolvers = append(resolvers,
		geoip.NewIPAPI(cfg.GeoPrimaryURL, cfg.GeoPrimaryTimeout),
		geoip.NewIPWho(cfg.GeoFallbackURL, cfg.GeoFallbackTimeout),
	)

	enricher := enrichment.New(store, resolvers, log)

	// Initialize services
	linkService := service.NewLinkService(store, store, cacheClient, enricher, log)
	analyticsService := service.NewAnalyticsService(store, store)

	// Initialize controllers
	shortenerController := controllers.NewShortenerController(linkService, cfg.BaseURL)
	analyticsController := controllers.NewAnalyticsController(analyticsService)
	qrcodeController := controllers.NewQRCodeController(linkService, cfg.BaseURL)

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	shortenRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitShortenRPS), cfg.RateLimitShortenBurst)
	redirectRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRedirectRPS), cfg.RateLimitRedirectBurst)

	// Create a Gin router
	router := gin.Default()

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Redirect endpoint with lenient rate limiting
	router.GET("/:shortCode", redirectRateLimiter.Limit(), shortenerController.Redirect)

	// API v1 routes group with general rate limiting
	api := router.Group("/api/v1")
	api.Use(generalRateLimiter.Limit())
	{
		// Link creation with stricter rate limiting
		api.POST("/shorten", shortenRateLimiter.Limit(), shortenerController.CreateShortLink)

		api.GET("/links", shortenerController.ListLinks)
		api.GET("/link/:id/analytics", analyticsController.GetLinkAnalytics)
		api.PATCH("/link/:id/toggle", shortenerController.ToggleLink)
		api.DELETE("/link/:id", shortenerController.DeleteLink)

		api.GET("/dashboard", analyticsController.GetDashboard)

		// QR Code generation
		api.GET("/qrcode/:shortCode", qrcodeController.GenerateQRCode)
	}

	log.Info("Server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
