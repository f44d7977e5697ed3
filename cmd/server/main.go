package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"genie/internal/config"
	"genie/internal/handler"
	"genie/internal/logger"
	"genie/internal/repository"
	"genie/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var exit = os.Exit

// fatal logs err, flushes the logger and exits with status 1
func fatal(log logger.Logger, msg string, err error) {
	log.WithError(err).Error(msg, nil)
	_ = log.Sync()
	exit(1)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	log.Info("starting property genie", map[string]interface{}{
		"version":   Version,
		"buildTime": BuildTime,
		"gitCommit": GitCommit,
	})

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, closeCatalog, err := buildCatalog(ctx, cfg, log)
	if err != nil {
		fatal(log, "failed to initialise catalog", err)
	}
	defer closeCatalog()

	// Initialize services
	sessions := service.NewSessionService(catalog, service.SessionConfig{
		DefaultLocation: cfg.Conversation.DefaultLocation,
		ResultLimit:     cfg.Catalog.ResultLimit,
		IdleTTL:         cfg.Conversation.SessionIdleTTL,
		Engine: service.EngineOptions{
			ReplyDelay:   cfg.Conversation.ReplyDelay,
			StaggerDelay: cfg.Conversation.StaggerDelay,
		},
	}, log)
	go sessions.Run(ctx)

	log.Info("services initialized", map[string]interface{}{
		"defaultLocation": cfg.Conversation.DefaultLocation,
		"replyDelay":      cfg.Conversation.ReplyDelay.String(),
		"staggerDelay":    cfg.Conversation.StaggerDelay.String(),
	})

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS configuration
	origins := strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig := cors.DefaultConfig()
	if cfg.Server.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "property-genie",
			"sessions":   sessions.Count(),
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	handler.RegisterRoutes(router.Group("/api/v1"),
		handler.NewSessionHandler(sessions, log),
		handler.NewListingHandler(sessions),
		handler.NewSocketHandler(sessions, origins, log),
	)

	// Serve the frontend build, see static.go
	setupStaticFiles(router, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("server listening", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server failed", nil)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server", nil)

	// Cancel in-flight turns before draining connections
	sessions.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed", nil)
	}
	log.Info("server stopped", nil)
}

// buildCatalog selects the catalog backend and wraps it in the Redis cache when configured
func buildCatalog(ctx context.Context, cfg *config.Config, log logger.Logger) (service.Catalog, func(), error) {
	var (
		catalog service.Catalog
		closers []func()
	)

	switch cfg.Catalog.Backend {
	case "postgres":
		pg, err := repository.NewPostgresCatalog(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = pg.Close() })
		catalog = pg
		log.Info("connected to PostgreSQL catalog", nil)
	default:
		catalog = repository.NewMemoryCatalog(nil)
		log.Info("using in-memory catalog", map[string]interface{}{"items": len(repository.DefaultProperties)})
	}

	cached := false
	if cfg.Redis.Addr != "" {
		client, err := repository.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, falling back to local catalog cache", map[string]interface{}{"addr": cfg.Redis.Addr})
		} else {
			closers = append(closers, func() { _ = client.Close() })
			catalog = repository.NewCachedCatalog(catalog, client, cfg.Redis.CacheTTL, log)
			cached = true
			log.Info("redis catalog cache enabled", map[string]interface{}{"addr": cfg.Redis.Addr, "ttl": cfg.Redis.CacheTTL.String()})
		}
	}
	if !cached && cfg.Catalog.Backend == "postgres" {
		catalog = repository.NewLocalCachedCatalog(catalog, cfg.Redis.CacheTTL)
		log.Info("local catalog cache enabled", map[string]interface{}{"ttl": cfg.Redis.CacheTTL.String()})
	}

	return catalog, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
