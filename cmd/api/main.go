package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leafsii/blog-backend/internal/api"
	"github.com/leafsii/blog-backend/internal/auth"
	"github.com/leafsii/blog-backend/internal/blog"
	"github.com/leafsii/blog-backend/internal/config"
	gdb "github.com/leafsii/blog-backend/internal/db"
	"github.com/leafsii/blog-backend/internal/log"
	"github.com/leafsii/blog-backend/internal/media"
	"github.com/leafsii/blog-backend/internal/metrics"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env, "blog-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting blog API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"db_type", cfg.Database.Type,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("blog-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	db, err := gdb.NewDatabase(&gdb.Config{
		Type:         cfg.Database.Type,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		logger.Fatalw("Invalid database configuration", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := gdb.ConnectAndMigrate(ctx, db); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer db.Disconnect(context.Background())
	logger.Infow("Database initialized", "dialect", db.Dialect())

	tokenStore, closeTokens := newTokenStore(cfg, db, logger)
	defer closeTokens()

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatalw("Invalid bcrypt cost", "error", err)
	}
	tokens := auth.NewManager(tokenStore, db.Users(), cfg.Auth.TokenTTL, logger)

	mediaStore, err := media.NewDiskStore(cfg.Media.Root, cfg.PublicURL, cfg.Media.AvatarMaxBytes)
	if err != nil {
		logger.Fatalw("Failed to setup media store", "error", err)
	}

	svc := blog.NewService(db, hasher, tokens, mediaStore, metricsObj, logger)

	// Setup API handler and middleware
	handler := api.NewHandler(svc, db, logger)
	middleware := api.NewMiddleware(logger, metricsObj, svc)
	router := handler.Routes(middleware, cfg.Security.CORSAllowedOrigins)

	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Add metrics endpoint
	router.Handle("/metrics", metricsHandler)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}

// newTokenStore keeps tokens in Redis when configured and reachable, and in
// the database otherwise.
func newTokenStore(cfg *config.Config, db *gdb.Database, logger *zap.SugaredLogger) (auth.TokenStore, func()) {
	sqlStore := auth.NewSQLTokenStore(db.Tokens())
	if cfg.Auth.RedisAddr == "" {
		return sqlStore, func() {}
	}

	redisStore, err := auth.NewRedisTokenStore(cfg.Auth.RedisAddr)
	if err != nil {
		logger.Warnw("Redis token store unavailable, using database", "addr", cfg.Auth.RedisAddr, "error", err)
		return sqlStore, func() {}
	}

	logger.Infow("Token store connected", "backend", "redis")
	return redisStore, func() { redisStore.Close() }
}
