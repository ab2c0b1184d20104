// @title Budget Ledger API
// @version 1.0
// @description Per-user category and expense storage for the budget ledger.
// @BasePath /budget-ledger
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer followed by an identity provider access token
// @securityDefinitions.apikey AnonKey
// @in header
// @name Authorization
// @description Bearer followed by the public anonymous key
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/budget-ledger/internal/amqp"
	"github.com/dafibh/budget-ledger/internal/config"
	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/handler"
	"github.com/dafibh/budget-ledger/internal/identity"
	"github.com/dafibh/budget-ledger/internal/middleware"
	"github.com/dafibh/budget-ledger/internal/repository/postgres"
	"github.com/dafibh/budget-ledger/internal/repository/sqlite"
	"github.com/dafibh/budget-ledger/internal/repository/storage"
	"github.com/dafibh/budget-ledger/internal/service"
	"github.com/dafibh/budget-ledger/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Key-value store
	kv, closeKV := openKVStore(ctx, cfg)
	defer closeKV()

	// Identity provider
	identityClient := identity.NewClient(cfg.Identity.URL, cfg.Identity.AnonKey, identity.WithServiceKey(cfg.Identity.ServiceKey))
	resolver := tokenResolver(cfg, identityClient)

	// Change feed: websocket hub, plus a broker when configured
	hub := websocket.NewHub()
	publishers := domain.ChangePublishers{hub}
	if cfg.AMQP.Enabled() {
		publisher, err := amqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to message broker")
		}
		defer publisher.Close()
		publishers = append(publishers, publisher)
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Publishing changes to message broker")
	}

	// Initialize services
	calculationService := service.NewCalculationService()
	reportService := service.NewReportService(calculationService, service.NewXLSXReportWriter())
	ledgerService := service.NewLedgerService(kv, publishers, calculationService, reportService)
	authService := service.NewAuthService(identityClient)

	if cfg.S3.Enabled() {
		archive, err := storage.NewS3ReportRepository(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize report archive")
		}
		ledgerService.SetReportArchive(archive, cfg.S3.URLExpiry)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Report archive enabled")
	}

	signupLimiter := middleware.NewRateLimiterWithConfig(cfg.SignupRatePerMin, cfg.SignupBurst)
	defer signupLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "apikey"},
		MaxAge:       86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check and documentation
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", handler.OpenAPI3Handler([]handler.Server{
		{URL: "http://localhost:" + cfg.Port + "/" + cfg.ServicePrefix, Description: "Local Development"},
	}))

	// Register API routes
	handler.RegisterRoutes(e, handler.RouteConfig{
		Prefix:         cfg.ServicePrefix,
		AnonKey:        cfg.Identity.AnonKey,
		AuthMiddleware: middleware.NewAuthMiddleware(resolver),
		SignupLimiter:  signupLimiter,
	}, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Report:    handler.NewReportHandler(ledgerService),
		WebSocket: handler.NewWebSocketHandler(hub, resolver, cfg.CORSOrigins),
	})

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("prefix", cfg.ServicePrefix).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openKVStore connects the configured backend and applies its migrations
func openKVStore(ctx context.Context, cfg *config.Config) (domain.KVStore, func()) {
	switch cfg.KVBackend {
	case config.KVBackendSQLite:
		repo, err := sqlite.NewKVRepository(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("Failed to open SQLite store")
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite key-value store")
		return repo, closeLogged(repo, "SQLite store")
	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		if err := postgres.RunMigrations(pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Connected to database")
		return postgres.NewKVRepository(pool), pool.Close
	}
}

// tokenResolver validates bearer tokens locally when a signing secret is configured
// and falls back to asking the provider. Results are cached only when TOKEN_CACHE_TTL is set.
func tokenResolver(cfg *config.Config, client *identity.Client) domain.TokenResolver {
	var next domain.TokenResolver = client
	if cfg.Identity.JWTSecret != "" {
		issuer := cfg.Identity.JWTIssuer
		if issuer == "" {
			issuer = cfg.Identity.URL
		}
		jwtResolver, err := identity.NewJWTResolver(cfg.Identity.JWTSecret, issuer, cfg.Identity.JWTAudience)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create token validator")
		}
		next = jwtResolver
		log.Info().Str("issuer", issuer).Msg("Validating access tokens locally")
	}
	return identity.WithCache(next, cfg.Identity.TokenCacheSize, cfg.Identity.TokenCacheTTL)
}

func closeLogged(c io.Closer, name string) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msgf("Failed to close %s", name)
		}
	}
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID))
			if who := middleware.GetIdentity(c); who != nil {
				event = event.Str("user_id", who.ID)
			}
			event.Msg("request")

			return nil
		}
	}
}
