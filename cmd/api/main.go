package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-minutes/pkg/validator"

	"github.com/johnquangdev/meeting-minutes/internal/adapter/handler"
	"github.com/johnquangdev/meeting-minutes/internal/adapter/repository"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
	"github.com/johnquangdev/meeting-minutes/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-minutes/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-minutes/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-minutes/internal/infrastructure/renderer"
	"github.com/johnquangdev/meeting-minutes/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/assets"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/report"
	"github.com/johnquangdev/meeting-minutes/pkg/config"
	"github.com/johnquangdev/meeting-minutes/pkg/jwt"
)

// reportCache is a report cache that holds resources
type reportCache interface {
	report.Cache
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Cookie"},
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
		AllowCredentials: true,
	}))

	// Initialize Database
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("database.connect.failed", zap.Error(err))
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, logger); err != nil {
			logger.Fatal("database.migrate.failed", zap.Error(err))
		}
	} else {
		logger.Info("database.migrate.skipped")
	}

	// Report cache
	reports, err := newReportCache(ctx, cfg)
	if err != nil {
		logger.Fatal("cache.connect.failed", zap.Error(err))
	}
	defer reports.Close()

	// Asset store
	store, err := newAssetStore(ctx, cfg)
	if err != nil {
		logger.Fatal("storage.connect.failed", zap.Error(err))
	}

	companies, err := loadCompanyMap(cfg)
	if err != nil {
		logger.Fatal("assets.company_map.failed", zap.Error(err))
	}
	resolver := assets.NewResolver(store, assets.Options{
		CompanyMap:    companies,
		DefaultFontFA: cfg.Assets.FontDefaultFA,
		DefaultFontEN: cfg.Assets.FontDefaultEN,
		LogoMaxWidth:  cfg.Assets.LogoMaxWidth,
	}, logger.Named("assets"))

	// Rendering engine
	engine := renderer.NewEngine(
		renderer.NewRodLauncher(logger.Named("renderer")),
		renderer.RodAcquirer{},
		renderer.Options{
			BrowserPath:    cfg.Renderer.BrowserPath,
			AllowDownload:  cfg.Renderer.AllowDownload,
			Timeout:        cfg.Renderer.Timeout,
			LaunchAttempts: cfg.Renderer.LaunchAttempts,
		},
		logger.Named("renderer"),
	)

	// Services
	meetingRepo := repository.NewMeetingRepository(db)
	meetingService := meeting.NewService(meetingRepo, actionitem.NewStore(), resolver, logger.Named("meeting"))
	reportService := report.NewService(
		resolver,
		report.NewComposer(cfg.Report.Attribution, logger.Named("report")),
		engine,
		reports,
		cfg.Report.CacheTTL,
		logger.Named("report"),
	)

	// Setup router with handlers
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret)
	authEchoMW := httpmw.EchoAuth(jwtManager, httpmw.LocaleOptions{
		Supported: cfg.Report.Locales,
		Default:   cfg.Report.DefaultLocale,
	})
	meetingHandler := handler.NewMeetingHandler(meetingService, reportService, logger.Named("http"))

	assetHandler := handler.NewAssetHandler(resolver, logger.Named("http"))

	router := handler.NewRouter(cfg, authEchoMW, meetingHandler, assetHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		logger.Info("server.starting",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)

		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server.start.failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("server.shutting_down")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown.forced", zap.Error(err))
		return
	}

	logger.Info("server.stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newReportCache(ctx context.Context, cfg *config.Config) (reportCache, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryStore(time.Minute), nil
	}
	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cache.NewRedisStore(client), nil
}

func newAssetStore(ctx context.Context, cfg *config.Config) (repositories.AssetStore, error) {
	if cfg.Storage.Type == "minio" {
		return storage.NewMinIOStore(ctx, &cfg.Storage)
	}
	return storage.NewFileStore(cfg.Storage.Root), nil
}

// loadCompanyMap reads ASSET_COMPANY_MAP when set, else the built-in map
func loadCompanyMap(cfg *config.Config) (assets.CompanyMap, error) {
	companies := assets.DefaultCompanyMap()
	if cfg.Assets.CompanyMapFile != "" {
		f, err := os.Open(cfg.Assets.CompanyMapFile)
		if err != nil {
			return assets.CompanyMap{}, err
		}
		defer f.Close()
		if companies, err = assets.LoadCompanyMap(f); err != nil {
			return assets.CompanyMap{}, err
		}
	}
	if cfg.Assets.DefaultLogo != "" {
		companies.Default = cfg.Assets.DefaultLogo
	}
	return companies, nil
}
