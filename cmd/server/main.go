package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voxkit/voxconsole/cmd/bootstrap"
	handlers "github.com/voxkit/voxconsole/internal/handler"
	"github.com/voxkit/voxconsole/internal/logquery"
	"github.com/voxkit/voxconsole/pkg/cache"
	"github.com/voxkit/voxconsole/pkg/config"
	"github.com/voxkit/voxconsole/pkg/logger"
	"github.com/voxkit/voxconsole/pkg/metrics"
	"github.com/voxkit/voxconsole/pkg/middleware"
	"github.com/voxkit/voxconsole/pkg/utils"
)

type ConsoleApp struct {
	db        *gorm.DB
	logClient *logquery.Client
	handlers  *handlers.Handlers
}

func NewConsoleApp(db *gorm.DB) *ConsoleApp {
	cfg := config.GlobalConfig
	logClient := logquery.NewClient(cfg.LogAPIBaseURL, cfg.LogAPIToken, cfg.LogAPITimeout, cfg.LogQueryLimit)
	logClient.SetPageCacheTTL(cfg.LogDebounceWait)
	return &ConsoleApp{
		db:        db,
		logClient: logClient,
		handlers:  handlers.NewHandlers(db, logClient),
	}
}

func (app *ConsoleApp) RegisterRoutes(r *gin.Engine) {
	app.handlers.Register(r)
	r.GET(config.GlobalConfig.MonitorPrefix, metrics.Handler())
}

// startBackendProbe keeps the log-backend-up gauge current.
func (app *ConsoleApp) startBackendProbe() *cron.Cron {
	c := cron.New()
	probe := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.logClient.Health(ctx); err != nil {
			logger.Warn("log backend health probe failed", zap.Error(err))
			metrics.SetLogBackendUp(false)
			return
		}
		metrics.SetLogBackendUp(true)
	}
	probe()
	if _, err := c.AddFunc("@every 30s", probe); err != nil {
		logger.Error("schedule backend probe failed", zap.Error(err))
	}
	c.Start()
	return c
}

func main() {
	mode := flag.String("mode", "", "running environment (development, test, production)")
	initSQL := flag.String("init-sql", "", "path to database init .sql script (optional)")
	flag.Parse()

	if *mode != "" {
		os.Setenv("APP_ENV", *mode)
	}

	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}

	if err := logger.Init(&config.GlobalConfig.Log, config.GlobalConfig.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := bootstrap.SetupDatabase(os.Stdout, &bootstrap.Options{
		InitSQLPath: *initSQL,
		AutoMigrate: true,
		SeedNonProd: os.Getenv("APP_ENV") != "production",
	})
	if err != nil {
		logger.Error("database setup failed", zap.Error(err))
		return
	}

	if err := cache.InitGlobalCache(config.GlobalConfig.Cache); err != nil {
		logger.Error("failed to initialize cache", zap.Error(err))
		logger.Info("falling back to default local cache")
	}
	defer cache.CloseGlobalCache()

	logger.Info("checked config",
		zap.String("addr", config.GlobalConfig.Addr),
		zap.String("mode", config.GlobalConfig.Mode),
		zap.String("log_api", config.GlobalConfig.LogAPIBaseURL),
	)

	app := NewConsoleApp(db)
	defer app.handlers.Shutdown()

	probe := app.startBackendProbe()
	defer probe.Stop()

	if config.GlobalConfig.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(metrics.Middleware())
	if secret := config.GlobalConfig.SessionSecret; secret != "" {
		maxAge := config.GlobalConfig.SessionExpireDays * 24 * 3600
		r.Use(middleware.WithCookieSession(secret, maxAge))
	} else {
		r.Use(middleware.WithMemSession(utils.RandText(32)))
	}
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.LoggerMiddleware(logger.Lg))

	app.RegisterRoutes(r)

	server := &http.Server{
		Addr:              config.GlobalConfig.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
