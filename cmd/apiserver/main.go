// Command apiserver runs the ShelfSwap valuation and analytics engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shelfswap/shelfswap/internal/application/analytics"
	"github.com/shelfswap/shelfswap/internal/application/valuation"
	"github.com/shelfswap/shelfswap/internal/config"
	"github.com/shelfswap/shelfswap/internal/infrastructure/database/postgres"
	"github.com/shelfswap/shelfswap/internal/infrastructure/database/postgres/repositories"
	"github.com/shelfswap/shelfswap/internal/infrastructure/database/redis"
	"github.com/shelfswap/shelfswap/internal/infrastructure/messaging/kafka"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/prometheus"
	appraisal "github.com/shelfswap/shelfswap/internal/intelligence/appraisal_gpt"
	httpiface "github.com/shelfswap/shelfswap/internal/interfaces/http"
	"github.com/shelfswap/shelfswap/internal/interfaces/http/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to config file (omit to configure from environment)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "apiserver:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	// When running from a file, config edits retune the log level without a
	// restart. Anything else in a changed file still needs one.
	if configPath != "" {
		if setter, ok := logger.(logging.LevelSetter); ok {
			config.Watch(configPath, func(next *config.Config) {
				setter.SetLevel(next.Log.Level)
				logger.Info("log level reloaded", logging.String("level", next.Log.Level))
			})
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage.
	db, err := postgres.NewConnection(ctx, cfg.Database.Config, logger.Named("postgres"))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
		return err
	}
	logger.Info("database schema up to date")

	books := repositories.NewBookRepo(db.Pool())
	exchanges := repositories.NewExchangeRepo(db.Pool())
	events := repositories.NewHistoryRepo(db.Pool())
	threads := repositories.NewForumRepo(db.Pool())

	healthChecks := map[string]handlers.HealthChecker{
		"postgres": db.HealthCheck,
	}

	// Metrics.
	var collector *prometheus.Collector
	if cfg.Metrics.Enabled {
		collector = prometheus.NewCollector(cfg.Metrics.Namespace)
	}

	// Cache.
	var cache *redis.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis.Config, logger.Named("redis"))
		if err != nil {
			return err
		}
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, cfg.Redis.KeyPrefix)
		healthChecks["redis"] = redisClient.HealthCheck
	}

	// Event bus.
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.ProducerConfig, logger.Named("kafka"))
		defer producer.Close()
	}

	// Valuation engine.
	appraiser := appraisal.NewAppraiser(&cfg.Appraisal, logger.Named("appraisal"))
	engineOpts := []valuation.EngineOption{}
	if producer != nil {
		engineOpts = append(engineOpts, valuation.WithPublisher(producer))
	}
	if cache != nil {
		engineOpts = append(engineOpts, valuation.WithCache(cache))
	}
	if collector != nil {
		engineOpts = append(engineOpts, valuation.WithMetrics(collector))
	}
	engine := valuation.NewEngine(books, exchanges, appraiser, logger.Named("valuation"), engineOpts...)

	// Analytics services.
	analyticsLogger := logger.Named("analytics")
	trend := analytics.NewTrendAnalyzer(books, exchanges, analyticsLogger)
	journey := analytics.NewJourneyReconstructor(books, exchanges, events, analyticsLogger)
	discussions := analytics.NewDiscussionAggregator(threads, analyticsLogger)
	svcOpts := []analytics.ServiceOption{}
	if cache != nil {
		svcOpts = append(svcOpts, analytics.WithCache(cache))
	}
	if collector != nil {
		svcOpts = append(svcOpts, analytics.WithMetrics(collector))
	}
	if producer != nil {
		svcOpts = append(svcOpts, analytics.WithPublisher(producer))
	}
	analyticsSvc := analytics.NewService(books, trend, journey, discussions, analyticsLogger, svcOpts...)

	// HTTP surface.
	deps := httpiface.RouterDeps{
		Analytics:   handlers.NewAnalyticsHandler(analyticsSvc),
		Valuation:   handlers.NewValuationHandler(engine),
		Health:      handlers.NewHealthHandler(healthChecks),
		Logger:      logger.Named("http"),
		MetricsPath: cfg.Metrics.Path,
		Mode:        cfg.Server.Mode,
	}
	if collector != nil {
		deps.Metrics = collector
		deps.MetricsHandler = collector.Handler()
	}
	router := httpiface.NewRouter(deps)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, router, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("apiserver stopped")
	return nil
}
