// Package main is the entry point for the smart-rate service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smartrate/internal/arbitrage"
	"smartrate/internal/config"
	"smartrate/internal/forecast"
	"smartrate/internal/metrics"
	"smartrate/internal/provider"
	"smartrate/internal/ratecache"
	"smartrate/internal/repository"
	"smartrate/internal/service"
	"smartrate/internal/signal"
	"smartrate/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg         *config.Config
	logger      *zap.SugaredLogger
	registry    *prometheus.Registry
	metrics     *metrics.Recorder
	db          *sql.DB
	archive     repository.QuoteArchive
	rdbCache    *redis.Client
	spotCache   ratecache.Cache
	memCache    *ratecache.MemoryCache
	rdbAsynq    *redis.Client
	asynqClient *asynq.Client
	asynqServer *asynq.Server
	asynqMux    *asynq.ServeMux
	sink        worker.ArchiveSink
	httpServer  *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		sink:     worker.NopArchiveSink{},
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	if err := app.initStorage(ctx); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage(ctx context.Context) error {
	ttl := time.Duration(app.cfg.Cache.SpotTTLSec) * time.Second

	switch app.cfg.Cache.Backend {
	case config.CacheBackendRedis:
		app.rdbCache = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.CacheAddr})
		if err := app.rdbCache.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
		}
		app.spotCache = ratecache.NewRedisCache(app.rdbCache, ttl)
		app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr, "ttl", ttl)
	default:
		app.memCache = ratecache.NewMemoryCache(ttl)
		app.spotCache = app.memCache
		app.logger.Infow("Using in-memory rate cache", "ttl", ttl)
	}

	if !app.cfg.Archive.Enabled {
		app.logger.Infow("Quote archive disabled")
		return nil
	}

	db, err := repository.NewPostgresDB(ctx, &app.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to Postgres: %w", err)
	}
	app.db = db

	if err := repository.RunMigrations(ctx, app.db, app.logger); err != nil {
		return fmt.Errorf("run DB migrations: %w", err)
	}
	app.archive = repository.NewPostgresQuoteArchive(app.db)

	return nil
}

func (app *App) initServices() error {
	fiat, history, err := newRateProviders(app.cfg, app.metrics)
	if err != nil {
		return err
	}
	cachedFiat := provider.NewCachedRatesProvider(fiat, app.spotCache, provider.KindFiat, app.metrics)
	crypto := provider.NewCryptoImpliedProvider(cachedFiat, app.spotCache, app.cfg.Arbitrage.CryptoPremium)

	engine := arbitrage.NewEngine(cachedFiat, crypto, arbitrage.Margins{
		Bank:     app.cfg.Arbitrage.BankMargin,
		Platform: app.cfg.Arbitrage.PlatformMargin,
	}, app.logger)

	advisor := signal.NewAdvisor(history, signal.Options{
		Period:   app.cfg.Signal.EMAPeriod,
		Lookback: app.cfg.Signal.Lookback,
		Timeout:  time.Duration(app.cfg.Signal.TimeoutSec) * time.Second,
	}, app.logger)

	trend := forecast.DefaultAdditiveTrend()
	trend.ChangepointPriorScale = app.cfg.Forecast.ChangepointPriorScale
	ensemble := forecast.NewEnsemble(
		forecast.ARIMA{P: app.cfg.Forecast.ArimaP, D: app.cfg.Forecast.ArimaD, Q: app.cfg.Forecast.ArimaQ},
		trend,
		app.logger,
		app.metrics,
	)

	if app.cfg.Archive.Enabled {
		app.initQueue()
	}

	currencyValidator := service.NewValidator()
	quoteService := service.NewQuoteService(
		engine,
		advisor,
		app.sink,
		app.archive,
		app.spotCache,
		currencyValidator,
		app.logger)
	forecastService := service.NewForecastService(
		history,
		ensemble,
		currencyValidator,
		service.ForecastOptions{
			DefaultHorizon: app.cfg.Forecast.Horizon,
			MaxHorizon:     app.cfg.Forecast.MaxHorizon,
			HistoryRange:   app.cfg.Forecast.HistoryRange,
			HistoryPoints:  app.cfg.Forecast.HistoryPoints,
			Timeout:        time.Duration(app.cfg.Forecast.TimeoutSec) * time.Second,
		},
		app.logger)

	app.initHTTP(quoteService, forecastService)
	return nil
}

// initQueue wires the archive task queue: producer, sink and consumer.
func (app *App) initQueue() {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:              app.cfg.Worker.Concurrency,
			DelayedTaskCheckInterval: time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			TaskCheckInterval:        time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			Logger:                   app.logger,
		},
	)
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr)

	enqueuer := worker.NewAsynqEnqueuer(
		app.asynqClient,
		app.cfg.Worker.MaxRetry,
		time.Duration(app.cfg.Worker.TimeoutSec)*time.Second,
	)
	app.sink = worker.NewQueueArchiveSink(
		enqueuer,
		time.Duration(app.cfg.Archive.SubmitTimeoutSec)*time.Second,
		app.logger,
		app.metrics,
	)

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(worker.TaskTypeArchiveQuote, worker.NewArchiveHandler(app.archive, app.logger))
}

// newRateProviders builds the interbank fallback chain (frankfurter,
// exchangerate.host when keyed, yahoo) and the daily history source.
func newRateProviders(cfg *config.Config, rec *metrics.Recorder) (provider.RatesProvider, provider.HistoryProvider, error) {
	var providers []provider.RatesProvider

	if cfg.Frankfurter.BaseURL != "" {
		providers = append(providers, provider.NewFrankfurterProvider(cfg.Frankfurter.BaseURL, cfg.Frankfurter.Timeout))
	}

	if cfg.ExchangeRateHost.BaseURL != "" && cfg.ExchangeRateHost.APIKey != "" {
		providers = append(providers, provider.NewExchangeRateHostProvider(
			cfg.ExchangeRateHost.BaseURL, cfg.ExchangeRateHost.APIKey, cfg.ExchangeRateHost.Timeout))
	}

	if cfg.Yahoo.BaseURL == "" {
		return nil, nil, fmt.Errorf("yahoo.base_url is required: it is the only daily history source")
	}
	yahoo := provider.NewYahooChartProvider(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout)
	providers = append(providers, yahoo)

	return provider.NewExchangeProviderFacade(rec, providers...), yahoo, nil
}

// Run starts the HTTP server, the cache sweeper and the Asynq worker,
// blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if app.asynqServer != nil {
		g.Go(func() error {
			app.logger.Infow("Starting Asynq worker server")
			if err := app.asynqServer.Start(app.asynqMux); err != nil {
				return fmt.Errorf("asynq worker failed to start: %w", err)
			}

			<-ctx.Done()
			return nil
		})
	}

	if app.memCache != nil && app.cfg.Cache.SweepIntervalSec > 0 {
		g.Go(func() error {
			app.memCache.RunSweeper(ctx, time.Duration(app.cfg.Cache.SweepIntervalSec)*time.Second)
			return nil
		})
	}

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> pending archive submits
// -> Asynq worker -> connections.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests, drain in-flight
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Let detached archive submits reach the queue
	app.sink.Wait()

	// 3. Drain in-flight Asynq tasks
	if app.asynqServer != nil {
		app.asynqServer.Shutdown()
	}

	// 4. Close connections (asynq client, Redis, database)
	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
