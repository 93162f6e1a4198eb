package app

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"lexscribe/internal/api/middleware"
	"lexscribe/internal/api/server"
	v1routes "lexscribe/internal/api/v1/routes"
	"lexscribe/internal/api/v1/services"
	"lexscribe/internal/app/api/speech"
	"lexscribe/internal/app/billing"
	"lexscribe/internal/app/cache"
	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/metrics"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/orchestrator"
	"lexscribe/internal/app/repository"
	"lexscribe/internal/app/repository/mongo"
	"lexscribe/internal/app/repository/pg"
	"lexscribe/internal/app/repository/sqlite"
	"lexscribe/internal/app/schedule"
	"lexscribe/internal/app/storage/blob"
	"lexscribe/internal/app/summary"
	"lexscribe/internal/app/temporal/tracking"
	"lexscribe/internal/config"
)

// App holds the long-lived components of the service
type App struct {
	Config       *config.Config
	Store        repository.Store
	Orchestrator *orchestrator.Orchestrator
	Poller       *schedule.Poller
	Sweeper      *schedule.Sweeper
	Server       *server.Server
	// TrackingWorker is nil unless a Temporal cluster is configured
	TrackingWorker worker.Worker
	Logger         *zap.Logger
}

func newApp(
	cfg *config.Config,
	store repository.Store,
	orch *orchestrator.Orchestrator,
	poller *schedule.Poller,
	sweeper *schedule.Sweeper,
	srv *server.Server,
	trackingWorker worker.Worker,
	logger *zap.Logger,
) *App {
	return &App{
		Config:         cfg,
		Store:          store,
		Orchestrator:   orch,
		Poller:         poller,
		Sweeper:        sweeper,
		Server:         srv,
		TrackingWorker: trackingWorker,
		Logger:         logger,
	}
}

// provideStore opens the record store selected by DB_DRIVER
func provideStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	var (
		store repository.Store
		err   error
	)

	switch cfg.Database.Driver {
	case "postgres":
		store, err = pg.NewPostgresDB(ctx, cfg.Database.GetPostgresConnectionString())
	case "mongo":
		store, err = mongo.NewStore(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase, logger)
	default:
		path := cfg.Database.SQLitePath
		if !filepath.IsAbs(path) {
			if root, rootErr := config.GetProjectRoot(); rootErr == nil {
				path = filepath.Join(root, path)
			}
		}
		store, err = sqlite.NewSQLiteDB(ctx, path)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Info("record store ready", zap.String("driver", cfg.Database.Driver))
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close record store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// provideBlobStore opens the object store selected by STORAGE_BACKEND
func provideBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	s := cfg.Storage
	if s.Backend == "s3" {
		return blob.NewS3Store(ctx, s.Endpoint, s.Region, s.AccessKey, s.SecretKey, s.Bucket)
	}
	return blob.NewMinioStore(ctx, s.Endpoint, s.AccessKey, s.SecretKey, s.Bucket, s.UseSSL)
}

func provideSpeechClient(cfg *config.Config, logger *zap.Logger) *speech.Client {
	return speech.NewClient(speech.Config{
		Endpoint:   cfg.Speech.Endpoint,
		Key:        cfg.Speech.Key,
		Timeout:    cfg.Speech.Timeout,
		MaxRetries: cfg.Speech.MaxRetries,
	}, logger)
}

// provideSummarizer returns nil when no summary provider key is configured
func provideSummarizer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (summary.Summarizer, error) {
	s, err := summary.New(ctx, cfg.Summary)
	if errors.Is(err, apperrors.ErrMissingConfig) {
		logger.Warn("summaries disabled", zap.String("provider", cfg.Summary.Provider), zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// provideStatusCache connects to redis when REDIS_ADDR is set
func provideStatusCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.StatusCache, func(), error) {
	if cfg.Redis.Addr == "" {
		return cache.Noop{}, func() {}, nil
	}
	c, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

// provideTemporalClient dials Temporal when TEMPORAL_HOST is set and returns nil otherwise
func provideTemporalClient(cfg *config.Config, logger *zap.Logger) (client.Client, func(), error) {
	if !cfg.Temporal.Enabled() {
		return nil, func() {}, nil
	}
	c, err := tracking.Dial(cfg.Temporal, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("job tracking via temporal",
		zap.String("host", cfg.Temporal.HostPort),
		zap.String("task_queue", cfg.Temporal.TaskQueue),
	)
	return c, c.Close, nil
}

func provideTracker(c client.Client, cfg *config.Config, logger *zap.Logger) orchestrator.Tracker {
	if c == nil {
		return nil
	}
	return tracking.NewTracker(c, cfg.Temporal.TaskQueue, cfg.Temporal.CheckInterval, logger)
}

func provideTrackingWorker(c client.Client, orch *orchestrator.Orchestrator, cfg *config.Config) worker.Worker {
	if c == nil {
		return nil
	}
	return tracking.NewWorker(c, cfg.Temporal.TaskQueue, orch)
}

func provideLedger(store repository.Store, cfg *config.Config, logger *zap.Logger) *billing.Ledger {
	return billing.NewLedger(store, store, cfg.Plans, logger)
}

func provideGate(store repository.Store, ledger *billing.Ledger, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *billing.Gate {
	return billing.NewGate(store, store, ledger, cfg.Plans, m, logger)
}

func provideSubscriptions(store repository.Store, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *billing.Subscriptions {
	return billing.NewSubscriptions(store, store, cfg.Plans, cfg.Payment, m, logger)
}

func provideVerifier(cfg *config.Config) (*billing.Verifier, error) {
	p := cfg.Payment
	return billing.NewVerifier(p.MerchantID, p.Passphrase, p.AllowedCIDRs, p.SkipIPCheck)
}

func provideOrchestrator(
	store repository.Store,
	blobs blob.Store,
	speechClient *speech.Client,
	ledger *billing.Ledger,
	summarizer summary.Summarizer,
	statusCache cache.StatusCache,
	tracker orchestrator.Tracker,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *orchestrator.Orchestrator {
	return orchestrator.New(store, blobs, speechClient, ledger, summarizer, statusCache, m, orchestrator.Options{
		Locale:          cfg.Speech.Locale,
		SignedURLTTL:    cfg.Storage.SignedURLTTL,
		MaxStatusErrors: cfg.Schedule.MaxStatusErrors,
	}, logger).WithTracker(tracker)
}

func providePoller(orch *orchestrator.Orchestrator, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *schedule.Poller {
	return schedule.NewPoller(orch, cfg.Schedule.PollInterval, m, logger)
}

func provideSweeper(orch *orchestrator.Orchestrator, cfg *config.Config, logger *zap.Logger) *schedule.Sweeper {
	return schedule.NewSweeper(orch, cfg.Schedule.SweepInterval, logger)
}

func provideServer(
	cfg *config.Config,
	store repository.Store,
	orch *orchestrator.Orchestrator,
	gate *billing.Gate,
	subs *billing.Subscriptions,
	verifier *billing.Verifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *server.Server {
	container := &v1routes.ServiceContainer{
		TranscriptionService: services.NewTranscriptionService(orch, !cfg.IsProduction()),
		SubscriptionService:  services.NewSubscriptionService(subs, gate, verifier, logger),
		ExportService:        services.NewExportService(orch),
	}
	guards := v1routes.Guards{
		Auth:              middleware.Auth(middleware.AuthConfig{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer}, store, logger),
		TranscriptionGate: middleware.UsageGate(gate, model.UsageTranscription, logger),
		SummaryGate:       middleware.UsageGate(gate, model.UsageSummary, logger),
	}

	return server.NewServer(server.Config{
		Port:         cfg.HTTPPort,
		ReadTimeout:  time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
		Environment:  cfg.AppEnv,
		CORSOrigins:  cfg.CORSOrigins,
	}, container, guards, store, m, logger)
}
