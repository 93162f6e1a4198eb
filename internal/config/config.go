package config

import (
	"fmt"
	"time"
)

// StorageConfig configures the audio blob store
type StorageConfig struct {
	Backend      string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	UseSSL       bool
	SignedURLTTL time.Duration
}

// SpeechConfig configures the batch speech-to-text provider
type SpeechConfig struct {
	Endpoint   string
	Key        string
	Locale     string
	Timeout    time.Duration
	MaxRetries int
}

// ScheduleConfig configures the background poller and retention sweeper
type ScheduleConfig struct {
	PollInterval    time.Duration
	SweepInterval   time.Duration
	MaxStatusErrors int
}

// AuthConfig configures bearer token validation
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// PaymentConfig configures the hosted payment gateway
type PaymentConfig struct {
	MerchantID   string
	MerchantKey  string
	Passphrase   string
	ProcessURL   string
	ReturnURL    string
	CancelURL    string
	NotifyURL    string
	AllowedCIDRs []string
	SkipIPCheck  bool
}

// SummaryConfig selects the LLM used for summaries
type SummaryConfig struct {
	Provider    string
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
}

// RedisConfig configures the provider status cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// TemporalConfig enables durable per-job status tracking. An empty HostPort
// leaves tracking to the ticker poller alone.
type TemporalConfig struct {
	HostPort      string
	Namespace     string
	TaskQueue     string
	CheckInterval time.Duration
}

// Enabled reports whether a Temporal cluster is configured
func (t TemporalConfig) Enabled() bool {
	return t.HostPort != ""
}

// Config is the complete service configuration
type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPPort    string
	CORSOrigins []string
	Database    DatabaseConfig
	Storage     StorageConfig
	Speech      SpeechConfig
	Schedule    ScheduleConfig
	Auth        AuthConfig
	Payment     PaymentConfig
	Summary     SummaryConfig
	Redis       RedisConfig
	Temporal    TemporalConfig
	Plans       Plans
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load assembles the configuration from the environment. LoadEnv should be
// called first if .env files are used.
func Load() (*Config, error) {
	var err error
	cfg := &Config{
		AppEnv:      getEnvOrDefault("APP_ENV", DefaultAppEnv),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", ""),
		HTTPPort:    getEnvOrDefault("PORT", DefaultHTTPPort),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		Database:    GetDatabaseConfig(),
		Storage: StorageConfig{
			Backend:   getEnvOrDefault("STORAGE_BACKEND", DefaultStorageBackend),
			Endpoint:  getEnvOrDefault("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey: getEnvOrDefault("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnvOrDefault("STORAGE_SECRET_KEY", ""),
			Bucket:    getEnvOrDefault("STORAGE_BUCKET", DefaultBucket),
			Region:    getEnvOrDefault("STORAGE_REGION", DefaultS3Region),
			UseSSL:    getEnvBool("STORAGE_USE_SSL", false),
		},
		Speech: SpeechConfig{
			Endpoint: getEnvOrDefault("SPEECH_ENDPOINT", ""),
			Key:      getEnvOrDefault("SPEECH_KEY", ""),
			Locale:   getEnvOrDefault("SPEECH_LOCALE", DefaultSpeechLocale),
		},
		Auth: AuthConfig{
			JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
			Issuer:    getEnvOrDefault("JWT_ISSUER", ""),
		},
		Payment: PaymentConfig{
			MerchantID:   getEnvOrDefault("PAYFAST_MERCHANT_ID", ""),
			MerchantKey:  getEnvOrDefault("PAYFAST_MERCHANT_KEY", ""),
			Passphrase:   getEnvOrDefault("PAYFAST_PASSPHRASE", ""),
			ProcessURL:   getEnvOrDefault("PAYFAST_PROCESS_URL", DefaultPaymentProcessURL),
			ReturnURL:    getEnvOrDefault("PAYFAST_RETURN_URL", ""),
			CancelURL:    getEnvOrDefault("PAYFAST_CANCEL_URL", ""),
			NotifyURL:    getEnvOrDefault("PAYFAST_NOTIFY_URL", ""),
			AllowedCIDRs: getEnvList("PAYFAST_ALLOWED_CIDRS", DefaultPaymentSourceCIDRs),
			SkipIPCheck:  getEnvBool("PAYFAST_SKIP_IP_CHECK", false),
		},
		Summary: SummaryConfig{
			Provider:    getEnvOrDefault("SUMMARY_PROVIDER", DefaultSummaryProvider),
			OpenAIKey:   getEnvOrDefault("OPENAI_API_KEY", ""),
			OpenAIModel: getEnvOrDefault("OPENAI_MODEL", DefaultOpenAIModel),
			GeminiKey:   getEnvOrDefault("GEMINI_API_KEY", ""),
			GeminiModel: getEnvOrDefault("GEMINI_MODEL", DefaultGeminiModel),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
		},
		Temporal: TemporalConfig{
			HostPort:  getEnvOrDefault("TEMPORAL_HOST", ""),
			Namespace: getEnvOrDefault("TEMPORAL_NAMESPACE", DefaultTemporalNamespace),
			TaskQueue: getEnvOrDefault("TEMPORAL_TASK_QUEUE", DefaultTemporalTaskQueue),
		},
	}

	if cfg.Storage.Backend == "s3" && getEnvOrDefault("STORAGE_ENDPOINT", "") == "" {
		// AWS resolves the regional endpoint itself
		cfg.Storage.Endpoint = ""
	}
	if cfg.Storage.SignedURLTTL, err = getEnvDuration("SIGNED_URL_TTL", DefaultSignedURLTTL); err != nil {
		return nil, err
	}
	if cfg.Speech.Timeout, err = getEnvDuration("SPEECH_TIMEOUT", DefaultSpeechTimeout); err != nil {
		return nil, err
	}
	if cfg.Speech.MaxRetries, err = getEnvInt("SPEECH_MAX_RETRIES", DefaultSpeechMaxRetries); err != nil {
		return nil, err
	}
	if cfg.Schedule.PollInterval, err = getEnvDuration("POLL_INTERVAL", DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.Schedule.SweepInterval, err = getEnvDuration("SWEEP_INTERVAL", DefaultSweepInterval); err != nil {
		return nil, err
	}
	if cfg.Schedule.MaxStatusErrors, err = getEnvInt("MAX_STATUS_ERRORS", DefaultMaxStatusErrors); err != nil {
		return nil, err
	}
	if cfg.Temporal.CheckInterval, err = getEnvDuration("TEMPORAL_CHECK_INTERVAL", DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Redis.TTL, err = getEnvDuration("STATUS_CACHE_TTL", DefaultStatusCacheTTL); err != nil {
		return nil, err
	}

	cfg.Plans = DefaultPlans()
	if path := getEnvOrDefault("PLANS_FILE", ""); path != "" {
		if cfg.Plans, err = LoadPlans(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the assembled configuration
func (c *Config) Validate() error {
	if err := ValidatePort(c.HTTPPort, "HTTP"); err != nil {
		return err
	}
	if err := ValidateOneOf(c.Database.Driver, "DB_DRIVER", "sqlite", "postgres", "mongo"); err != nil {
		return err
	}
	if err := ValidateOneOf(c.Storage.Backend, "STORAGE_BACKEND", "minio", "s3"); err != nil {
		return err
	}
	if err := ValidateOneOf(c.Summary.Provider, "SUMMARY_PROVIDER", "openai", "gemini"); err != nil {
		return err
	}
	if err := ValidateSignedURLTTL(c.Storage.SignedURLTTL, "signed URL"); err != nil {
		return err
	}
	if err := ValidateTimeout(c.Speech.Timeout, "speech"); err != nil {
		return err
	}
	if err := ValidateRetries(c.Speech.MaxRetries, "speech"); err != nil {
		return err
	}
	if err := ValidateInterval(c.Schedule.PollInterval, "poll"); err != nil {
		return err
	}
	if err := ValidateInterval(c.Schedule.SweepInterval, "sweep"); err != nil {
		return err
	}
	if c.Schedule.MaxStatusErrors < 1 {
		return fmt.Errorf("MAX_STATUS_ERRORS must be at least 1")
	}
	if c.Temporal.Enabled() {
		if err := ValidateInterval(c.Temporal.CheckInterval, "temporal check"); err != nil {
			return err
		}
	}
	if c.Speech.Endpoint != "" {
		if err := ValidateURL(c.Speech.Endpoint, "speech"); err != nil {
			return err
		}
	}
	if err := ValidateCIDRs(c.Payment.AllowedCIDRs, "PAYFAST_ALLOWED_CIDRS"); err != nil {
		return err
	}
	return c.Plans.Validate()
}
