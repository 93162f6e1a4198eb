package config

import "time"

// Default configuration constants
const (
	DefaultHTTPPort = "8080"
	DefaultAppEnv   = "development"

	DefaultDatabaseDriver = "sqlite"
	DefaultSQLitePath     = "data/lexscribe.db"
	DefaultMongoDatabase  = "lexscribe"

	DefaultStorageBackend = "minio"
	DefaultBucket         = "lexscribe-audio"
	DefaultS3Region       = "us-east-1"
	DefaultSignedURLTTL   = time.Hour

	DefaultSpeechLocale     = "en-US"
	DefaultSpeechTimeout    = 60 * time.Second
	DefaultSpeechMaxRetries = 3

	DefaultPollInterval    = 60 * time.Second
	DefaultSweepInterval   = time.Hour
	DefaultMaxStatusErrors = 5

	DefaultStatusCacheTTL = 15 * time.Second

	DefaultTemporalNamespace = "default"
	DefaultTemporalTaskQueue = "lexscribe-transcriptions"

	DefaultSummaryProvider = "openai"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultGeminiModel     = "gemini-2.0-flash"

	DefaultPaymentProcessURL = "https://www.payfast.co.za/eng/process"
)

// DefaultPaymentSourceCIDRs are the published notification source ranges of the payment gateway
var DefaultPaymentSourceCIDRs = []string{
	"197.97.145.144/28",
	"41.74.179.192/27",
	"102.216.36.0/28",
	"102.216.36.128/28",
	"144.126.193.139/32",
}
