package orchestrator

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"lexscribe/internal/app/api/speech"
	"lexscribe/internal/app/cache"
	"lexscribe/internal/app/metrics"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/repository"
	"lexscribe/internal/app/storage/blob"
	"lexscribe/internal/app/summary"
)

// Provider is the batch transcription service
type Provider interface {
	Submit(ctx context.Context, urls []string, opts speech.Options) (string, error)
	Status(ctx context.Context, handle string) (*speech.Transcription, error)
	Results(ctx context.Context, t *speech.Transcription) ([]speech.Result, error)
}

// UsageRecorder meters consumption for a user
type UsageRecorder interface {
	RecordForUser(ctx context.Context, userID string, kind model.UsageKind, amount float64) error
}

// Tracker follows a submitted job outside the ticker poller
type Tracker interface {
	Track(ctx context.Context, jobID string) error
}

// AudioFile is one uploaded recording
type AudioFile struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// SubmitInput is a persisted submission request
type SubmitInput struct {
	UserID        string
	MeetingType   model.MeetingType
	Files         []AudioFile
	RetentionDays int
}

// Options configures the orchestrator
type Options struct {
	Locale          string
	SignedURLTTL    time.Duration
	MaxStatusErrors int
}

// Orchestrator drives transcription jobs from upload to stored result
type Orchestrator struct {
	jobs       repository.JobStore
	blobs      blob.Store
	provider   Provider
	usage      UsageRecorder
	summarizer summary.Summarizer
	cache      cache.StatusCache
	tracker    Tracker
	metrics    *metrics.Metrics
	opts       Options
	clock      func() time.Time
	logger     *zap.Logger
}

// New creates an orchestrator. summarizer may be nil when summaries are not configured.
func New(
	jobs repository.JobStore,
	blobs blob.Store,
	provider Provider,
	usage UsageRecorder,
	summarizer summary.Summarizer,
	statusCache cache.StatusCache,
	m *metrics.Metrics,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	if statusCache == nil {
		statusCache = cache.Noop{}
	}
	if opts.MaxStatusErrors < 1 {
		opts.MaxStatusErrors = 5
	}
	if opts.SignedURLTTL == 0 {
		opts.SignedURLTTL = time.Hour
	}
	return &Orchestrator{
		jobs:       jobs,
		blobs:      blobs,
		provider:   provider,
		usage:      usage,
		summarizer: summarizer,
		cache:      statusCache,
		metrics:    m,
		opts:       opts,
		clock:      time.Now,
		logger:     logger,
	}
}

// WithTracker registers a tracker notified of every persisted job
func (o *Orchestrator) WithTracker(t Tracker) *Orchestrator {
	o.tracker = t
	return o
}

func (o *Orchestrator) now() time.Time {
	return o.clock().UTC().Truncate(time.Microsecond)
}

// MaxStatusErrors is the number of consecutive failed status checks before a job fails
func (o *Orchestrator) MaxStatusErrors() int {
	return o.opts.MaxStatusErrors
}
