package repository

import (
	"context"
	"time"

	"lexscribe/internal/app/model"
)

// JobStore persists transcription jobs. UpdateJobStatus must never overwrite
// a job that is already completed or failed.
type JobStore interface {
	CreateJob(ctx context.Context, job *model.TranscriptionJob) error
	GetJob(ctx context.Context, id string) (*model.TranscriptionJob, error)
	ListJobsByUser(ctx context.Context, userID string, limit, offset int) ([]model.TranscriptionJob, int, error)
	ListPollableJobs(ctx context.Context, maxErrors, limit int) ([]model.TranscriptionJob, error)
	ListExpiredJobs(ctx context.Context, now time.Time, limit int) ([]model.TranscriptionJob, error)
	UpdateJobStatus(ctx context.Context, id string, update model.JobUpdate) (bool, error)
	SaveSummary(ctx context.Context, id, summary string, at time.Time) error
	DeleteJob(ctx context.Context, id string) error
}

// SubscriptionStore persists subscriptions, their usage counters and billing history.
// Methods returning bool report whether the conditional write matched a row.
type SubscriptionStore interface {
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscription(ctx context.Context, id string) (*model.Subscription, error)
	GetActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	TransitionSubscription(ctx context.Context, id string, from, to model.SubscriptionStatus, now time.Time) (bool, error)
	ActivateSubscription(ctx context.Context, id string, start, end time.Time, usage model.Usage) (bool, error)
	ExtendSubscription(ctx context.Context, id string, end, now time.Time) (bool, error)
	CancelOtherSubscriptions(ctx context.Context, userID, keepID string, now time.Time) (int64, error)
	AddBillingEntry(ctx context.Context, subscriptionID string, entry model.BillingEntry) error
	HasBillingEntry(ctx context.Context, subscriptionID, paymentID string) (bool, error)
	IncrementUsage(ctx context.Context, id string, kind model.UsageKind, amount, limitSeconds float64, now time.Time) (bool, error)
	RolloverUsage(ctx context.Context, id string, next model.Usage) (bool, error)
}

// UserStore persists users and the free-tier counter
type UserStore interface {
	UpsertUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	SetUserSubscription(ctx context.Context, id string, plan model.PlanID, now time.Time) error
	DemoteUser(ctx context.Context, id string, now time.Time) (bool, error)
	IncrementFreeUsage(ctx context.Context, id string, amount, limitSeconds float64, now time.Time) (bool, error)
}

// Store is the complete record store used by the service
type Store interface {
	JobStore
	SubscriptionStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
