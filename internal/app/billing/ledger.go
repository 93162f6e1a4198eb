package billing

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/repository"
	"lexscribe/internal/config"
)

// Clock returns the current time
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// UsageStats is the usage of the current billing window against the plan limit
type UsageStats struct {
	SubscriptionID   string            `json:"subscription_id,omitempty"`
	PlanID           model.PlanID      `json:"plan_id"`
	Limits           config.PlanLimits `json:"limits"`
	Usage            model.Usage       `json:"usage"`
	RemainingSeconds float64           `json:"remaining_seconds"`
	Exhausted        bool              `json:"exhausted"`
}

// Ledger records metered consumption against subscriptions and the free tier
type Ledger struct {
	subs   repository.SubscriptionStore
	users  repository.UserStore
	plans  config.Plans
	clock  Clock
	logger *zap.Logger
}

// NewLedger creates a ledger
func NewLedger(subs repository.SubscriptionStore, users repository.UserStore, plans config.Plans, logger *zap.Logger) *Ledger {
	return &Ledger{subs: subs, users: users, plans: plans, clock: systemClock, logger: logger}
}

func (l *Ledger) now() time.Time {
	return l.clock().UTC().Truncate(time.Microsecond)
}

// CheckUsageLimit reports whether the subscription's transcription quota is spent
func (l *Ledger) CheckUsageLimit(sub *model.Subscription) bool {
	limits := l.plans.Get(sub.PlanID).Limits
	return sub.Usage.TranscriptionSeconds/3600 >= limits.TranscriptionHours
}

func (l *Ledger) stats(sub *model.Subscription) *UsageStats {
	limits := l.plans.Get(sub.PlanID).Limits
	return &UsageStats{
		SubscriptionID:   sub.ID,
		PlanID:           sub.PlanID,
		Limits:           limits,
		Usage:            sub.Usage,
		RemainingSeconds: math.Max(0, limits.TranscriptionSeconds()-sub.Usage.TranscriptionSeconds),
		Exhausted:        l.CheckUsageLimit(sub),
	}
}

// GetUsageStats returns current usage, rolling the window over first when it has ended.
// An idle subscription rolls over once, to a window anchored at the access time.
func (l *Ledger) GetUsageStats(ctx context.Context, subscriptionID string) (*UsageStats, error) {
	sub, err := l.subs.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	sub, err = l.rollover(ctx, sub)
	if err != nil {
		return nil, err
	}
	return l.stats(sub), nil
}

func (l *Ledger) rollover(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	now := l.now()
	if !sub.Usage.Elapsed(now) {
		return sub, nil
	}

	next := model.NewUsagePeriod(now)
	ok, err := l.subs.RolloverUsage(ctx, sub.ID, next)
	if err != nil {
		return nil, err
	}
	if ok {
		l.logger.Info("usage period rolled over",
			zap.String("subscription_id", sub.ID),
			zap.Time("period_end", next.CurrentPeriodEnd),
		)
		sub.Usage = next
		return sub, nil
	}
	// another caller rolled it over first
	return l.subs.GetSubscription(ctx, sub.ID)
}

// RecordUsage meters one operation on a subscription. The quota check and the
// increment are a single conditional write: once the quota is spent nothing is
// mutated and ErrUsageLimitExceeded is returned.
func (l *Ledger) RecordUsage(ctx context.Context, subscriptionID string, kind model.UsageKind, amount float64) error {
	if kind != model.UsageTranscription && kind != model.UsageSummary {
		return apperrors.InvalidField("usage kind", string(kind))
	}
	if amount < 0 {
		return apperrors.InvalidField("amount", "must not be negative")
	}

	stats, err := l.GetUsageStats(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if stats.Exhausted {
		return apperrors.ErrUsageLimitExceeded
	}

	ok, err := l.subs.IncrementUsage(ctx, subscriptionID, kind, amount, stats.Limits.TranscriptionSeconds(), l.now())
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrUsageLimitExceeded
	}

	l.logger.Debug("usage recorded",
		zap.String("subscription_id", subscriptionID),
		zap.String("kind", string(kind)),
		zap.Float64("amount", amount),
	)
	return nil
}

// RecordForUser meters an operation on the user's active subscription, or on
// the free-tier allowance when there is none
func (l *Ledger) RecordForUser(ctx context.Context, userID string, kind model.UsageKind, amount float64) error {
	sub, err := l.subs.GetActiveSubscription(ctx, userID)
	if err == nil {
		return l.RecordUsage(ctx, sub.ID, kind, amount)
	}
	if !errors.Is(err, apperrors.ErrSubscriptionNotFound) {
		return err
	}
	return l.recordFree(ctx, userID, kind, amount)
}

func (l *Ledger) recordFree(ctx context.Context, userID string, kind model.UsageKind, amount float64) error {
	limit := l.plans.Get(model.PlanFree).Limits.TranscriptionSeconds()

	switch kind {
	case model.UsageTranscription:
		ok, err := l.users.IncrementFreeUsage(ctx, userID, amount, limit, l.now())
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrUsageLimitExceeded
		}
		return nil
	case model.UsageSummary:
		user, err := l.users.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.FreeTranscriptionSeconds >= limit {
			return apperrors.ErrUsageLimitExceeded
		}
		return nil
	}
	return apperrors.InvalidField("usage kind", string(kind))
}

// FreeStats returns the free-tier usage of a user. Unknown users have used nothing.
func (l *Ledger) FreeStats(ctx context.Context, userID string) (*UsageStats, error) {
	var used float64
	user, err := l.users.GetUser(ctx, userID)
	switch {
	case err == nil:
		used = user.FreeTranscriptionSeconds
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return nil, err
	}

	limits := l.plans.Get(model.PlanFree).Limits
	return &UsageStats{
		PlanID:           model.PlanFree,
		Limits:           limits,
		Usage:            model.Usage{TranscriptionSeconds: used},
		RemainingSeconds: math.Max(0, limits.TranscriptionSeconds()-used),
		Exhausted:        used >= limits.TranscriptionSeconds(),
	}, nil
}
