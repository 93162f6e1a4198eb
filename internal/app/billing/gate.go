package billing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/metrics"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/repository"
	"lexscribe/internal/config"
)

// Outcome is the result of a gate evaluation
type Outcome string

const (
	OutcomeAllow   Outcome = "allow"
	OutcomePartial Outcome = "partial"
	OutcomeDeny    Outcome = "deny"
)

// Request describes the operation about to consume quota
type Request struct {
	Kind             model.UsageKind
	EstimatedSeconds float64
}

// Decision is the single authorization answer for an operation. Partial means
// the request proceeds but is expected to run past the remaining quota.
type Decision struct {
	Outcome          Outcome           `json:"outcome"`
	Plan             model.PlanID      `json:"plan"`
	Limits           config.PlanLimits `json:"limits"`
	SubscriptionID   string            `json:"subscription_id,omitempty"`
	RemainingSeconds float64           `json:"remaining_seconds"`
}

// Allowed reports whether the operation may proceed
func (d *Decision) Allowed() bool {
	return d.Outcome != OutcomeDeny
}

// RetentionUntil returns when data created under this decision expires
func (d *Decision) RetentionUntil(from time.Time) time.Time {
	return from.AddDate(0, 0, d.Limits.RetentionDays)
}

// SubscriptionStatus is the answer of the status endpoint
type SubscriptionStatus struct {
	Active       bool                `json:"active"`
	Subscription *model.Subscription `json:"subscription"`
}

// Gate authorizes metered operations against the user's plan
type Gate struct {
	subs    repository.SubscriptionStore
	users   repository.UserStore
	ledger  *Ledger
	plans   config.Plans
	metrics *metrics.Metrics
	clock   Clock
	logger  *zap.Logger
}

// NewGate creates a usage gate
func NewGate(subs repository.SubscriptionStore, users repository.UserStore, ledger *Ledger, plans config.Plans, m *metrics.Metrics, logger *zap.Logger) *Gate {
	return &Gate{
		subs:    subs,
		users:   users,
		ledger:  ledger,
		plans:   plans,
		metrics: m,
		clock:   systemClock,
		logger:  logger,
	}
}

func (g *Gate) now() time.Time {
	return g.clock().UTC().Truncate(time.Microsecond)
}

// Authorize evaluates access and quota in one step. A denied decision is
// returned together with the error explaining it.
func (g *Gate) Authorize(ctx context.Context, userID string, req Request) (*Decision, error) {
	decision, err := g.authorize(ctx, userID, req)
	if decision != nil {
		g.metrics.RecordGateDecision(string(req.Kind), string(decision.Outcome))
	}
	return decision, err
}

func (g *Gate) authorize(ctx context.Context, userID string, req Request) (*Decision, error) {
	sub, err := g.activeSubscription(ctx, userID)
	if errors.Is(err, apperrors.ErrSubscriptionExpired) {
		plan := g.plans.Get(sub.PlanID)
		return &Decision{Outcome: OutcomeDeny, Plan: plan.ID, Limits: plan.Limits, SubscriptionID: sub.ID}, err
	}
	if err != nil {
		return nil, err
	}

	var stats *UsageStats
	if sub == nil {
		stats, err = g.ledger.FreeStats(ctx, userID)
	} else {
		stats, err = g.ledger.GetUsageStats(ctx, sub.ID)
	}
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		Outcome:          OutcomeAllow,
		Plan:             stats.PlanID,
		Limits:           stats.Limits,
		SubscriptionID:   stats.SubscriptionID,
		RemainingSeconds: stats.RemainingSeconds,
	}
	switch {
	case stats.Exhausted:
		decision.Outcome = OutcomeDeny
		return decision, apperrors.ErrUsageLimitExceeded
	case req.Kind == model.UsageTranscription && req.EstimatedSeconds > stats.RemainingSeconds:
		decision.Outcome = OutcomePartial
		g.logger.Info("request exceeds remaining quota",
			zap.String("user_id", userID),
			zap.Float64("estimated_seconds", req.EstimatedSeconds),
			zap.Float64("remaining_seconds", stats.RemainingSeconds),
		)
	}
	return decision, nil
}

// Status reports whether the user holds a current subscription, expiring it when its term ended
func (g *Gate) Status(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := g.activeSubscription(ctx, userID)
	if errors.Is(err, apperrors.ErrSubscriptionExpired) {
		return &SubscriptionStatus{Active: false}, nil
	}
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &SubscriptionStatus{Active: false}, nil
	}
	return &SubscriptionStatus{Active: true, Subscription: sub}, nil
}

// Usage returns the user's usage on their subscription or the free tier
func (g *Gate) Usage(ctx context.Context, userID string) (*UsageStats, error) {
	sub, err := g.activeSubscription(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrSubscriptionExpired) {
		return nil, err
	}
	if sub == nil || errors.Is(err, apperrors.ErrSubscriptionExpired) {
		return g.ledger.FreeStats(ctx, userID)
	}
	return g.ledger.GetUsageStats(ctx, sub.ID)
}

// activeSubscription returns the user's active subscription, nil when there is
// none, or the subscription together with ErrSubscriptionExpired when its term
// has ended. Expiry is a compare-and-swap on status followed by an idempotent
// demotion, so concurrent callers converge on the same state.
func (g *Gate) activeSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := g.subs.GetActiveSubscription(ctx, userID)
	if errors.Is(err, apperrors.ErrSubscriptionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := g.now()
	if !sub.TermElapsed(now) {
		return sub, nil
	}

	expired, err := g.subs.TransitionSubscription(ctx, sub.ID, model.SubscriptionActive, model.SubscriptionExpired, now)
	if err != nil {
		return nil, err
	}
	demoted, err := g.users.DemoteUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if expired || demoted {
		g.logger.Info("subscription expired",
			zap.String("user_id", userID),
			zap.String("subscription_id", sub.ID),
			zap.Bool("user_demoted", demoted),
		)
	}
	sub.Status = model.SubscriptionExpired
	return sub, apperrors.ErrSubscriptionExpired
}
