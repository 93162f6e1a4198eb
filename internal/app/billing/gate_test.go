package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
	"lexscribe/internal/config"
)

func TestAuthorizeFreeTier(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "user-1")

	decision, err := f.gate.Authorize(context.Background(), "user-1", Request{Kind: model.UsageTranscription})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllow, decision.Outcome)
	assert.Equal(t, model.PlanFree, decision.Plan)
	assert.Equal(t, 1.0, decision.Limits.TranscriptionHours)
	assert.Equal(t, 7, decision.Limits.RetentionDays)
	assert.Empty(t, decision.SubscriptionID)
	assert.Equal(t, 3600.0, decision.RemainingSeconds)
}

func TestAuthorizeUnknownUserGetsFreeTier(t *testing.T) {
	f := newFixture(t)

	decision, err := f.gate.Authorize(context.Background(), "ghost", Request{Kind: model.UsageTranscription})
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, decision.Plan)
}

func TestAuthorizeOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		used      float64
		estimated float64
		want      Outcome
		wantErr   error
	}{
		{name: "allow", used: 600, estimated: 600, want: OutcomeAllow},
		{name: "partial when estimate exceeds remaining", used: 35000, estimated: 1200, want: OutcomePartial},
		{name: "deny when exhausted", used: 36000, estimated: 1, want: OutcomeDeny, wantErr: apperrors.ErrUsageLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addUser(t, "user-1")
			f.addActiveSubscription(t, "sub-1", "user-1", model.PlanBasic, tt.used)

			decision, err := f.gate.Authorize(context.Background(), "user-1", Request{
				Kind:             model.UsageTranscription,
				EstimatedSeconds: tt.estimated,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, decision)
			assert.Equal(t, tt.want, decision.Outcome)
			assert.Equal(t, model.PlanBasic, decision.Plan)
			assert.Equal(t, "sub-1", decision.SubscriptionID)
			assert.Equal(t, 30, decision.Limits.RetentionDays)
		})
	}
}

func TestAuthorizeSummaryIgnoresEstimate(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "user-1")
	f.addActiveSubscription(t, "sub-1", "user-1", model.PlanBasic, 35999)

	decision, err := f.gate.Authorize(context.Background(), "user-1", Request{Kind: model.UsageSummary, EstimatedSeconds: 5000})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllow, decision.Outcome)
}

func TestAuthorizeExpiredSubscription(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "user-1")
	f.addActiveSubscription(t, "sub-1", "user-1", model.PlanProfessional, 0)

	f.now = testNow.AddDate(0, 2, 0)
	decision, err := f.gate.Authorize(ctx, "user-1", Request{Kind: model.UsageTranscription})
	assert.ErrorIs(t, err, apperrors.ErrSubscriptionExpired)
	require.NotNil(t, decision)
	assert.Equal(t, OutcomeDeny, decision.Outcome)

	sub, err := f.store.GetSubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionExpired, sub.Status)

	user, err := f.store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, user.SubscriptionPlan)
	assert.Equal(t, model.UserSubscriptionInactive, user.SubscriptionStatus)

	// a second evaluation sees no active subscription and falls back to the free tier
	decision, err = f.gate.Authorize(ctx, "user-1", Request{Kind: model.UsageTranscription})
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, decision.Plan)
}

func TestStatusExpiryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "user-1")
	f.addActiveSubscription(t, "sub-1", "user-1", model.PlanBasic, 0)

	status, err := f.gate.Status(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, status.Active)
	require.NotNil(t, status.Subscription)
	assert.Equal(t, "sub-1", status.Subscription.ID)

	f.now = testNow.Add(40 * 24 * time.Hour)
	for i := 0; i < 3; i++ {
		status, err = f.gate.Status(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, status.Active)
		assert.Nil(t, status.Subscription)
	}

	user, err := f.store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.UserSubscriptionInactive, user.SubscriptionStatus)
}

func TestUsage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "user-1")

	stats, err := f.gate.Usage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, stats.PlanID)

	f.addActiveSubscription(t, "sub-1", "user-1", model.PlanBasic, 1800)
	stats, err = f.gate.Usage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.PlanBasic, stats.PlanID)
	assert.Equal(t, 1800.0, stats.Usage.TranscriptionSeconds)
}

func TestDecisionRetention(t *testing.T) {
	d := &Decision{Outcome: OutcomeAllow, Limits: config.PlanLimits{TranscriptionHours: 1, RetentionDays: 7}}
	assert.Equal(t, testNow.AddDate(0, 0, 7), d.RetentionUntil(testNow))
	assert.True(t, d.Allowed())
	assert.False(t, (&Decision{Outcome: OutcomeDeny}).Allowed())
}
