package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/metrics"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/repository"
	"lexscribe/internal/app/repository/sqlite"
	"lexscribe/internal/config"
)

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store  *repository.CommonDB
	ledger *Ledger
	gate   *Gate
	subs   *Subscriptions
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.NewSQLiteDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{store: store, now: testNow}
	clock := func() time.Time { return f.now }
	logger := zap.NewNop()
	m := metrics.New()
	plans := config.DefaultPlans()

	f.ledger = NewLedger(store, store, plans, logger)
	f.ledger.clock = clock
	f.gate = NewGate(store, store, f.ledger, plans, m, logger)
	f.gate.clock = clock
	f.subs = NewSubscriptions(store, store, plans, config.PaymentConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  "jt7NOE43FZPn",
		ProcessURL:  "https://sandbox.payfast.co.za/eng/process",
		NotifyURL:   "https://api.example.com/api/subscription/notify",
	}, m, logger)
	f.subs.clock = clock
	return f
}

func (f *fixture) addUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.UpsertUser(context.Background(), &model.User{
		ID: id, Email: id + "@example.com", CreatedAt: f.now, UpdatedAt: f.now,
	}))
}

func (f *fixture) addActiveSubscription(t *testing.T, id, userID string, plan model.PlanID, seconds float64) *model.Subscription {
	t.Helper()
	ctx := context.Background()
	start := f.now.Add(-24 * time.Hour)
	end := start.AddDate(0, 1, 0)
	sub := &model.Subscription{
		ID:        id,
		UserID:    userID,
		PlanID:    plan,
		Status:    model.SubscriptionPending,
		Usage:     model.NewUsagePeriod(start),
		CreatedAt: start,
		UpdatedAt: start,
	}
	require.NoError(t, f.store.CreateSubscription(ctx, sub))
	ok, err := f.store.ActivateSubscription(ctx, id, start, end, model.NewUsagePeriod(start))
	require.NoError(t, err)
	require.True(t, ok)
	if seconds > 0 {
		ok, err = f.store.IncrementUsage(ctx, id, model.UsageTranscription, seconds, seconds+1, start)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, f.store.SetUserSubscription(ctx, userID, plan, start))
	return sub
}

func TestCheckUsageLimit(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name    string
		plan    model.PlanID
		seconds float64
		want    bool
	}{
		{name: "basic under quota", plan: model.PlanBasic, seconds: 35999, want: false},
		{name: "basic at quota", plan: model.PlanBasic, seconds: 36000, want: true},
		{name: "basic over quota", plan: model.PlanBasic, seconds: 36001, want: true},
		{name: "professional under quota", plan: model.PlanProfessional, seconds: 36001, want: false},
		{name: "professional at quota", plan: model.PlanProfessional, seconds: 108000, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &model.Subscription{PlanID: tt.plan, Usage: model.Usage{TranscriptionSeconds: tt.seconds}}
			assert.Equal(t, tt.want, f.ledger.CheckUsageLimit(sub))
		})
	}
}

func TestRecordUsage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "user-1")
	f.addActiveSubscription(t, "sub-1", "user-1", model.PlanBasic, 0)

	require.NoError(t, f.ledger.RecordUsage(ctx, "sub-1", model.UsageTranscription, 120))
	require.NoError(t, f.ledger.RecordUsage(ctx, "sub-1", model.UsageTranscription, 30))
	require.NoError(t, f.ledger.RecordUsage(ctx, "sub-1", model.UsageSummary, 999))

	stats, err := f.ledger.GetUsageStats(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 150.0, stats.Usage.TranscriptionSeconds)
	assert.Equal(t, int64(2), stats.Usage.TranscriptionCount)
	assert.Equal(t, int64(1), stats.Usage.SummaryCount)
	assert.Equal(t, 36000.0-150, stats.RemainingSeconds)
	assert.False(t, stats.Exhausted)
}

func TestRecordUsageRejectedWhenQuotaSpent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "user-1")
	f.addActiveSubscription(t, "sub-1", "user-1", model.PlanBasic, 36001)

	err := f.ledger.RecordUsage(ctx, "sub-1", model.UsageTranscription, 10)
	assert.ErrorIs(t, err, apperrors.ErrUsageLimitExceeded)

	sub, err := f.store.GetSubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 36001.0, sub.Usage.TranscriptionSeconds)
	assert.Equal(t, int64(1), sub.Usage.TranscriptionCount)
}

func TestRecordUsageRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ledger.RecordUsage(context.Background(), "sub-1", "storage", 1), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, f.ledger.RecordUsage(context.Background(), "sub-1", model.UsageTranscription, -1), apperrors.ErrInvalidInput)
}

func TestGetUsageStatsRollsOverOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "user-1")
	f.addActiveSubscription(t, "sub-1", "user-1", model.PlanBasic, 5000)

	// three idle months later
	f.now = testNow.AddDate(0, 3, 0)
	stats, err := f.ledger.GetUsageStats(ctx, "sub-1")
	require.NoError(t, err)
	assert.Zero(t, stats.Usage.TranscriptionSeconds)
	assert.Zero(t, stats.Usage.TranscriptionCount)
	assert.True(t, f.now.Equal(stats.Usage.CurrentPeriodStart))
	assert.True(t, f.now.AddDate(0, 1, 0).Equal(stats.Usage.CurrentPeriodEnd))

	require.NoError(t, f.ledger.RecordUsage(ctx, "sub-1", model.UsageTranscription, 60))

	again, err := f.ledger.GetUsageStats(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 60.0, again.Usage.TranscriptionSeconds)
	assert.True(t, stats.Usage.CurrentPeriodEnd.Equal(again.Usage.CurrentPeriodEnd))
}

func TestRecordForUserFreeTier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "user-1")

	require.NoError(t, f.ledger.RecordForUser(ctx, "user-1", model.UsageTranscription, 3000))
	require.NoError(t, f.ledger.RecordForUser(ctx, "user-1", model.UsageTranscription, 900))
	assert.ErrorIs(t, f.ledger.RecordForUser(ctx, "user-1", model.UsageTranscription, 10), apperrors.ErrUsageLimitExceeded)
	assert.ErrorIs(t, f.ledger.RecordForUser(ctx, "user-1", model.UsageSummary, 0), apperrors.ErrUsageLimitExceeded)

	user, err := f.store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3900.0, user.FreeTranscriptionSeconds)
}

func TestRecordForUserUsesActiveSubscription(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "user-1")
	f.addActiveSubscription(t, "sub-1", "user-1", model.PlanProfessional, 0)

	require.NoError(t, f.ledger.RecordForUser(ctx, "user-1", model.UsageTranscription, 42))

	sub, err := f.store.GetSubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 42.0, sub.Usage.TranscriptionSeconds)

	user, err := f.store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, user.FreeTranscriptionSeconds)
}
