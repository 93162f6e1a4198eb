package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lexscribe/internal/app/model"
	"lexscribe/internal/app/repository"
	"lexscribe/internal/app/repository/sqlite"
)

// NewSQLiteStore creates an in-memory store with the full schema. It is closed when the test ends.
func NewSQLiteStore(t *testing.T) *repository.CommonDB {
	t.Helper()
	store, err := sqlite.NewSQLiteDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// SeedUser inserts a user without a subscription
func SeedUser(t *testing.T, store repository.UserStore, id string, now time.Time) *model.User {
	t.Helper()
	user := &model.User{
		ID:                 id,
		Email:              id + "@example.com",
		SubscriptionStatus: model.UserSubscriptionInactive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, store.UpsertUser(context.Background(), user))
	return user
}

// SeedJob inserts a job
func SeedJob(t *testing.T, store repository.JobStore, job *model.TranscriptionJob) *model.TranscriptionJob {
	t.Helper()
	require.NoError(t, store.CreateJob(context.Background(), job))
	return job
}
