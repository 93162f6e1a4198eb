package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

// UpsertUser inserts a user or refreshes the email of an existing one.
// Subscription fields of an existing user are left untouched.
func (c *CommonDB) UpsertUser(ctx context.Context, user *model.User) error {
	status := user.SubscriptionStatus
	if status == "" {
		status = model.UserSubscriptionInactive
	}
	_, err := c.exec(ctx,
		`INSERT INTO users (id, email, subscription_plan, subscription_status, free_transcription_seconds, created_at, updated_at)
		 VALUES (?, ?, NULL, ?, 0, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET email = excluded.email, updated_at = excluded.updated_at`,
		user.ID, user.Email, status, dbTime(user.CreatedAt), dbTime(user.UpdatedAt),
	)
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrInsertFailed)
	}
	return nil
}

// GetUser returns a user by id or ErrUserNotFound
func (c *CommonDB) GetUser(ctx context.Context, id string) (*model.User, error) {
	var (
		user model.User
		plan sql.NullString
	)
	err := c.queryRow(ctx,
		`SELECT id, email, subscription_plan, subscription_status, free_transcription_seconds, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&user.ID, &user.Email, &plan, &user.SubscriptionStatus, &user.FreeTranscriptionSeconds, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	if plan.Valid {
		p := model.PlanID(plan.String)
		user.SubscriptionPlan = &p
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}

// SetUserSubscription marks the user active on plan
func (c *CommonDB) SetUserSubscription(ctx context.Context, id string, plan model.PlanID, now time.Time) error {
	n, err := c.exec(ctx,
		`UPDATE users SET subscription_plan = ?, subscription_status = 'active', updated_at = ? WHERE id = ?`,
		string(plan), dbTime(now), id,
	)
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// DemoteUser clears the plan reference of a user who no longer holds any
// active subscription. Repeated or concurrent calls are harmless.
func (c *CommonDB) DemoteUser(ctx context.Context, id string, now time.Time) (bool, error) {
	n, err := c.exec(ctx,
		`UPDATE users SET subscription_plan = NULL, subscription_status = 'inactive', updated_at = ?
		 WHERE id = ? AND subscription_status = 'active'
		   AND NOT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = ? AND status = 'active')`,
		dbTime(now), id, id,
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n > 0, nil
}

// IncrementFreeUsage adds free-tier consumption unless the allowance is spent
func (c *CommonDB) IncrementFreeUsage(ctx context.Context, id string, amount, limitSeconds float64, now time.Time) (bool, error) {
	n, err := c.exec(ctx,
		`UPDATE users SET free_transcription_seconds = free_transcription_seconds + ?, updated_at = ?
		 WHERE id = ? AND free_transcription_seconds < ?`,
		amount, dbTime(now), id, limitSeconds,
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n > 0, nil
}
