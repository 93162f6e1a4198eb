package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

const subscriptionColumns = `id, user_id, plan_id, status, period_start, period_end,
	transcription_seconds, transcription_count, summary_count, start_date, end_date,
	created_at, updated_at`

func scanSubscription(row rowScanner) (*model.Subscription, error) {
	var (
		sub            model.Subscription
		planID, status string
		start, end     sql.NullTime
	)

	err := row.Scan(
		&sub.ID, &sub.UserID, &planID, &status, &sub.Usage.CurrentPeriodStart, &sub.Usage.CurrentPeriodEnd,
		&sub.Usage.TranscriptionSeconds, &sub.Usage.TranscriptionCount, &sub.Usage.SummaryCount,
		&start, &end, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.PlanID = model.PlanID(planID)
	sub.Status = model.SubscriptionStatus(status)
	sub.StartDate = timePtr(start)
	sub.EndDate = timePtr(end)
	sub.Usage.CurrentPeriodStart = sub.Usage.CurrentPeriodStart.UTC()
	sub.Usage.CurrentPeriodEnd = sub.Usage.CurrentPeriodEnd.UTC()
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return &sub, nil
}

func (c *CommonDB) loadBillingHistory(ctx context.Context, sub *model.Subscription) error {
	rows, err := c.query(ctx,
		`SELECT amount, date, status, payment_id FROM billing_entries
		 WHERE subscription_id = ?
		 ORDER BY date ASC`,
		sub.ID,
	)
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	defer rows.Close()

	sub.BillingHistory = []model.BillingEntry{}
	for rows.Next() {
		var entry model.BillingEntry
		if err := rows.Scan(&entry.Amount, &entry.Date, &entry.Status, &entry.PaymentID); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		entry.Date = entry.Date.UTC()
		sub.BillingHistory = append(sub.BillingHistory, entry)
	}
	return rows.Err()
}

// CreateSubscription inserts a subscription and its billing history
func (c *CommonDB) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	_, err := c.exec(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, string(sub.PlanID), string(sub.Status),
		dbTime(sub.Usage.CurrentPeriodStart), dbTime(sub.Usage.CurrentPeriodEnd),
		sub.Usage.TranscriptionSeconds, sub.Usage.TranscriptionCount, sub.Usage.SummaryCount,
		nullTime(sub.StartDate), nullTime(sub.EndDate), dbTime(sub.CreatedAt), dbTime(sub.UpdatedAt),
	)
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrInsertFailed)
	}
	for _, entry := range sub.BillingHistory {
		if err := c.AddBillingEntry(ctx, sub.ID, entry); err != nil {
			return err
		}
	}
	return nil
}

// GetSubscription returns a subscription with its billing history
func (c *CommonDB) GetSubscription(ctx context.Context, id string) (*model.Subscription, error) {
	row := c.queryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	if err := c.loadBillingHistory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetActiveSubscription returns the most recent active subscription of a user
func (c *CommonDB) GetActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	row := c.queryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE user_id = ? AND status = 'active'
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	if err := c.loadBillingHistory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// TransitionSubscription moves a subscription from one status to another if it is still in from
func (c *CommonDB) TransitionSubscription(ctx context.Context, id string, from, to model.SubscriptionStatus, now time.Time) (bool, error) {
	n, err := c.exec(ctx,
		`UPDATE subscriptions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), dbTime(now), id, string(from),
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n > 0, nil
}

// ActivateSubscription turns a pending subscription active with a fresh term and usage window
func (c *CommonDB) ActivateSubscription(ctx context.Context, id string, start, end time.Time, usage model.Usage) (bool, error) {
	n, err := c.exec(ctx,
		`UPDATE subscriptions
		 SET status = 'active', start_date = ?, end_date = ?, period_start = ?, period_end = ?,
		     transcription_seconds = 0, transcription_count = 0, summary_count = 0, updated_at = ?
		 WHERE id = ? AND status = 'pending'`,
		dbTime(start), dbTime(end), dbTime(usage.CurrentPeriodStart), dbTime(usage.CurrentPeriodEnd), dbTime(start),
		id,
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n > 0, nil
}

// ExtendSubscription moves the end date of an active subscription
func (c *CommonDB) ExtendSubscription(ctx context.Context, id string, end, now time.Time) (bool, error) {
	n, err := c.exec(ctx,
		`UPDATE subscriptions SET end_date = ?, updated_at = ? WHERE id = ? AND status = 'active'`,
		dbTime(end), dbTime(now), id,
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n > 0, nil
}

// CancelOtherSubscriptions cancels every active subscription of a user except keepID
func (c *CommonDB) CancelOtherSubscriptions(ctx context.Context, userID, keepID string, now time.Time) (int64, error) {
	n, err := c.exec(ctx,
		`UPDATE subscriptions SET status = 'cancelled', updated_at = ?
		 WHERE user_id = ? AND status = 'active' AND id <> ?`,
		dbTime(now), userID, keepID,
	)
	if err != nil {
		return 0, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n, nil
}

// AddBillingEntry appends a line to the billing history
func (c *CommonDB) AddBillingEntry(ctx context.Context, subscriptionID string, entry model.BillingEntry) error {
	_, err := c.exec(ctx,
		`INSERT INTO billing_entries (id, subscription_id, amount, date, status, payment_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), subscriptionID, entry.Amount, dbTime(entry.Date), entry.Status, entry.PaymentID,
	)
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrInsertFailed)
	}
	return nil
}

// HasBillingEntry reports whether a payment was already recorded for the subscription
func (c *CommonDB) HasBillingEntry(ctx context.Context, subscriptionID, paymentID string) (bool, error) {
	var count int
	err := c.queryRow(ctx,
		`SELECT COUNT(*) FROM billing_entries WHERE subscription_id = ? AND payment_id = ?`,
		subscriptionID, paymentID,
	).Scan(&count)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return count > 0, nil
}

// IncrementUsage adds consumption to an active subscription. The limit check
// and the increment are one statement: nothing changes once the transcription
// quota is spent.
func (c *CommonDB) IncrementUsage(ctx context.Context, id string, kind model.UsageKind, amount, limitSeconds float64, now time.Time) (bool, error) {
	var set string
	args := []interface{}{}
	switch kind {
	case model.UsageTranscription:
		set = `transcription_seconds = transcription_seconds + ?, transcription_count = transcription_count + 1`
		args = append(args, amount)
	case model.UsageSummary:
		set = `summary_count = summary_count + 1`
	default:
		return false, apperrors.InvalidField("usage kind", string(kind))
	}
	args = append(args, dbTime(now), id, limitSeconds)

	n, err := c.exec(ctx,
		`UPDATE subscriptions SET `+set+`, updated_at = ?
		 WHERE id = ? AND status = 'active' AND transcription_seconds < ?`,
		args...,
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n > 0, nil
}

// RolloverUsage resets the counters to next once the current window has
// ended before next starts. Only one concurrent caller wins.
func (c *CommonDB) RolloverUsage(ctx context.Context, id string, next model.Usage) (bool, error) {
	n, err := c.exec(ctx,
		`UPDATE subscriptions
		 SET period_start = ?, period_end = ?, transcription_seconds = ?, transcription_count = ?,
		     summary_count = ?, updated_at = ?
		 WHERE id = ? AND period_end < ?`,
		dbTime(next.CurrentPeriodStart), dbTime(next.CurrentPeriodEnd), next.TranscriptionSeconds,
		next.TranscriptionCount, next.SummaryCount, dbTime(next.CurrentPeriodStart),
		id, dbTime(next.CurrentPeriodStart),
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n > 0, nil
}
