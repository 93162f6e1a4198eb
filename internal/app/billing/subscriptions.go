package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/metrics"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/repository"
	"lexscribe/internal/config"
)

// Checkout is the hosted payment form for a pending subscription
type Checkout struct {
	SubscriptionID string  `json:"subscription_id"`
	ProcessURL     string  `json:"process_url"`
	Fields         []Field `json:"fields"`
}

// Subscriptions manages the subscription lifecycle driven by the payment gateway
type Subscriptions struct {
	subs    repository.SubscriptionStore
	users   repository.UserStore
	plans   config.Plans
	payment config.PaymentConfig
	metrics *metrics.Metrics
	clock   Clock
	logger  *zap.Logger
}

// NewSubscriptions creates the subscription service
func NewSubscriptions(subs repository.SubscriptionStore, users repository.UserStore, plans config.Plans, payment config.PaymentConfig, m *metrics.Metrics, logger *zap.Logger) *Subscriptions {
	return &Subscriptions{
		subs:    subs,
		users:   users,
		plans:   plans,
		payment: payment,
		metrics: m,
		clock:   systemClock,
		logger:  logger,
	}
}

func (s *Subscriptions) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

// Checkout creates a pending subscription and the signed payment form for it
func (s *Subscriptions) Checkout(ctx context.Context, userID string, planID model.PlanID) (*Checkout, error) {
	plan, ok := s.plans.Lookup(planID)
	if !ok || !planID.Purchasable() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidPlan, "plan %q cannot be purchased", planID)
	}

	now := s.now()
	sub := &model.Subscription{
		ID:             uuid.New().String(),
		UserID:         userID,
		PlanID:         planID,
		Status:         model.SubscriptionPending,
		Usage:          model.NewUsagePeriod(now),
		BillingHistory: []model.BillingEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.subs.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	amount := fmt.Sprintf("%.2f", plan.Price)
	fields := []Field{
		{Key: "merchant_id", Value: s.payment.MerchantID},
		{Key: "merchant_key", Value: s.payment.MerchantKey},
		{Key: "return_url", Value: s.payment.ReturnURL},
		{Key: "cancel_url", Value: s.payment.CancelURL},
		{Key: "notify_url", Value: s.payment.NotifyURL},
		{Key: "m_payment_id", Value: sub.ID},
		{Key: "amount", Value: amount},
		{Key: "item_name", Value: "Lexscribe " + plan.Name},
		{Key: "custom_str1", Value: userID},
		{Key: "subscription_type", Value: "1"},
		{Key: "recurring_amount", Value: amount},
		{Key: "frequency", Value: "3"},
		{Key: "cycles", Value: "0"},
	}
	fields = append(fields, Field{Key: "signature", Value: Sign(fields, s.payment.Passphrase)})

	s.logger.Info("checkout created",
		zap.String("user_id", userID),
		zap.String("subscription_id", sub.ID),
		zap.String("plan", string(planID)),
	)
	return &Checkout{SubscriptionID: sub.ID, ProcessURL: s.payment.ProcessURL, Fields: fields}, nil
}

// HandleNotification applies a verified payment notification. Repeated
// notifications for the same payment are ignored.
func (s *Subscriptions) HandleNotification(ctx context.Context, n *Notification) error {
	sub, err := s.subs.GetSubscription(ctx, n.SubscriptionID)
	if err != nil {
		return err
	}

	seen, err := s.subs.HasBillingEntry(ctx, sub.ID, n.PaymentID)
	if err != nil {
		return err
	}
	if seen {
		s.logger.Info("duplicate payment notification ignored",
			zap.String("subscription_id", sub.ID),
			zap.String("payment_id", n.PaymentID),
		)
		return nil
	}

	log := s.logger.With(
		zap.String("subscription_id", sub.ID),
		zap.String("payment_id", n.PaymentID),
		zap.String("payment_status", n.Status),
		zap.String("subscription_status", string(sub.Status)),
	)

	switch n.Status {
	case PaymentComplete:
		err = s.complete(ctx, sub, n, log)
	case PaymentFailed:
		err = s.fail(ctx, sub, n)
	case PaymentCancelled:
		err = s.cancel(ctx, sub, n.PaymentID)
	default:
		return apperrors.Wrapf(apperrors.ErrNotificationInvalid, "unknown payment status %q", n.Status)
	}
	if err != nil {
		return err
	}

	s.metrics.RecordPayment(n.Status)
	log.Info("payment notification applied")
	return nil
}

func (s *Subscriptions) complete(ctx context.Context, sub *model.Subscription, n *Notification, log *zap.Logger) error {
	plan, ok := s.plans.Lookup(sub.PlanID)
	if !ok {
		return apperrors.Wrapf(apperrors.ErrInvalidPlan, "plan %q", sub.PlanID)
	}
	if math.Abs(n.Amount-plan.Price) > 0.01 {
		return apperrors.Wrapf(apperrors.ErrNotificationInvalid, "amount %.2f does not match plan price %.2f", n.Amount, plan.Price)
	}

	now := s.now()
	switch sub.Status {
	case model.SubscriptionPending:
		ok, err := s.subs.ActivateSubscription(ctx, sub.ID, now, now.AddDate(0, 1, 0), model.NewUsagePeriod(now))
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.Wrap(apperrors.ErrStaleUpdate, "subscription left pending state")
		}
		if _, err := s.subs.CancelOtherSubscriptions(ctx, sub.UserID, sub.ID, now); err != nil {
			return err
		}
		if err := s.users.SetUserSubscription(ctx, sub.UserID, sub.PlanID, now); err != nil {
			return err
		}
	case model.SubscriptionActive:
		base := now
		if sub.EndDate != nil && sub.EndDate.After(now) {
			base = *sub.EndDate
		}
		ok, err := s.subs.ExtendSubscription(ctx, sub.ID, base.AddDate(0, 1, 0), now)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.Wrap(apperrors.ErrStaleUpdate, "subscription left active state")
		}
	default:
		log.Warn("payment received for inactive subscription")
	}

	return s.subs.AddBillingEntry(ctx, sub.ID, model.BillingEntry{
		Amount:    n.Amount,
		Date:      now,
		Status:    PaymentComplete,
		PaymentID: n.PaymentID,
	})
}

func (s *Subscriptions) fail(ctx context.Context, sub *model.Subscription, n *Notification) error {
	now := s.now()
	if _, err := s.subs.TransitionSubscription(ctx, sub.ID, model.SubscriptionPending, model.SubscriptionFailed, now); err != nil {
		return err
	}
	return s.subs.AddBillingEntry(ctx, sub.ID, model.BillingEntry{
		Amount:    n.Amount,
		Date:      now,
		Status:    PaymentFailed,
		PaymentID: n.PaymentID,
	})
}

func (s *Subscriptions) cancel(ctx context.Context, sub *model.Subscription, paymentID string) error {
	now := s.now()
	for _, from := range []model.SubscriptionStatus{model.SubscriptionActive, model.SubscriptionPending} {
		if _, err := s.subs.TransitionSubscription(ctx, sub.ID, from, model.SubscriptionCancelled, now); err != nil {
			return err
		}
	}
	if _, err := s.users.DemoteUser(ctx, sub.UserID, now); err != nil {
		return err
	}
	if paymentID == "" {
		return nil
	}
	return s.subs.AddBillingEntry(ctx, sub.ID, model.BillingEntry{
		Date:      now,
		Status:    PaymentCancelled,
		PaymentID: paymentID,
	})
}

// Cancel cancels the user's active subscription
func (s *Subscriptions) Cancel(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := s.subs.GetActiveSubscription(ctx, userID)
	if errors.Is(err, apperrors.ErrSubscriptionNotFound) {
		return nil, apperrors.ErrSubscriptionRequired
	}
	if err != nil {
		return nil, err
	}
	if err := s.cancel(ctx, sub, ""); err != nil {
		return nil, err
	}

	s.logger.Info("subscription cancelled by user",
		zap.String("user_id", userID),
		zap.String("subscription_id", sub.ID),
	)
	sub.Status = model.SubscriptionCancelled
	return sub, nil
}
