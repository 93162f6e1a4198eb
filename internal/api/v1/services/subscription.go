package services

import (
	"context"

	"go.uber.org/zap"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/api/v1/dto"
	"lexscribe/internal/app/model"
)

// SubscriptionServiceImpl implements SubscriptionService
type SubscriptionServiceImpl struct {
	manager  SubscriptionManager
	reporter UsageReporter
	verifier NotificationVerifier
	logger   *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(manager SubscriptionManager, reporter UsageReporter, verifier NotificationVerifier, logger *zap.Logger) SubscriptionService {
	return &SubscriptionServiceImpl{
		manager:  manager,
		reporter: reporter,
		verifier: verifier,
		logger:   logger,
	}
}

// Checkout creates a pending subscription and its payment form
func (s *SubscriptionServiceImpl) Checkout(ctx context.Context, userID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	checkout, err := s.manager.Checkout(ctx, userID, model.PlanID(req.PlanID))
	if err != nil {
		return nil, errors.FromDomain(err, false)
	}
	return dto.ToCheckoutResponse(checkout), nil
}

// Cancel cancels the user's active subscription
func (s *SubscriptionServiceImpl) Cancel(ctx context.Context, userID string) (*dto.SubscriptionStatusResponse, error) {
	sub, err := s.manager.Cancel(ctx, userID)
	if err != nil {
		return nil, errors.FromDomain(err, false)
	}
	return &dto.SubscriptionStatusResponse{Active: false, Subscription: sub}, nil
}

// Notify verifies and applies a payment notification
func (s *SubscriptionServiceImpl) Notify(ctx context.Context, remoteIP string, body []byte) error {
	n, err := s.verifier.Verify(remoteIP, body)
	if err != nil {
		s.logger.Warn("payment notification rejected", zap.String("remote_ip", remoteIP), zap.Error(err))
		return errors.FromDomain(err, false)
	}

	if err := s.manager.HandleNotification(ctx, n); err != nil {
		s.logger.Error("payment notification failed",
			zap.String("subscription_id", n.SubscriptionID),
			zap.String("payment_id", n.PaymentID),
			zap.Error(err),
		)
		return errors.FromDomain(err, false)
	}
	return nil
}

// Status reports whether the user holds an active subscription
func (s *SubscriptionServiceImpl) Status(ctx context.Context, userID string) (*dto.SubscriptionStatusResponse, error) {
	status, err := s.reporter.Status(ctx, userID)
	if err != nil {
		return nil, errors.FromDomain(err, false)
	}
	return &dto.SubscriptionStatusResponse{Active: status.Active, Subscription: status.Subscription}, nil
}

// Usage reports the usage of the user's current window
func (s *SubscriptionServiceImpl) Usage(ctx context.Context, userID string) (*dto.UsageResponse, error) {
	stats, err := s.reporter.Usage(ctx, userID)
	if err != nil {
		return nil, errors.FromDomain(err, false)
	}
	return dto.ToUsageResponse(stats), nil
}
