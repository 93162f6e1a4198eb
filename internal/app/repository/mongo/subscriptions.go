package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

func usageIncrement(kind model.UsageKind, amount float64) (bson.M, error) {
	switch kind {
	case model.UsageTranscription:
		return bson.M{"usage.transcriptionSeconds": amount, "usage.transcriptionCount": 1}, nil
	case model.UsageSummary:
		return bson.M{"usage.summaryCount": 1}, nil
	}
	return nil, apperrors.InvalidField("usage kind", string(kind))
}

func (s *Store) findSubscription(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*model.Subscription, error) {
	c, ctx, cancel := s.coll(ctx, subscriptionsTable)
	defer cancel()

	var sub model.Subscription
	err := c.FindOne(ctx, filter, opts...).Decode(&sub)
	if errors.Is(err, mgo.ErrNoDocuments) {
		return nil, apperrors.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	if sub.BillingHistory == nil {
		sub.BillingHistory = []model.BillingEntry{}
	}
	return &sub, nil
}

func (s *Store) updateSubscription(ctx context.Context, filter, update bson.M) (bool, error) {
	c, ctx, cancel := s.coll(ctx, subscriptionsTable)
	defer cancel()

	res, err := c.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return res.MatchedCount > 0, nil
}

// CreateSubscription inserts a subscription document
func (s *Store) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	c, ctx, cancel := s.coll(ctx, subscriptionsTable)
	defer cancel()

	doc := *sub
	if doc.BillingHistory == nil {
		doc.BillingHistory = []model.BillingEntry{}
	}
	if _, err := c.InsertOne(ctx, doc); err != nil {
		return apperrors.Mark(err, apperrors.ErrInsertFailed)
	}
	return nil
}

// GetSubscription returns a subscription by id
func (s *Store) GetSubscription(ctx context.Context, id string) (*model.Subscription, error) {
	return s.findSubscription(ctx, bson.M{"_id": id})
}

// GetActiveSubscription returns the most recent active subscription of a user
func (s *Store) GetActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	return s.findSubscription(ctx,
		bson.M{"userId": userID, "status": string(model.SubscriptionActive)},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
}

// TransitionSubscription moves a subscription from one status to another if it is still in from
func (s *Store) TransitionSubscription(ctx context.Context, id string, from, to model.SubscriptionStatus, now time.Time) (bool, error) {
	return s.updateSubscription(ctx,
		bson.M{"_id": id, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updatedAt": now}},
	)
}

// ActivateSubscription turns a pending subscription active with a fresh term and usage window
func (s *Store) ActivateSubscription(ctx context.Context, id string, start, end time.Time, usage model.Usage) (bool, error) {
	return s.updateSubscription(ctx,
		bson.M{"_id": id, "status": string(model.SubscriptionPending)},
		bson.M{"$set": bson.M{
			"status":    string(model.SubscriptionActive),
			"startDate": start,
			"endDate":   end,
			"usage":     usage,
			"updatedAt": start,
		}},
	)
}

// ExtendSubscription moves the end date of an active subscription
func (s *Store) ExtendSubscription(ctx context.Context, id string, end, now time.Time) (bool, error) {
	return s.updateSubscription(ctx,
		bson.M{"_id": id, "status": string(model.SubscriptionActive)},
		bson.M{"$set": bson.M{"endDate": end, "updatedAt": now}},
	)
}

// CancelOtherSubscriptions cancels every active subscription of a user except keepID
func (s *Store) CancelOtherSubscriptions(ctx context.Context, userID, keepID string, now time.Time) (int64, error) {
	c, ctx, cancel := s.coll(ctx, subscriptionsTable)
	defer cancel()

	res, err := c.UpdateMany(ctx,
		bson.M{"userId": userID, "status": string(model.SubscriptionActive), "_id": bson.M{"$ne": keepID}},
		bson.M{"$set": bson.M{"status": string(model.SubscriptionCancelled), "updatedAt": now}},
	)
	if err != nil {
		return 0, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return res.ModifiedCount, nil
}

// AddBillingEntry appends a line to the embedded billing history
func (s *Store) AddBillingEntry(ctx context.Context, subscriptionID string, entry model.BillingEntry) error {
	ok, err := s.updateSubscription(ctx,
		bson.M{"_id": subscriptionID},
		bson.M{"$push": bson.M{"billingHistory": entry}},
	)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrSubscriptionNotFound
	}
	return nil
}

// HasBillingEntry reports whether a payment was already recorded for the subscription
func (s *Store) HasBillingEntry(ctx context.Context, subscriptionID, paymentID string) (bool, error) {
	c, ctx, cancel := s.coll(ctx, subscriptionsTable)
	defer cancel()

	n, err := c.CountDocuments(ctx, bson.M{"_id": subscriptionID, "billingHistory.paymentId": paymentID})
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return n > 0, nil
}

// IncrementUsage adds consumption unless the transcription quota is already spent
func (s *Store) IncrementUsage(ctx context.Context, id string, kind model.UsageKind, amount, limitSeconds float64, now time.Time) (bool, error) {
	inc, err := usageIncrement(kind, amount)
	if err != nil {
		return false, err
	}
	return s.updateSubscription(ctx,
		bson.M{
			"_id":                        id,
			"status":                     string(model.SubscriptionActive),
			"usage.transcriptionSeconds": bson.M{"$lt": limitSeconds},
		},
		bson.M{"$inc": inc, "$set": bson.M{"updatedAt": now}},
	)
}

// RolloverUsage replaces the usage window once the current one ended before next starts
func (s *Store) RolloverUsage(ctx context.Context, id string, next model.Usage) (bool, error) {
	return s.updateSubscription(ctx,
		bson.M{"_id": id, "usage.currentPeriodEnd": bson.M{"$lt": next.CurrentPeriodStart}},
		bson.M{"$set": bson.M{"usage": next, "updatedAt": next.CurrentPeriodStart}},
	)
}
