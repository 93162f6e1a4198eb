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

// UpsertUser inserts a user or refreshes the email of an existing one
func (s *Store) UpsertUser(ctx context.Context, user *model.User) error {
	c, ctx, cancel := s.coll(ctx, usersTable)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"email": user.Email, "updatedAt": user.UpdatedAt},
		"$setOnInsert": bson.M{
			"subscriptionPlan":         nil,
			"subscriptionStatus":       model.UserSubscriptionInactive,
			"freeTranscriptionSeconds": 0.0,
			"createdAt":                user.CreatedAt,
		},
	}
	_, err := c.UpdateOne(ctx, bson.M{"_id": user.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrInsertFailed)
	}
	return nil
}

// GetUser returns a user by id or ErrUserNotFound
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	c, ctx, cancel := s.coll(ctx, usersTable)
	defer cancel()

	var user model.User
	err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mgo.ErrNoDocuments) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return &user, nil
}

// SetUserSubscription marks the user active on plan
func (s *Store) SetUserSubscription(ctx context.Context, id string, plan model.PlanID, now time.Time) error {
	c, ctx, cancel := s.coll(ctx, usersTable)
	defer cancel()

	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"subscriptionPlan":   string(plan),
		"subscriptionStatus": model.UserSubscriptionActive,
		"updatedAt":          now,
	}})
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// DemoteUser clears the plan reference of a user who no longer holds any active subscription
func (s *Store) DemoteUser(ctx context.Context, id string, now time.Time) (bool, error) {
	subs, subCtx, subCancel := s.coll(ctx, subscriptionsTable)
	defer subCancel()

	active, err := subs.CountDocuments(subCtx, bson.M{"userId": id, "status": string(model.SubscriptionActive)})
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	if active > 0 {
		return false, nil
	}

	c, ctx, cancel := s.coll(ctx, usersTable)
	defer cancel()

	res, err := c.UpdateOne(ctx,
		bson.M{"_id": id, "subscriptionStatus": model.UserSubscriptionActive},
		bson.M{"$set": bson.M{
			"subscriptionPlan":   nil,
			"subscriptionStatus": model.UserSubscriptionInactive,
			"updatedAt":          now,
		}},
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return res.ModifiedCount > 0, nil
}

// IncrementFreeUsage adds free-tier consumption unless the allowance is spent
func (s *Store) IncrementFreeUsage(ctx context.Context, id string, amount, limitSeconds float64, now time.Time) (bool, error) {
	c, ctx, cancel := s.coll(ctx, usersTable)
	defer cancel()

	res, err := c.UpdateOne(ctx,
		bson.M{"_id": id, "freeTranscriptionSeconds": bson.M{"$lt": limitSeconds}},
		bson.M{"$inc": bson.M{"freeTranscriptionSeconds": amount}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return res.MatchedCount > 0, nil
}
