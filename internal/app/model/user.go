package model

import "time"

// User subscription status values
const (
	UserSubscriptionInactive = "inactive"
	UserSubscriptionActive   = "active"
)

// User is the owner of jobs and subscriptions
type User struct {
	ID                       string    `json:"id" bson:"_id"`
	Email                    string    `json:"email" bson:"email"`
	SubscriptionPlan         *PlanID   `json:"subscription_plan" bson:"subscriptionPlan"`
	SubscriptionStatus       string    `json:"subscription_status" bson:"subscriptionStatus"`
	FreeTranscriptionSeconds float64   `json:"free_transcription_seconds" bson:"freeTranscriptionSeconds"`
	CreatedAt                time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt                time.Time `json:"updated_at" bson:"updatedAt"`
}
