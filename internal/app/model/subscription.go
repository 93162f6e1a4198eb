package model

import (
	"time"
)

// PlanID identifies a subscription plan
type PlanID string

const (
	PlanFree         PlanID = "free"
	PlanBasic        PlanID = "basic"
	PlanProfessional PlanID = "professional"
)

// Purchasable reports whether a subscription row can be created for the plan
func (p PlanID) Purchasable() bool {
	switch p {
	case PlanBasic, PlanProfessional:
		return true
	}
	return false
}

// SubscriptionStatus is the lifecycle state of a subscription row
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionFailed    SubscriptionStatus = "failed"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// UsageKind is the kind of metered operation
type UsageKind string

const (
	UsageTranscription UsageKind = "transcription"
	UsageSummary       UsageKind = "summary"
)

// Usage holds the consumption counters of the current billing period
type Usage struct {
	CurrentPeriodStart   time.Time `json:"current_period_start" bson:"currentPeriodStart"`
	CurrentPeriodEnd     time.Time `json:"current_period_end" bson:"currentPeriodEnd"`
	TranscriptionSeconds float64   `json:"transcription_seconds" bson:"transcriptionSeconds"`
	TranscriptionCount   int64     `json:"transcription_count" bson:"transcriptionCount"`
	SummaryCount         int64     `json:"summary_count" bson:"summaryCount"`
}

// NewUsagePeriod returns zeroed counters for a one-month window starting at now
func NewUsagePeriod(now time.Time) Usage {
	return Usage{
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}
}

// Elapsed reports whether the billing window has passed
func (u Usage) Elapsed(now time.Time) bool {
	return now.After(u.CurrentPeriodEnd)
}

// BillingEntry is one payment ledger line
type BillingEntry struct {
	Amount    float64   `json:"amount" bson:"amount"`
	Date      time.Time `json:"date" bson:"date"`
	Status    string    `json:"status" bson:"status"`
	PaymentID string    `json:"payment_id" bson:"paymentId"`
}

// Subscription represents a user's plan, its billing term and the usage ledger
type Subscription struct {
	ID             string             `json:"id" bson:"_id"`
	UserID         string             `json:"user_id" bson:"userId"`
	PlanID         PlanID             `json:"plan_id" bson:"planId"`
	Status         SubscriptionStatus `json:"status" bson:"status"`
	Usage          Usage              `json:"usage" bson:"usage"`
	BillingHistory []BillingEntry     `json:"billing_history" bson:"billingHistory"`
	StartDate      *time.Time         `json:"start_date,omitempty" bson:"startDate,omitempty"`
	EndDate        *time.Time         `json:"end_date,omitempty" bson:"endDate,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updatedAt"`
}

// TableName returns the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}

// TermElapsed reports whether an active subscription has run past its end date
func (s *Subscription) TermElapsed(now time.Time) bool {
	return s.EndDate != nil && now.After(*s.EndDate)
}
