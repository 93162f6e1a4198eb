package dto

import (
	"lexscribe/internal/api/errors"
	"lexscribe/internal/app/billing"
	"lexscribe/internal/app/model"
	"lexscribe/internal/config"
)

// CheckoutRequest starts a paid subscription
type CheckoutRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

// Validate performs domain-specific validation
func (r *CheckoutRequest) Validate() error {
	if model.PlanID(r.PlanID) == model.PlanFree {
		return errors.NewValidationError("Invalid checkout request", map[string]string{
			"planid": "the free plan needs no checkout",
		})
	}
	return nil
}

// CheckoutResponse carries the hosted payment form
type CheckoutResponse struct {
	SubscriptionID string            `json:"subscriptionId"`
	ProcessURL     string            `json:"processUrl"`
	Fields         map[string]string `json:"fields"`
	FieldOrder     []string          `json:"fieldOrder"`
}

// ToCheckoutResponse converts a checkout, keeping the signed field order
func ToCheckoutResponse(c *billing.Checkout) *CheckoutResponse {
	resp := &CheckoutResponse{
		SubscriptionID: c.SubscriptionID,
		ProcessURL:     c.ProcessURL,
		Fields:         make(map[string]string, len(c.Fields)),
		FieldOrder:     make([]string, 0, len(c.Fields)),
	}
	for _, f := range c.Fields {
		resp.Fields[f.Key] = f.Value
		resp.FieldOrder = append(resp.FieldOrder, f.Key)
	}
	return resp
}

// SubscriptionStatusResponse answers the status route
type SubscriptionStatusResponse struct {
	Active       bool                `json:"active"`
	Subscription *model.Subscription `json:"subscription"`
}

// UsageResponse reports usage of the current window
type UsageResponse struct {
	SubscriptionID   string            `json:"subscriptionId,omitempty"`
	Plan             string            `json:"plan"`
	Limits           config.PlanLimits `json:"limits"`
	Usage            model.Usage       `json:"usage"`
	UsedHours        float64           `json:"usedHours"`
	RemainingSeconds float64           `json:"remainingSeconds"`
	Exhausted        bool              `json:"exhausted"`
}

// ToUsageResponse converts ledger stats
func ToUsageResponse(s *billing.UsageStats) *UsageResponse {
	return &UsageResponse{
		SubscriptionID:   s.SubscriptionID,
		Plan:             string(s.PlanID),
		Limits:           s.Limits,
		Usage:            s.Usage,
		UsedHours:        s.Usage.TranscriptionSeconds / 3600,
		RemainingSeconds: s.RemainingSeconds,
		Exhausted:        s.Exhausted,
	}
}

// NotifyResponse acknowledges a payment notification
type NotifyResponse struct {
	Received bool `json:"received"`
}
