package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/app/billing"
	"lexscribe/internal/app/model"
)

const (
	// DecisionKey is the context key holding the usage decision
	DecisionKey = "usage_decision"

	// EstimatedDurationHeader lets clients announce the audio length in seconds
	EstimatedDurationHeader = "X-Estimated-Duration"

	// UsageOutcomeHeader reports the gate outcome on the response
	UsageOutcomeHeader = "X-Usage-Outcome"
)

// Authorizer evaluates the usage gate
type Authorizer interface {
	Authorize(ctx context.Context, userID string, req billing.Request) (*billing.Decision, error)
}

// UsageGate authorizes a metered operation of the given kind. It must run after Auth.
func UsageGate(gate Authorizer, kind model.UsageKind, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := billing.Request{Kind: kind}
		if v := c.GetHeader(EstimatedDurationHeader); v != "" {
			seconds, err := strconv.ParseFloat(v, 64)
			if err != nil || seconds < 0 {
				HandleError(c, errors.NewBadRequestError("Invalid "+EstimatedDurationHeader+" header"))
				return
			}
			req.EstimatedSeconds = seconds
		}

		decision, err := gate.Authorize(c.Request.Context(), UserID(c), req)
		if err != nil {
			if decision == nil {
				logger.Error("usage gate failed", zap.String("user_id", UserID(c)), zap.Error(err))
			}
			HandleError(c, errors.FromDomain(err, false))
			return
		}

		c.Set(DecisionKey, decision)
		c.Header(UsageOutcomeHeader, string(decision.Outcome))
		c.Next()
	}
}

// Decision returns the usage decision stored by UsageGate
func Decision(c *gin.Context) *billing.Decision {
	v, ok := c.Get(DecisionKey)
	if !ok {
		return nil
	}
	d, _ := v.(*billing.Decision)
	return d
}
