package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"lexscribe/internal/api/errors"
)

// Validator is implemented by requests with rules beyond struct tags
type Validator interface {
	Validate() error
}

var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"url":      "must be a valid URL",
	"min":      "is too short",
	"gte":      "is too small",
	"max":      "is too long",
	"lte":      "is too large",
	"oneof":    "must be one of the allowed values",
}

// ValidateRequest binds a JSON body, then applies tag and request rules
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errors.NewValidationError("Validation failed", bindingDetails(err, "request", "invalid JSON format"))
	}
	return validateRules(req)
}

// ValidateQuery binds query parameters, then applies tag and request rules
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		apiErr := errors.NewBadRequestError("Invalid query parameters")
		apiErr.Details = bindingDetails(err, "query", "invalid query parameters")
		return apiErr
	}
	return validateRules(req)
}

// bindingDetails maps each failed field to a short message. Errors that are
// not validation failures are reported under fallbackKey.
func bindingDetails(err error, fallbackKey, fallback string) map[string]string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return map[string]string{fallbackKey: fallback}
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		details[strings.ToLower(fe.Field())] = msg
	}
	return details
}

func validateRules(req interface{}) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}
