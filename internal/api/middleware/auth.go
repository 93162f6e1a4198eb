package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/app/model"
)

// UserIDKey is the context key holding the authenticated user id
const UserIDKey = "user_id"

// Claims are the token claims issued by the identity provider
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserRegistrar records users the first time they are seen
type UserRegistrar interface {
	UpsertUser(ctx context.Context, user *model.User) error
}

// AuthConfig configures token validation
type AuthConfig struct {
	Secret string
	Issuer string
}

// Auth validates the bearer token and stores the user id in the context
func Auth(config AuthConfig, users UserRegistrar, logger *zap.Logger) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(config.Secret)

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			HandleError(c, errors.NewUnauthorizedError("Missing bearer token"))
			return
		}

		claims := &Claims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}); err != nil {
			logger.Debug("token rejected", zap.Error(err), zap.String("request_id", c.GetString(RequestIDKey)))
			HandleError(c, errors.NewUnauthorizedError("Invalid or expired token"))
			return
		}
		if claims.Subject == "" {
			HandleError(c, errors.NewUnauthorizedError("Token has no subject"))
			return
		}

		now := time.Now()
		user := &model.User{ID: claims.Subject, Email: claims.Email, CreatedAt: now, UpdatedAt: now}
		if err := users.UpsertUser(c.Request.Context(), user); err != nil {
			logger.Error("failed to register user", zap.String("user_id", user.ID), zap.Error(err))
			HandleError(c, errors.NewInternalError("Internal server error"))
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

// UserID returns the authenticated user id
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
