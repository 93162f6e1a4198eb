package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/api/v1/dto"
	"lexscribe/internal/api/v1/handlers"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/testutil/servicemock"
)

func TestSubscriptionHandler_Checkout(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*servicemock.MockServices)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name: "paid plan",
			body: `{"planId":"basic"}`,
			setupMocks: func(ms *servicemock.MockServices) {
				ms.SubscriptionService.On("Checkout", mock.Anything, testUser, &dto.CheckoutRequest{PlanID: "basic"}).
					Return(&dto.CheckoutResponse{
						SubscriptionID: "sub-1",
						ProcessURL:     "https://sandbox.payfast.co.za/eng/process",
						Fields:         map[string]string{"amount": "199.00"},
						FieldOrder:     []string{"amount"},
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "sub-1", body["subscriptionId"])
			},
		},
		{
			name:           "missing plan",
			body:           `{}`,
			setupMocks:     func(ms *servicemock.MockServices) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "validation", body["kind"])
			},
		},
		{
			name:           "free plan",
			body:           `{"planId":"free"}`,
			setupMocks:     func(ms *servicemock.MockServices) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Contains(t, body["details"], "planid")
			},
		},
		{
			name: "unknown plan",
			body: `{"planId":"platinum"}`,
			setupMocks: func(ms *servicemock.MockServices) {
				ms.SubscriptionService.On("Checkout", mock.Anything, testUser, mock.Anything).
					Return(nil, errors.NewBadRequestError("invalid plan"))
			},
			expectedStatus: http.StatusBadRequest,
			validateBody:   func(t *testing.T, body map[string]interface{}) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockServices := setupTestRouter(t)
			tt.setupMocks(mockServices)
			handler := handlers.NewSubscriptionHandler(mockServices.SubscriptionService)
			router.POST("/api/subscription/checkout", authenticated, handler.Checkout)

			req := httptest.NewRequest(http.MethodPost, "/api/subscription/checkout", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			tt.validateBody(t, decode(t, rec))
			mockServices.SubscriptionService.AssertExpectations(t)
		})
	}
}

func TestSubscriptionHandler_Notify(t *testing.T) {
	const form = "m_payment_id=sub-1&pf_payment_id=1089250&payment_status=COMPLETE&signature=abc"

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "accepted", expectedStatus: http.StatusOK},
		{name: "bad signature", err: errors.NewBadRequestError("Invalid payment notification").WithCode(errors.CodeInvalidSignature), expectedStatus: http.StatusBadRequest},
		{name: "untrusted source", err: errors.NewForbiddenError("Notification source is not allowed").WithCode(errors.CodeUntrustedSource), expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockServices := setupTestRouter(t)
			handler := handlers.NewSubscriptionHandler(mockServices.SubscriptionService)
			router.POST("/api/subscription/notify", handler.Notify)

			mockServices.SubscriptionService.On("Notify", mock.Anything, "192.0.2.10", []byte(form)).Return(tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/subscription/notify", bytes.NewBufferString(form))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.RemoteAddr = "192.0.2.10:41234"
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockServices.SubscriptionService.AssertExpectations(t)
		})
	}
}

func TestSubscriptionHandler_StatusAndUsage(t *testing.T) {
	router, mockServices := setupTestRouter(t)
	handler := handlers.NewSubscriptionHandler(mockServices.SubscriptionService)
	router.GET("/api/subscription/status", authenticated, handler.Status)
	router.GET("/api/subscription/usage", authenticated, handler.Usage)
	router.POST("/api/subscription/cancel", authenticated, handler.Cancel)

	sub := &model.Subscription{ID: "sub-1", UserID: testUser, PlanID: model.PlanBasic, Status: model.SubscriptionActive}
	mockServices.SubscriptionService.On("Status", mock.Anything, testUser).
		Return(&dto.SubscriptionStatusResponse{Active: true, Subscription: sub}, nil)
	mockServices.SubscriptionService.On("Usage", mock.Anything, testUser).
		Return(&dto.UsageResponse{Plan: "basic", UsedHours: 2.5, RemainingSeconds: 27000}, nil)
	mockServices.SubscriptionService.On("Cancel", mock.Anything, testUser).
		Return(nil, errors.NewForbiddenError("An active subscription is required").WithCode(errors.CodeSubscriptionRequired))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/subscription/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status dto.SubscriptionStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Active)
	assert.Equal(t, "sub-1", status.Subscription.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/subscription/usage", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.5, decode(t, rec)["usedHours"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/subscription/cancel", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errors.CodeSubscriptionRequired, decode(t, rec)["code"])
}
