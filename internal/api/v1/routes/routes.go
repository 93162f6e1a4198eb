package routes

import (
	"github.com/gin-gonic/gin"

	"lexscribe/internal/api/v1/handlers"
	"lexscribe/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	SubscriptionService  services.SubscriptionService
	ExportService        services.ExportService
}

// Guards are the per-route middleware chains
type Guards struct {
	Auth              gin.HandlerFunc
	TranscriptionGate gin.HandlerFunc
	SummaryGate       gin.HandlerFunc
}

// RegisterRoutes registers all public routes
func RegisterRoutes(router gin.IRouter, container *ServiceContainer, guards Guards) {
	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService)

	// Direct provider routes, no job record
	router.POST("/upload-and-transcribe", transcriptionHandler.UploadAndTranscribe)
	router.GET("/transcription-status", transcriptionHandler.ProviderStatus)

	api := router.Group("/api")

	// Transcription routes
	transcriptions := api.Group("/transcriptions", guards.Auth)
	{
		transcriptions.POST("", guards.TranscriptionGate, transcriptionHandler.Create)
		transcriptions.GET("", transcriptionHandler.List)
		if container.ExportService != nil {
			exportHandler := handlers.NewExportHandler(container.ExportService)
			transcriptions.GET("/export", exportHandler.Export)
		}
		transcriptions.GET("/:id", transcriptionHandler.Get)
		transcriptions.POST("/:id/summary", guards.SummaryGate, transcriptionHandler.Summarize)
	}

	// Subscription routes
	subscriptionHandler := handlers.NewSubscriptionHandler(container.SubscriptionService)
	subscription := api.Group("/subscription")
	{
		// payment gateway webhook, authenticated by signature and source address
		subscription.POST("/notify", subscriptionHandler.Notify)

		authed := subscription.Group("", guards.Auth)
		authed.POST("/checkout", subscriptionHandler.Checkout)
		authed.POST("/cancel", subscriptionHandler.Cancel)
		authed.GET("/status", subscriptionHandler.Status)
		authed.GET("/usage", subscriptionHandler.Usage)
	}
}
