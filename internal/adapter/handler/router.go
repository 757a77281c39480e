package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/internal/infrastructure/http/middleware"
	"github.com/salescribe-team/salescribe/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg               *config.Config
	auth              *middleware.AuthMiddleware
	whatsappWebhook   *WhatsAppWebhookHandler
	stripeWebhook     *StripeWebhookHandler
	billingHandler    *Billing
	templateHandler   *Template
	transcriptHandler *Transcript
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	auth *middleware.AuthMiddleware,
	whatsappWebhook *WhatsAppWebhookHandler,
	stripeWebhook *StripeWebhookHandler,
	billingHandler *Billing,
	templateHandler *Template,
	transcriptHandler *Transcript,
) *Router {
	return &Router{
		cfg:               cfg,
		auth:              auth,
		whatsappWebhook:   whatsappWebhook,
		stripeWebhook:     stripeWebhook,
		billingHandler:    billingHandler,
		templateHandler:   templateHandler,
		transcriptHandler: transcriptHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupWebhookRoutes(v1)
	rt.setupBillingRoutes(v1)
	rt.setupTemplateRoutes(v1)
	rt.setupTranscriptRoutes(v1)
}

// setupWebhookRoutes configures the public vendor webhook endpoints
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhooks := g.Group("/webhooks")
	webhooks.GET("/whatsapp", rt.whatsappWebhook.Verify)
	webhooks.POST("/whatsapp", rt.whatsappWebhook.Receive)
	webhooks.POST("/stripe", rt.stripeWebhook.Receive)
}

// setupBillingRoutes configures authenticated billing routes. Cancellation
// is restricted to managers; representatives never own a subscription.
func (rt *Router) setupBillingRoutes(g *echo.Group) {
	billing := g.Group("/billing", rt.auth.Authenticate)
	billing.POST("/checkout", rt.billingHandler.Checkout)
	billing.GET("/checkout/wait", rt.billingHandler.WaitForActivation)
	billing.POST("/usage", rt.billingHandler.RecordUsage)
	billing.POST("/cancel", rt.billingHandler.Cancel, rt.auth.RequireRole(entities.RoleManager))
}

// setupTemplateRoutes configures template CRUD routes
func (rt *Router) setupTemplateRoutes(g *echo.Group) {
	templates := g.Group("/templates", rt.auth.Authenticate)
	templates.GET("", rt.templateHandler.List)
	templates.POST("", rt.templateHandler.Create)
	templates.GET("/:id", rt.templateHandler.Get)
	templates.PUT("/:id", rt.templateHandler.Update)
	templates.DELETE("/:id", rt.templateHandler.Delete)
	templates.POST("/:id/default", rt.templateHandler.SetDefault)
}

// setupTranscriptRoutes configures transcript read routes
func (rt *Router) setupTranscriptRoutes(g *echo.Group) {
	transcripts := g.Group("/transcripts", rt.auth.Authenticate)
	transcripts.GET("", rt.transcriptHandler.List)
	transcripts.GET("/:id", rt.transcriptHandler.Get)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}
