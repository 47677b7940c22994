package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vrisetechno/vrise-api/config"
	"github.com/vrisetechno/vrise-api/internal/handlers"
	"github.com/vrisetechno/vrise-api/internal/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

const (
	// defaultBodyLimit covers the text-only forms
	defaultBodyLimit = 1 << 20
	// resumeBodyLimit leaves room for a base64-encoded resume
	resumeBodyLimit = 15 << 20
)

// newRouter wires middleware and routes. It has no side effects beyond the returned engine.
func newRouter(cfg *config.Config, intakeHandler *handlers.IntakeHandler, healthHandler *handlers.HealthHandler) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RecoveryMiddleware())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))

	allowedOrigins := append([]string(nil), cfg.Server.AllowedOrigins...)
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173", "http://127.0.0.1:5173")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	// Lead forms get a tighter bucket than the health endpoints
	generalRateLimiter := middleware.NewRateLimiter(20, 40)
	submissionRateLimiter := middleware.NewRateLimiter(rate.Every(10*time.Second), 5)

	api := router.Group("/api")
	api.GET("/health", healthHandler.Health)
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	api.POST("/internships/applications",
		submissionRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(defaultBodyLimit),
		intakeHandler.SubmitInternshipApplication)
	api.POST("/mock-interviews",
		submissionRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(resumeBodyLimit),
		intakeHandler.SubmitInterviewBooking)
	api.POST("/feedback",
		submissionRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(defaultBodyLimit),
		intakeHandler.SubmitFeedback)

	router.NoRoute(handlers.NotFound)

	return router
}
