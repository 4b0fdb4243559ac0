package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/farmguardian/farm-guardian/docs"
	"github.com/farmguardian/farm-guardian/internal/api/handler"
	"github.com/farmguardian/farm-guardian/internal/api/i18n"
	"github.com/farmguardian/farm-guardian/internal/api/middleware"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// Services are the core use cases exposed over HTTP.
type Services struct {
	Auth        ports.AuthService
	Profiles    ports.ProfileService
	Farms       ports.FarmService
	Alerts      ports.AlertService
	Compliance  ports.ComplianceService
	Feedback    ports.FeedbackService
	Assessments ports.AssessmentService
}

// multipartOverhead covers form fields and part headers around the files.
const multipartOverhead = 1 << 20

// Options carries the transport-level settings of the router.
type Options struct {
	FrontendURL  string
	SecureCookie bool

	// BodyLimit caps non-multipart bodies. Upload routes are capped from
	// MaxUploadBytes per file instead.
	BodyLimit      string
	MaxUploadBytes int64

	// UploadDir is served under UploadPrefix when files are stored locally.
	UploadDir    string
	UploadPrefix string

	Checks     map[string]handler.Checker
	Validator  ports.Validator
	Translator *i18n.Translator
	Logger     zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator(opts.Validator)
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "10M"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	uploadLimits := map[string]echo.MiddlewareFunc{
		"/api/auth/register-vet":  bodyLimit(3*opts.MaxUploadBytes + multipartOverhead),
		"/api/auth/profile-image": bodyLimit(opts.MaxUploadBytes + multipartOverhead),
	}
	if opts.Translator == nil {
		opts.Translator = i18n.MustNew()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{opts.FrontendURL},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Limit: opts.BodyLimit,
		Skipper: func(c echo.Context) bool {
			_, upload := uploadLimits[c.Path()]
			return upload
		},
	}))
	e.Use(opts.Translator.Middleware())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "farm_guardian",
		Registerer: opts.Registerer,
	}))

	// --- Operability (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Checks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	if opts.UploadDir != "" && opts.UploadPrefix != "" {
		e.Static(opts.UploadPrefix, opts.UploadDir)
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth, opts.SecureCookie)
	profileHandler := handler.NewProfileHandler(svc.Profiles)
	farmHandler := handler.NewFarmHandler(svc.Farms)
	alertHandler := handler.NewAlertHandler(svc.Alerts)
	complianceHandler := handler.NewComplianceHandler(svc.Compliance)
	feedbackHandler := handler.NewFeedbackHandler(svc.Feedback)
	assessmentHandler := handler.NewAssessmentHandler(svc.Assessments)

	session := middleware.Auth(svc.Auth, opts.SecureCookie)
	staffOnly := middleware.RBAC(domain.RoleVet, domain.RoleAdmin)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	api := e.Group("/api")

	// --- Auth and profile ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/register-vet", authHandler.RegisterVet, uploadLimits["/api/auth/register-vet"])
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ChangePassword)
	auth.POST("/logout", authHandler.Logout, session)
	auth.GET("/profile", profileHandler.Get, session)
	auth.PUT("/farm-data", profileHandler.UpdateFarmData, session)
	auth.PUT("/profile-image", profileHandler.UpdateImage, session, uploadLimits["/api/auth/profile-image"])

	users := api.Group("/users", session)
	users.PUT("/:id/farm-data", profileHandler.UpdateUserFarmData)

	// --- Records ---
	farms := api.Group("/farms", session)
	farms.POST("", farmHandler.Create)
	farms.GET("", farmHandler.List)
	farms.GET("/:id", farmHandler.Get)
	farms.PUT("/:id", farmHandler.Update)
	farms.DELETE("/:id", farmHandler.Delete)

	alerts := api.Group("/alerts", session)
	alerts.POST("", alertHandler.Create, staffOnly)
	alerts.GET("", alertHandler.List)
	alerts.GET("/:id", alertHandler.Get)
	alerts.PUT("/:id", alertHandler.Update, staffOnly)
	alerts.DELETE("/:id", alertHandler.Delete, staffOnly)

	compliance := api.Group("/compliance", session)
	compliance.POST("", complianceHandler.Create)
	compliance.GET("", complianceHandler.List)
	compliance.GET("/:id", complianceHandler.Get)
	compliance.PUT("/:id", complianceHandler.Update)
	compliance.DELETE("/:id", complianceHandler.Delete)

	feedback := api.Group("/feedback", session)
	feedback.POST("", feedbackHandler.Submit)
	feedback.GET("", feedbackHandler.List, adminOnly)
	feedback.GET("/:id", feedbackHandler.Get)
	feedback.PUT("/:id", feedbackHandler.Update)
	feedback.DELETE("/:id", feedbackHandler.Delete)

	assessments := api.Group("/assessments", session)
	assessments.POST("", assessmentHandler.Assess)
	assessments.GET("", assessmentHandler.List)
	assessments.GET("/:id", assessmentHandler.Get)

	return e
}

func bodyLimit(n int64) echo.MiddlewareFunc {
	return echomiddleware.BodyLimit(fmt.Sprintf("%dB", n))
}
