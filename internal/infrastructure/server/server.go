package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/arrangemylist/planner/docs"
	httpHandlers "github.com/arrangemylist/planner/internal/adapters/http"
	"github.com/arrangemylist/planner/internal/adapters/repository"
	"github.com/arrangemylist/planner/internal/application/services"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/config"
	"github.com/arrangemylist/planner/internal/infrastructure/database"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	db       *database.DB
	registry *prometheus.Registry
	auth     *services.AuthService
	janitor  *services.SessionJanitor
}

// CustomValidator wraps the validator. Requests that carry their own
// user-facing message report it instead of the field breakdown.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		if m, ok := i.(interface{ ValidationMessage() string }); ok {
			return entities.Validation(m.ValidationMessage())
		}
		return err
	}
	return nil
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	taskRepo := repository.NewTaskRepository(db.DB)
	noteRepo := repository.NewNoteRepository(db.DB)
	eventRepo := repository.NewEventRepository(db.DB)

	// Initialize services
	authService := services.NewAuthService(userRepo, sessionRepo, cfg.Session, cfg.Security.BcryptCost, appLogger)
	profileService := services.NewProfileService(userRepo, authService, appLogger)
	taskService := services.NewTaskService(taskRepo, appLogger)
	noteService := services.NewNoteService(noteRepo, appLogger)
	calendarService := services.NewCalendarService(eventRepo, cfg.Calendar.Location(), appLogger)

	// Initialize handlers
	handlers := routeHandlers{
		auth:     httpHandlers.NewAuthHandler(authService, appLogger),
		profile:  httpHandlers.NewProfileHandler(profileService, appLogger),
		tasks:    httpHandlers.NewTaskHandler(taskService, appLogger),
		notes:    httpHandlers.NewNoteHandler(noteService, appLogger),
		calendar: httpHandlers.NewCalendarHandler(calendarService, appLogger),
	}

	server := &Server{
		echo:     e,
		config:   cfg,
		logger:   appLogger.WithComponent("server"),
		db:       db,
		registry: prometheus.NewRegistry(),
		auth:     authService,
		janitor:  services.NewSessionJanitor(sessionRepo, cfg.Session.CleanupInterval, appLogger),
	}

	server.setupMiddleware()
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}
	server.setupRoutes(handlers)

	return server, nil
}

type routeHandlers struct {
	auth     *httpHandlers.AuthHandler
	profile  *httpHandlers.ProfileHandler
	tasks    *httpHandlers.TaskHandler
	notes    *httpHandlers.NoteHandler
	calendar *httpHandlers.CalendarHandler
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			reqLogger := s.logger.WithRequestID(values.RequestID)
			latency := float64(values.Latency.Nanoseconds()) / 1000000

			if values.Error != nil {
				reqLogger.WithError(values.Error).Warnw("HTTP request failed",
					"method", values.Method,
					"uri", values.URI,
					"status", values.Status,
					"latency_ms", latency,
					"remote_ip", values.RemoteIP,
				)
				return nil
			}

			reqLogger.LogHTTPRequest(values.Method, values.URI, values.UserAgent, values.RemoteIP, values.Status, latency)
			return nil
		},
	}))

	// CORS middleware; the browser client sends the session cookie.
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	// Rate limiting middleware
	if s.config.Security.RateLimitRequests > 0 {
		window := s.config.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		perSecond := rate.Limit(float64(s.config.Security.RateLimitRequests) / window.Seconds())
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{Rate: perSecond, Burst: s.config.Security.RateLimitRequests, ExpiresIn: window},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Rate limit identifier missing"})
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
			},
		}))
	}

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	if s.config.Server.RequestTimeout > 0 {
		s.echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: s.config.Server.RequestTimeout,
		}))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h routeHandlers) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	api := s.echo.Group("/api")
	requireSession := s.requireSession()

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/logout", h.auth.Logout)
	authGroup.GET("/me", h.auth.Me)

	// Profile routes
	profileGroup := api.Group("/profile", requireSession)
	profileGroup.GET("", h.profile.GetProfile)
	profileGroup.PUT("", h.profile.UpdateProfile)
	profileGroup.PUT("/password", h.profile.ChangePassword)

	// Task routes
	taskGroup := api.Group("/tasks", requireSession)
	taskGroup.GET("", h.tasks.ListTasks)
	taskGroup.POST("", h.tasks.CreateTask)
	taskGroup.PUT("/reorder/:id", h.tasks.ReorderTask)
	taskGroup.GET("/:id", h.tasks.GetTask)
	taskGroup.PUT("/:id", h.tasks.UpdateTask)
	taskGroup.DELETE("/:id", h.tasks.DeleteTask)

	// Note routes
	noteGroup := api.Group("/notes", requireSession)
	noteGroup.GET("", h.notes.ListNotes)
	noteGroup.POST("", h.notes.CreateNote)
	noteGroup.GET("/:id", h.notes.GetNote)
	noteGroup.PUT("/:id", h.notes.UpdateNote)
	noteGroup.PATCH("/:id/pin", h.notes.TogglePin)
	noteGroup.DELETE("/:id", h.notes.DeleteNote)

	// Calendar routes
	calendarGroup := api.Group("/calendar", requireSession)
	calendarGroup.GET("", h.calendar.ListEvents)
	calendarGroup.POST("", h.calendar.CreateEvent)
	calendarGroup.GET("/:id", h.calendar.GetEvent)
	calendarGroup.PUT("/:id", h.calendar.UpdateEvent)
	calendarGroup.DELETE("/:id", h.calendar.DeleteEvent)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	s.registry.MustRegister(
		requestsTotal,
		requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			// Errors are rendered after this returns, so read the code off the error.
			status := c.Response().Status
			if err != nil {
				status = statusFor(err)
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(time.Since(start).Seconds())

			return err
		}
	})

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// Registry exposes the metrics registry so client-side collectors can share it
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.db.HealthCheck(c.Request().Context()); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	if version, dirty, err := s.db.MigrationVersion(); err == nil {
		checks["migrations"] = map[string]interface{}{
			"version": version,
			"dirty":   dirty,
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.HealthCheck(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start serves on address and runs the session janitor until ctx is done
// or the listener fails.
func (s *Server) Start(ctx context.Context, address string) error {
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.janitor.Run(janitorCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Starting server", "address", address)
		errCh <- s.echo.Start(address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}
