package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hrpayroll/internal/domain/attendance"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/domain/auth"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/domain/leave"
	"hrpayroll/internal/domain/payroll"
	"hrpayroll/internal/domain/reports"
	"hrpayroll/internal/platform/config"
	"hrpayroll/internal/platform/metrics"
	"hrpayroll/internal/platform/store"
	"hrpayroll/internal/transport/http/api"
	attendancehandler "hrpayroll/internal/transport/http/handlers/attendance"
	audithandler "hrpayroll/internal/transport/http/handlers/audit"
	authhandler "hrpayroll/internal/transport/http/handlers/auth"
	corehandler "hrpayroll/internal/transport/http/handlers/core"
	leavehandler "hrpayroll/internal/transport/http/handlers/leave"
	payrollhandler "hrpayroll/internal/transport/http/handlers/payroll"
	reportshandler "hrpayroll/internal/transport/http/handlers/reports"
	"hrpayroll/internal/transport/http/middleware"
)

type Services struct {
	Auth       *auth.Service
	Core       *core.Service
	Attendance *attendance.Service
	Leave      *leave.Service
	Payroll    *payroll.Service
	Audit      *audit.Service
	Reports    *reports.Service
}

// NewRouter wires middleware, ops endpoints and the /api/v1 routes.
func NewRouter(cfg config.Config, st store.Store, svc Services, collector *metrics.Collector) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Auth(svc.Auth))
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, map[string]string{"status": "ok"}, middleware.GetRequestID(r.Context()))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "not_ready", "store not ready", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]string{"status": "ready"}, middleware.GetRequestID(r.Context()))
	})
	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", middleware.GetRequestID(r.Context()))
	})

	loginLimit := middleware.LoginRateLimit(cfg.RateLimitPerMinute, collector.RateLimited)

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(svc.Auth, cfg.IsProduction(), loginLimit).RegisterRoutes(r)
		corehandler.NewHandler(svc.Core).RegisterRoutes(r)
		attendancehandler.NewHandler(svc.Attendance).RegisterRoutes(r)
		leavehandler.NewHandler(svc.Leave).RegisterRoutes(r)
		payrollhandler.NewHandler(svc.Payroll).RegisterRoutes(r)
		audithandler.NewHandler(svc.Audit).RegisterRoutes(r)
		reportshandler.NewHandler(svc.Reports).RegisterRoutes(r)
	})

	return router
}
