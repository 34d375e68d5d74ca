package api

import (
	"log/slog"
	"net/http"
	"time"

	_ "loantrack/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"loantrack/internal/api/handler"
	mw "loantrack/internal/api/middleware"
	"loantrack/internal/config"
	"loantrack/internal/domain/loan"
	"loantrack/internal/domain/payment"
)

func SetupRouter(loanService loan.LoanService, paymentService payment.PaymentService, tz *time.Location, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupLoanRoutes(router, loanService, paymentService, tz, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupLoanRoutes(router *chi.Mux, loanService loan.LoanService, paymentService payment.PaymentService, tz *time.Location, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(loanService, paymentService, tz, logger)
	authHandler := handler.NewAuthHandler(*cfg, logger)
	logger.Info("Route Config")
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	router.Route("/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", loanHandler.CreateLoan)
		r.Get("/", loanHandler.ListLoans)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", loanHandler.GetLoan)
			r.Delete("/", loanHandler.DeactivateLoan)
			r.Post("/installments/regenerate", loanHandler.RegenerateInstallments)
			r.Get("/payments", loanHandler.ListPayments)
		})
	})

	router.Route("/installments", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/{installmentID}/pay", loanHandler.PayInstallment)
		r.Patch("/{installmentID}", loanHandler.UpdateInstallment)
	})
}
