// Package server wires the platform services and HTTP surface together.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"perf360/internal/domain/audit"
	"perf360/internal/domain/auth"
	"perf360/internal/domain/dashboard"
	"perf360/internal/domain/directory"
	"perf360/internal/domain/evaluation"
	"perf360/internal/domain/notifications"
	"perf360/internal/domain/reports"
	"perf360/internal/platform/cache"
	"perf360/internal/platform/config"
	cryptoutil "perf360/internal/platform/crypto"
	"perf360/internal/platform/email"
	"perf360/internal/platform/metrics"
	audithandler "perf360/internal/transport/http/handlers/audit"
	authhandler "perf360/internal/transport/http/handlers/auth"
	dashboardhandler "perf360/internal/transport/http/handlers/dashboard"
	directoryhandler "perf360/internal/transport/http/handlers/directory"
	evaluationshandler "perf360/internal/transport/http/handlers/evaluations"
	metricshandler "perf360/internal/transport/http/handlers/metrics"
	notificationshandler "perf360/internal/transport/http/handlers/notifications"
	reportshandler "perf360/internal/transport/http/handlers/reports"
	"perf360/internal/transport/http/middleware"
)

type Server struct {
	Router *chi.Mux
	cache  *cache.Redis
}

// New assembles every service against the shared pool and cache and returns
// the ready-to-serve router.
func New(cfg config.Config, pool *pgxpool.Pool) (*Server, error) {
	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	redisCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, collector)
	cryptoService, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("init encryption: %w", err)
	}

	authStore := auth.NewStore(pool)
	authService := auth.NewService(authStore)
	directoryService := directory.NewService(directory.NewStore(pool))
	auditService := audit.New(pool)

	mailer := email.New(cfg)
	notificationService := notifications.NewService(notifications.NewStore(pool), mailer, authStore)

	evaluationStore := evaluation.NewStore(pool)
	evaluationService := evaluation.NewService(
		evaluationStore, directoryService, redisCache, notificationService,
		cfg.CacheListTTL, cfg.CacheEntityTTL,
	)
	dashboardService := dashboard.NewService(evaluationStore, directoryService, redisCache, cfg.CacheDashboardTTL)
	reportService := reports.New(directoryService, cryptoService, "storage/reports")

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Metrics(collector))
	if cfg.RateLimitPerMinute > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(ar chi.Router) {
			if cfg.RateLimitPerMinute > 0 {
				ar.Use(middleware.AuthRateLimit(cfg.RateLimitPerMinute, time.Minute))
			}
			authhandler.NewHandler(authService, cfg.JWTSecret, cryptoService).RegisterRoutes(ar)
		})

		directoryhandler.NewHandler(directoryService).RegisterRoutes(r)
		evaluationshandler.NewHandler(evaluationService, auditService).RegisterRoutes(r)
		dashboardhandler.NewHandler(dashboardService).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationService).RegisterRoutes(r)
		reportshandler.NewHandler(reportService, evaluationService).RegisterRoutes(r)
		audithandler.NewHandler(auditService).RegisterRoutes(r)
		metricshandler.NewHandler(collector).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &Server{Router: router, cache: redisCache}, nil
}

func (s *Server) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// spaHandler serves the built frontend, falling back to index.html for
// client-side routes.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
