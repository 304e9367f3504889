package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/database"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/events"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/handler"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/prices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

const requestTimeout = 60 * time.Second

// Dependencies are the services the routes are bound to.
type Dependencies struct {
	Portfolio *portfolio.Service
	Evaluator *portfolio.Evaluator
	Refresher *prices.Refresher
	Hub       *events.Hub
	Ready     func(ctx context.Context) error
}

// DefaultDependencies wires everything to database.MainDB.
func DefaultDependencies(hub *events.Hub) Dependencies {
	return Dependencies{
		Portfolio: portfolio.DefaultService(hub),
		Evaluator: portfolio.DefaultEvaluator(),
		Refresher: prices.DefaultRefresher(prices.GetConfig(), hub),
		Hub:       hub,
		Ready: func(ctx context.Context) error {
			return database.Ready(ctx, database.MainDB)
		},
	}
}

func NewRouter(config *Config, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// === Global Middleware ===
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", handler.HealthHandler(deps.Ready))
	r.Get("/ws/events", deps.Hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Route("/position-sets", func(r chi.Router) {
			r.Get("/", handler.ListPositionSetsHandler(deps.Portfolio))
			r.Post("/import", handler.ImportPositionSetHandler(deps.Portfolio))
			r.Post("/{id}/activate", handler.ActivatePositionSetHandler(deps.Portfolio))
			r.Delete("/{id}", handler.DeletePositionSetHandler(deps.Portfolio))
			r.Get("/{id}/export", handler.ExportPositionSetHandler(deps.Portfolio))
		})

		r.Post("/positions/update", handler.UpdatePositionsHandler(deps.Portfolio))
		r.Get("/demo-status", handler.DemoStatusHandler(deps.Portfolio))

		r.Get("/historical-prices", handler.HistoricalPricesHandler())
		r.Get("/historical-data/status", handler.HistoricalDataStatusHandler(deps.Evaluator))
		r.Post("/historical-data/refresh", handler.RefreshHistoricalDataHandler(deps.Refresher))

		r.Get("/brokers", handler.ListBrokersHandler())
		r.Get("/brokers/{name}", handler.BrokerHandler())
		r.Get("/currencies/{code}", handler.CurrencyHandler())
	})

	return r
}

// StartServer serves router until SIGINT or SIGTERM, then shuts down gracefully.
func StartServer(port string, router http.Handler) {
	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

// requestID reuses an incoming X-Request-Id or assigns a new uuid.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.WithFields(logger.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}).Info("HTTP request")
	})
}
