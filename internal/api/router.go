package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/anvaya-ai/anvaya/internal/api/handlers"
	mw "github.com/anvaya-ai/anvaya/internal/api/middleware"
	"github.com/anvaya-ai/anvaya/internal/config"
	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/anvaya-ai/anvaya/internal/embedding"
	"github.com/anvaya-ai/anvaya/internal/ingest"
	"github.com/anvaya-ai/anvaya/internal/llm"
	"github.com/anvaya-ai/anvaya/internal/service"
	"github.com/anvaya-ai/anvaya/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and request counters for lifecycle management.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	projectStore := store.NewProjectStore(db)
	stakeholderStore := store.NewStakeholderStore(db)
	factStore := store.NewFactStore(db)
	contradictionStore := store.NewContradictionStore(db)
	resolutionStore := store.NewResolutionStore(db)

	// External clients via provider factory
	var oracleClient domain.OracleClient
	var embeddingClient domain.EmbeddingClient

	oracleClient, err := llm.NewClient(config.OracleProvider(), config.OracleAPIKey())
	if err != nil {
		logger.Warn("oracle client initialization failed", zap.String("provider", config.OracleProvider()), zap.Error(err))
	} else {
		logger.Info("oracle client initialized", zap.String("provider", config.OracleProvider()))
	}

	embeddingClient, err = embedding.NewClient(config.EmbeddingProvider(), config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", config.EmbeddingProvider()), zap.Error(err))
		embeddingClient = nil
	} else {
		logger.Info("embedding client initialized", zap.String("provider", config.EmbeddingProvider()))
	}

	var ingestor domain.FileIngestor
	if url := config.FileIngestURL(); url != "" {
		ingestor = ingest.NewHTTPClient(url)
	} else {
		logger.Warn("FILE_INGEST_URL not set, using mock file ingestor")
		ingestor = ingest.NewMockClient()
	}

	// Services
	projectSvc := service.NewProjectService(projectStore, ingestor, logger)
	extractionSvc := service.NewExtractionService(projectStore, stakeholderStore, factStore, oracleClient, embeddingClient, logger)
	conflictSvc := service.NewConflictService(projectStore, stakeholderStore, factStore, contradictionStore, oracleClient, logger)
	resolutionSvc := service.NewResolutionService(projectStore, factStore, contradictionStore, resolutionStore, logger)
	synthesisSvc := service.NewSynthesisService(projectStore, stakeholderStore, factStore, resolutionStore, oracleClient, logger)

	// Handlers
	projectHandler := handlers.NewProjectHandler(projectSvc)
	extractionHandler := handlers.NewExtractionHandler(extractionSvc)
	conflictHandler := handlers.NewConflictHandler(conflictSvc)
	resolutionHandler := handlers.NewResolutionHandler(resolutionSvc)
	synthesisHandler := handlers.NewSynthesisHandler(synthesisSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", projectHandler.Create)
			r.Get("/user/{userId}", projectHandler.ListByUser)

			r.Route("/{projectId}", func(r chi.Router) {
				r.Get("/", projectHandler.GetByID)
				r.Put("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)
				r.Post("/files", projectHandler.AttachFiles)
				// Route name kept for client compatibility.
				r.Post("/increament-status", projectHandler.AdvanceStage)

				r.Post("/stakeholders", extractionHandler.MapStakeholders)
				r.Get("/stakeholders", extractionHandler.ListStakeholders)
				r.Post("/map-facts", extractionHandler.MapFacts)
				r.Get("/facts", extractionHandler.ListFacts)
				r.Get("/facts/search", extractionHandler.SearchFacts)

				r.Post("/find-contradictions", conflictHandler.Find)
				r.Get("/contradictions", conflictHandler.List)

				r.Post("/resolve-contradiction", resolutionHandler.Resolve)
				r.Get("/resolutions", resolutionHandler.List)

				r.Post("/synthesize", synthesisHandler.Synthesize)
			})
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.ProjectStore       = (*store.ProjectStore)(nil)
	_ domain.StakeholderStore   = (*store.StakeholderStore)(nil)
	_ domain.FactStore          = (*store.FactStore)(nil)
	_ domain.ContradictionStore = (*store.ContradictionStore)(nil)
	_ domain.ResolutionStore    = (*store.ResolutionStore)(nil)
	_ domain.OracleClient       = (*llm.Client)(nil)
	_ domain.OracleClient       = (*llm.MockClient)(nil)
	_ domain.EmbeddingClient    = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient    = (*embedding.MockClient)(nil)
	_ domain.FileIngestor       = (*ingest.HTTPClient)(nil)
	_ domain.FileIngestor       = (*ingest.MockClient)(nil)
)
