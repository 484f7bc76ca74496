package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/print-layout/internal/api"
	"github.com/eugenenazirov/print-layout/internal/config"
	"github.com/eugenenazirov/print-layout/internal/layout"
	"github.com/eugenenazirov/print-layout/internal/metrics"
	"github.com/eugenenazirov/print-layout/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	packer  layout.Packer
	metrics *metrics.Metrics
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetSchedule(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("failed to apply price schedule: %w", err)
	}

	packer := layout.New()
	m := metrics.New()
	handler := api.NewHandler(packer, store,
		api.WithMetrics(m),
		api.WithPage(cfg.Page, cfg.Padding),
		api.WithMaxCopies(cfg.MaxCopies),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler := BuildRootHandler(apiRouter, m.Handler())

	logger.Info("application configured",
		zap.Float64("page_width_cm", cfg.Page.Width),
		zap.Float64("page_height_cm", cfg.Page.Height),
		zap.Float64("padding_cm", cfg.Padding),
		zap.Int("price_tiers", len(cfg.Schedule.Tiers)),
		zap.Strings("paper_types", cfg.Schedule.PaperTypes()),
		zap.Strings("delivery_speeds", cfg.Schedule.DeliverySpeeds()),
	)

	return &App{
		storage: store,
		packer:  packer,
		metrics: m,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler mounts the API, the metrics endpoint and a service index.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(serviceIndex)
	}))

	return mux
}

var serviceIndex = struct {
	Service   string   `json:"service"`
	Endpoints []string `json:"endpoints"`
}{
	Service: "print-layout",
	Endpoints: []string{
		"GET /api/health",
		"GET /api/pricing",
		"PUT /api/pricing",
		"POST /api/quote",
		"POST /api/layout",
		"POST /api/layout/pdf",
		"GET /metrics",
	},
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
