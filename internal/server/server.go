// Package server exposes the planner over a small JSON HTTP API.
//
// Endpoints:
//   - GET    /api/health
//   - GET    /api/items/search?q=...&limit=...
//   - POST   /api/plans                build a plan and persist it
//   - GET    /api/plans                list stored plans
//   - GET    /api/plans/{id}           load one plan
//   - DELETE /api/plans/{id}           delete one plan
//   - GET    /api/plans/{id}/materials flattened purchase list
//   - POST   /api/plans/{id}/shopping  shopping plans for the materials
//
// Failures cross the boundary as a JSON error envelope with the pkg/errors
// code, never as a bare 500 with a stack trace.
package server

import (
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mveldt/craftplan/pkg/config"
	"github.com/mveldt/craftplan/pkg/market"
	"github.com/mveldt/craftplan/pkg/metadata"
	"github.com/mveldt/craftplan/pkg/plan"
	"github.com/mveldt/craftplan/pkg/shopping"
	"github.com/mveldt/craftplan/pkg/store"
	"github.com/mveldt/craftplan/pkg/worlds"
)

// Server wires the planner subsystems behind HTTP handlers.
type Server struct {
	cfg     config.Config
	meta    metadata.Provider
	market  market.Store
	worlds  worlds.Provider
	plans   store.Store
	builder *plan.Builder
	planner *shopping.Planner
	log     *charmlog.Logger
}

// New assembles a Server from its collaborators.
func New(cfg config.Config, meta metadata.Provider, marketStore market.Store, worldsProvider worlds.Provider, plans store.Store, logger *charmlog.Logger) *Server {
	if logger == nil {
		logger = charmlog.Default()
	}
	shoppingCfg := shopping.Config{
		MaxPriceMultiplier:    cfg.Shopping.MaxPriceMultiplier,
		SplitPurchase:         cfg.Shopping.SplitPurchase,
		SplitSavingsThreshold: cfg.Shopping.SplitSavingsThreshold,
	}
	return &Server{
		cfg:     cfg,
		meta:    meta,
		market:  marketStore,
		worlds:  worldsProvider,
		plans:   plans,
		builder: plan.NewBuilder(meta),
		planner: shopping.NewPlanner(marketStore, worldsProvider, shoppingCfg),
		log:     logger,
	}
}

// Handler builds the routed http.Handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/items/search", s.handleSearch)

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", s.handleCreatePlan)
			r.Get("/", s.handleListPlans)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPlan)
				r.Delete("/", s.handleDeletePlan)
				r.Get("/materials", s.handleMaterials)
				r.Post("/shopping", s.handleShopping)
			})
		})
	})
	return r
}

// ListenAndServe runs the API on the configured address until the server
// errors out.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("serving API", "addr", s.cfg.Server.Addr)
	return srv.ListenAndServe()
}

// requestLogger logs one line per request with status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
