package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/api/handler"
	mw "github.com/Net-Geometry/iworx-tnb-sub005/internal/api/middleware"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/config"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/core"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	corePool *pgxpool.Pool
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, coreDB *pgxpool.Pool, cfg *config.Config) *Server {
	services := core.NewServices(coreDB)

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		corePool: coreDB,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.corePool))

		// Workflow templates
		template := handler.NewWorkflowTemplate(s.services.Template)
		r.Get("/workflow-templates", template.List)
		r.Post("/workflow-templates", template.Create)
		r.Get("/workflow-templates/{id}", template.Get)
		r.Put("/workflow-templates/{id}", template.Update)
		r.Delete("/workflow-templates/{id}", template.Delete)
		r.Post("/workflow-templates/{id}/set-default", template.SetDefault)
		r.Post("/workflow-templates/{id}/activate", template.Activate)
		r.Post("/workflow-templates/{id}/deactivate", template.Deactivate)

		// Template steps
		step := handler.NewWorkflowStep(s.services.Step)
		r.Get("/workflow-templates/{templateID}/steps", step.ListByTemplate)
		r.Post("/workflow-templates/{templateID}/steps", step.Add)
		r.Get("/workflow-steps/{id}", step.Get)
		r.Put("/workflow-steps/{id}", step.Update)
		r.Delete("/workflow-steps/{id}", step.Delete)

		// Step role assignments
		r.Get("/workflow-steps/{stepID}/role-assignments", step.ListRoleAssignments)
		r.Post("/workflow-steps/{stepID}/role-assignments", step.AddRoleAssignment)
		r.Delete("/workflow-steps/{stepID}/role-assignments/{id}", step.DeleteRoleAssignment)

		// Step conditions
		r.Get("/workflow-steps/{stepID}/conditions", step.ListConditions)
		r.Post("/workflow-steps/{stepID}/conditions", step.AddCondition)
		r.Delete("/workflow-steps/{stepID}/conditions/{id}", step.DeleteCondition)

		// Workflow states
		state := handler.NewWorkflowState(s.services.State)
		r.Post("/workflow-states", state.Initialize)
		r.Get("/workflow-states/by-entity", state.GetByEntity)
		r.Get("/workflow-states/{id}", state.Get)
		r.Post("/workflow-states/{id}/transition", state.Transition)
		r.Post("/workflow-states/{id}/reassign", state.Reassign)
		r.Get("/workflow-states/{id}/progress", state.Progress)

		// Bulk backfill
		r.Post("/workflow-modules/{module}/bulk-initialize", state.BulkInitialize)

		// API keys
		apiKey := handler.NewAPIKey(s.services.APIKey)
		r.Get("/api-keys", apiKey.List)
		r.Post("/api-keys", apiKey.Create)
		r.Get("/api-keys/{id}", apiKey.Get)
		r.Delete("/api-keys/{id}", apiKey.Revoke)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.corePool.Ping(ctx); err != nil {
		checks["core_db"] = err.Error()
		healthy = false
	} else {
		checks["core_db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
