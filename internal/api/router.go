// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kuppihub/kuppi-admin/internal/middleware"
	"github.com/kuppihub/kuppi-admin/internal/ratelimit"
)

// RouterConfig holds the router-level knobs.
type RouterConfig struct {
	CORSOrigins []string

	// GlobalRateLimit is the coarse per-IP requests-per-minute cap in
	// front of the gate's per-route windows. Zero disables it.
	GlobalRateLimit int

	ReadQuota   int
	WriteQuota  int
	DeleteQuota int
}

// Routes assembles the full HTTP surface: unguarded liveness and
// metrics endpoints, then the gated /api/v1 group.
func (h *Handler) Routes(cfg RouterConfig) chi.Router {
	if cfg.ReadQuota <= 0 {
		cfg.ReadQuota = ratelimit.ReadQuota
	}
	if cfg.WriteQuota <= 0 {
		cfg.WriteQuota = ratelimit.WriteQuota
	}
	if cfg.DeleteQuota <= 0 {
		cfg.DeleteQuota = ratelimit.DeleteQuota
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMetrics)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if cfg.GlobalRateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.GlobalRateLimit, time.Minute))
	}

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	read := h.gate.Protect(cfg.ReadQuota)
	write := h.gate.Protect(cfg.WriteQuota)
	remove := h.gate.Protect(cfg.DeleteQuota)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(read).Get("/faculties", h.listFaculties)
		r.With(write).Post("/faculties", h.createFaculty)

		r.With(read).Get("/departments", h.listDepartments)
		r.With(write).Post("/departments", h.createDepartment)

		r.With(read).Get("/semesters", h.listSemesters)
		r.With(write).Post("/semesters", h.createSemester)

		r.With(read).Get("/modules", h.listModules)
		r.With(write).Post("/modules", h.createModule)
		r.With(read).Get("/modules/{id}", h.getModule)
		r.With(write).Patch("/modules/{id}", h.updateModule)
		r.With(remove).Delete("/modules/{id}", h.deleteModule)

		r.With(read).Get("/module-assignments", h.listAssignments)
		r.With(write).Post("/module-assignments", h.createAssignment)
		r.With(remove).Delete("/module-assignments/{id}", h.deleteAssignment)

		r.With(read).Get("/kuppis", h.listKuppis)
		r.With(write).Post("/kuppis", h.createKuppi)
		r.With(read).Get("/kuppis/{id}", h.getKuppi)
		r.With(write).Patch("/kuppis/{id}", h.updateKuppi)
		r.With(remove).Delete("/kuppis/{id}", h.deleteKuppi)

		r.With(read).Get("/users", h.listUsers)
		r.With(read).Get("/users/{id}", h.getUser)
		r.With(write).Patch("/users/{id}", h.updateUser)
		r.With(remove).Delete("/users/{id}", h.deleteUser)

		r.With(read).Get("/hierarchy", h.getHierarchy)
		r.With(write).Put("/hierarchy", h.putHierarchy)

		r.With(read).Get("/stats", h.getStats)
	})

	return r
}

// healthz reports liveness and database reachability.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respond(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}
