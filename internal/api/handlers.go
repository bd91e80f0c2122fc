// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package api implements the admin HTTP handlers. Every route under
// /api/v1 sits behind the gate; handlers receive pre-sanitized
// payloads and translate store results into the response envelopes the
// dashboard expects.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kuppihub/kuppi-admin/internal/gate"
	"github.com/kuppihub/kuppi-admin/internal/logging"
	"github.com/kuppihub/kuppi-admin/internal/metrics"
	"github.com/kuppihub/kuppi-admin/internal/models"
	"github.com/kuppihub/kuppi-admin/internal/store"
	"github.com/kuppihub/kuppi-admin/internal/validation"
)

// Store is the persistence surface the handlers consume.
type Store interface {
	Ping(ctx context.Context) error

	ListFaculties(ctx context.Context) ([]models.Faculty, error)
	CreateFaculty(ctx context.Context, name string) (*models.Faculty, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateDepartment(ctx context.Context, name string, facultyID uuid.UUID) (*models.Department, error)
	ListSemesters(ctx context.Context) ([]models.Semester, error)
	CreateSemester(ctx context.Context, name string) (*models.Semester, error)

	ListModules(ctx context.Context) ([]models.Module, error)
	GetModule(ctx context.Context, id uuid.UUID) (*models.Module, error)
	CreateModule(ctx context.Context, code, name, description string) (*models.Module, error)
	UpdateModule(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Module, error)
	DeleteModule(ctx context.Context, id uuid.UUID) error

	ListAssignments(ctx context.Context) ([]models.ModuleAssignment, error)
	CreateAssignment(ctx context.Context, moduleID, facultyID, departmentID uuid.UUID, semesterID int64) (*models.ModuleAssignment, error)
	DeleteAssignment(ctx context.Context, id uuid.UUID) error

	ListKuppis(ctx context.Context) ([]models.Kuppi, error)
	GetKuppi(ctx context.Context, id uuid.UUID) (*models.Kuppi, error)
	CreateKuppi(ctx context.Context, in store.NewKuppi) (*models.Kuppi, error)
	UpdateKuppi(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Kuppi, error)
	DeleteKuppi(ctx context.Context, id uuid.UUID) error

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	GetHierarchy(ctx context.Context) (*models.HierarchySnapshot, error)
	PutHierarchy(ctx context.Context, data map[string]any) (*models.HierarchySnapshot, error)
	GetStats(ctx context.Context) (*models.Stats, error)
}

// Handler serves the admin API.
type Handler struct {
	store Store
	gate  *gate.Gate
}

// NewHandler creates a Handler over the given store and gate.
func NewHandler(s Store, g *gate.Gate) *Handler {
	return &Handler{store: s, gate: g}
}

// respond writes a JSON response with the given status.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError writes the uniform error envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}

// respondSuccess writes the delete acknowledgment envelope.
func respondSuccess(w http.ResponseWriter) {
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

// storeFailure logs a store error, bumps the metric and writes the
// generic 500. Internal details never reach the client.
func storeFailure(w http.ResponseWriter, r *http.Request, operation, message string, err error) {
	metrics.StoreErrors.WithLabelValues(operation).Inc()
	logging.CtxErr(r.Context(), err).Str("operation", operation).Msg("store operation failed")
	respondError(w, http.StatusInternalServerError, message)
}

// pathUUID parses the {id} route parameter, writing the 400 response
// itself when the value is not a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, resource string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if !validation.IsValidUUID(raw) {
		respondError(w, http.StatusBadRequest, "Invalid "+resource+" ID format")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+resource+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// payloadString returns a string field from a sanitized payload.
func payloadString(payload map[string]any, field string) string {
	s, _ := payload[field].(string)
	return s
}

// payloadStringSlice converts an array field to []string. Returns
// ok=false when any element is not a string.
func payloadStringSlice(payload map[string]any, field string) ([]string, bool) {
	raw, present := payload[field]
	if !present {
		return nil, true
	}
	list, isArray := raw.([]any)
	if !isArray {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, isString := item.(string)
		if !isString {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// payloadUUID parses a UUID-patterned string field. The validation
// rules guarantee the pattern, so a parse failure means a rule is
// missing on the field.
func payloadUUID(payload map[string]any, field string) (uuid.UUID, bool) {
	raw, present := payload[field].(string)
	if !present {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
