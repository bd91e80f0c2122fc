// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kuppihub/kuppi-admin/internal/audit"
	"github.com/kuppihub/kuppi-admin/internal/hierarchy"
	"github.com/kuppihub/kuppi-admin/internal/store"
)

func (h *Handler) getHierarchy(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.GetHierarchy(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		// No snapshot yet: the dashboard expects an empty tree, not 404.
		respond(w, http.StatusOK, map[string]any{
			"hierarchy": map[string]any{"faculties": []any{}},
		})
		return
	}
	if err != nil {
		storeFailure(w, r, "get_hierarchy", "Failed to fetch hierarchy", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"hierarchy": snapshot.Data})
}

func (h *Handler) putHierarchy(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.gate.DecodeAndValidate(w, r, hierarchyPutRules)
	if !ok {
		return
	}

	normalized, err := hierarchy.Normalize(payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.store.PutHierarchy(r.Context(), normalized)
	if err != nil {
		storeFailure(w, r, "put_hierarchy", "Failed to update hierarchy", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceUpdated, "hierarchy", strconv.FormatInt(snapshot.ID, 10))
	respond(w, http.StatusOK, map[string]any{"hierarchy": snapshot.Data})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		storeFailure(w, r, "get_stats", "Failed to fetch stats", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"stats": stats})
}
