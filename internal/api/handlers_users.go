// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package api

import (
	"errors"
	"net/http"

	"github.com/kuppihub/kuppi-admin/internal/audit"
	"github.com/kuppihub/kuppi-admin/internal/store"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		storeFailure(w, r, "list_users", "Failed to fetch users", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "user")
	if !ok {
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "get_user", "Failed to fetch user", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "user")
	if !ok {
		return
	}
	payload, ok := h.gate.DecodeAndValidate(w, r, userUpdateRules)
	if !ok {
		return
	}
	if len(payload) == 0 {
		respondError(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	user, err := h.store.UpdateUser(r.Context(), id, payload)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "update_user", "Failed to update user", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceUpdated, "user", id.String())
	respond(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "user")
	if !ok {
		return
	}

	err := h.store.DeleteUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "delete_user", "Failed to delete user", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceDeleted, "user", id.String())
	respondSuccess(w)
}
