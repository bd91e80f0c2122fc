// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/kuppihub/kuppi-admin/internal/audit"
	"github.com/kuppihub/kuppi-admin/internal/store"
)

func (h *Handler) listKuppis(w http.ResponseWriter, r *http.Request) {
	kuppis, err := h.store.ListKuppis(r.Context())
	if err != nil {
		storeFailure(w, r, "list_kuppis", "Failed to fetch kuppis", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"kuppis": kuppis})
}

func (h *Handler) createKuppi(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.gate.DecodeAndValidate(w, r, kuppiCreateRules)
	if !ok {
		return
	}

	moduleID, ok := payloadUUID(payload, "module_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid module ID format")
		return
	}

	youtubeLinks, ok := payloadStringSlice(payload, "youtube_links")
	if !ok || len(youtubeLinks) == 0 {
		respondError(w, http.StatusBadRequest, "youtube_links must be a non-empty array of strings")
		return
	}
	telegramLinks, ok := payloadStringSlice(payload, "telegram_links")
	if !ok {
		respondError(w, http.StatusBadRequest, "telegram_links must be an array of strings")
		return
	}
	materialURLs, ok := payloadStringSlice(payload, "material_urls")
	if !ok {
		respondError(w, http.StatusBadRequest, "material_urls must be an array of strings")
		return
	}

	var addedBy *uuid.UUID
	if raw := payloadString(payload, "student_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid student ID format")
			return
		}
		addedBy = &id
	}

	kuppi, err := h.store.CreateKuppi(r.Context(), store.NewKuppi{
		ModuleID:      moduleID,
		Title:         payloadString(payload, "title"),
		Description:   payloadString(payload, "description"),
		YouTubeLinks:  youtubeLinks,
		TelegramLinks: telegramLinks,
		MaterialURLs:  materialURLs,
		LanguageCode:  payloadString(payload, "language_code"),
		AddedByUserID: addedBy,
	})
	if err != nil {
		storeFailure(w, r, "create_kuppi", "Failed to create kuppi", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceCreated, "kuppi", kuppi.ID.String())
	respond(w, http.StatusCreated, map[string]any{"kuppi": kuppi})
}

func (h *Handler) getKuppi(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "kuppi")
	if !ok {
		return
	}

	kuppi, err := h.store.GetKuppi(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Kuppi not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "get_kuppi", "Failed to fetch kuppi", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"kuppi": kuppi})
}

func (h *Handler) updateKuppi(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "kuppi")
	if !ok {
		return
	}
	payload, ok := h.gate.DecodeAndValidate(w, r, kuppiUpdateRules)
	if !ok {
		return
	}
	if len(payload) == 0 {
		respondError(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	kuppi, err := h.store.UpdateKuppi(r.Context(), id, payload)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Kuppi not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "update_kuppi", "Failed to update kuppi", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceUpdated, "kuppi", id.String())
	respond(w, http.StatusOK, map[string]any{"kuppi": kuppi})
}

func (h *Handler) deleteKuppi(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "kuppi")
	if !ok {
		return
	}

	err := h.store.DeleteKuppi(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Kuppi not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "delete_kuppi", "Failed to delete kuppi", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceDeleted, "kuppi", id.String())
	respondSuccess(w)
}
