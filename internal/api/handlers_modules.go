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

func (h *Handler) listModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.store.ListModules(r.Context())
	if err != nil {
		storeFailure(w, r, "list_modules", "Failed to fetch modules", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"modules": modules})
}

func (h *Handler) createModule(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.gate.DecodeAndValidate(w, r, moduleCreateRules)
	if !ok {
		return
	}

	module, err := h.store.CreateModule(r.Context(),
		payloadString(payload, "code"),
		payloadString(payload, "name"),
		payloadString(payload, "description"))
	if err != nil {
		storeFailure(w, r, "create_module", "Failed to create module", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceCreated, "module", module.ID.String())
	respond(w, http.StatusCreated, map[string]any{"module": module})
}

func (h *Handler) getModule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "module")
	if !ok {
		return
	}

	module, err := h.store.GetModule(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Module not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "get_module", "Failed to fetch module", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"module": module})
}

func (h *Handler) updateModule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "module")
	if !ok {
		return
	}
	payload, ok := h.gate.DecodeAndValidate(w, r, moduleUpdateRules)
	if !ok {
		return
	}
	if len(payload) == 0 {
		respondError(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	module, err := h.store.UpdateModule(r.Context(), id, payload)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Module not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "update_module", "Failed to update module", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceUpdated, "module", id.String())
	respond(w, http.StatusOK, map[string]any{"module": module})
}

func (h *Handler) deleteModule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "module")
	if !ok {
		return
	}

	err := h.store.DeleteModule(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Module not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "delete_module", "Failed to delete module", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceDeleted, "module", id.String())
	respondSuccess(w)
}

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.store.ListAssignments(r.Context())
	if err != nil {
		storeFailure(w, r, "list_assignments", "Failed to fetch module assignments", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"assignments": assignments})
}

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.gate.DecodeAndValidate(w, r, assignmentCreateRules)
	if !ok {
		return
	}

	moduleID, okModule := payloadUUID(payload, "module_id")
	facultyID, okFaculty := payloadUUID(payload, "faculty_id")
	departmentID, okDepartment := payloadUUID(payload, "department_id")
	if !okModule || !okFaculty || !okDepartment {
		respondError(w, http.StatusBadRequest, "Invalid assignment reference ID format")
		return
	}
	semesterID, okSemester := payload["semester_id"].(float64)
	if !okSemester {
		respondError(w, http.StatusBadRequest, "semester_id must be of type number")
		return
	}

	assignment, err := h.store.CreateAssignment(r.Context(), moduleID, facultyID, departmentID, int64(semesterID))
	if errors.Is(err, store.ErrDuplicate) {
		respondError(w, http.StatusBadRequest, "This assignment already exists")
		return
	}
	if err != nil {
		storeFailure(w, r, "create_assignment", "Failed to create module assignment", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceCreated, "module_assignment", assignment.ID.String())
	respond(w, http.StatusCreated, map[string]any{"assignment": assignment})
}

func (h *Handler) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "assignment")
	if !ok {
		return
	}

	err := h.store.DeleteAssignment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Assignment not found")
		return
	}
	if err != nil {
		storeFailure(w, r, "delete_assignment", "Failed to delete module assignment", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceDeleted, "module_assignment", id.String())
	respondSuccess(w)
}
