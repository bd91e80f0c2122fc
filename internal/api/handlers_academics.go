// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package api

import (
	"net/http"
	"strconv"

	"github.com/kuppihub/kuppi-admin/internal/audit"
)

func (h *Handler) listFaculties(w http.ResponseWriter, r *http.Request) {
	faculties, err := h.store.ListFaculties(r.Context())
	if err != nil {
		storeFailure(w, r, "list_faculties", "Failed to fetch faculties", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"faculties": faculties})
}

func (h *Handler) createFaculty(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.gate.DecodeAndValidate(w, r, facultyCreateRules)
	if !ok {
		return
	}

	faculty, err := h.store.CreateFaculty(r.Context(), payloadString(payload, "name"))
	if err != nil {
		storeFailure(w, r, "create_faculty", "Failed to create faculty", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceCreated, "faculty", faculty.ID.String())
	respond(w, http.StatusCreated, map[string]any{"faculty": faculty})
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.store.ListDepartments(r.Context())
	if err != nil {
		storeFailure(w, r, "list_departments", "Failed to fetch departments", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"departments": departments})
}

func (h *Handler) createDepartment(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.gate.DecodeAndValidate(w, r, departmentCreateRules)
	if !ok {
		return
	}

	facultyID, ok := payloadUUID(payload, "faculty_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid faculty ID format")
		return
	}

	department, err := h.store.CreateDepartment(r.Context(), payloadString(payload, "name"), facultyID)
	if err != nil {
		storeFailure(w, r, "create_department", "Failed to create department", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceCreated, "department", department.ID.String())
	respond(w, http.StatusCreated, map[string]any{"department": department})
}

func (h *Handler) listSemesters(w http.ResponseWriter, r *http.Request) {
	semesters, err := h.store.ListSemesters(r.Context())
	if err != nil {
		storeFailure(w, r, "list_semesters", "Failed to fetch semesters", err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"semesters": semesters})
}

func (h *Handler) createSemester(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.gate.DecodeAndValidate(w, r, semesterCreateRules)
	if !ok {
		return
	}

	semester, err := h.store.CreateSemester(r.Context(), payloadString(payload, "name"))
	if err != nil {
		storeFailure(w, r, "create_semester", "Failed to create semester", err)
		return
	}

	h.gate.RecordChange(r.Context(), r, audit.TypeResourceCreated, "semester", strconv.FormatInt(semester.ID, 10))
	respond(w, http.StatusCreated, map[string]any{"semester": semester})
}
