// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kuppihub/kuppi-admin/internal/models"
)

// moduleUpdatable is the PATCH field allow-list for modules. Keys are
// request field names; they double as column names.
var moduleUpdatable = []string{"code", "name", "description"}

// ListModules returns every module ordered by code.
func (s *Store) ListModules(ctx context.Context) ([]models.Module, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, code, name, description, created_at, updated_at FROM modules ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	modules := []models.Module{}
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// GetModule returns one module by ID or ErrNotFound.
func (s *Store) GetModule(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	var m models.Module
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, code, name, description, created_at, updated_at FROM modules WHERE id = ?`,
		id).Scan(&m.ID, &m.Code, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return &m, nil
}

// CreateModule inserts a module and returns the stored row.
func (s *Store) CreateModule(ctx context.Context, code, name, description string) (*models.Module, error) {
	now := time.Now().UTC()
	m := models.Module{
		ID:          uuid.New(),
		Code:        code,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO modules (id, code, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Code, m.Name, m.Description, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}
	return &m, nil
}

// UpdateModule applies allow-listed fields to a module and returns the
// updated row. Unknown fields are ignored.
func (s *Store) UpdateModule(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Module, error) {
	if err := s.updateAllowListed(ctx, "modules", id.String(), fields, moduleUpdatable); err != nil {
		return nil, err
	}
	return s.GetModule(ctx, id)
}

// DeleteModule removes a module and its curriculum assignments.
func (s *Store) DeleteModule(ctx context.Context, id uuid.UUID) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Assignments go first so the curriculum never references a
	// missing module.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM module_assignments WHERE module_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete module assignments: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListAssignments returns every module assignment ordered by ID.
func (s *Store) ListAssignments(ctx context.Context) ([]models.ModuleAssignment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, module_id, faculty_id, department_id, semester_id, created_at
		 FROM module_assignments ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list module assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assignments := []models.ModuleAssignment{}
	for rows.Next() {
		var a models.ModuleAssignment
		if err := rows.Scan(&a.ID, &a.ModuleID, &a.FacultyID, &a.DepartmentID, &a.SemesterID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan module assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateAssignment inserts a curriculum assignment, returning
// ErrDuplicate when the same four-way combination already exists.
func (s *Store) CreateAssignment(ctx context.Context, moduleID, facultyID, departmentID uuid.UUID, semesterID int64) (*models.ModuleAssignment, error) {
	var existing string
	err := s.conn.QueryRowContext(ctx,
		`SELECT id FROM module_assignments
		 WHERE module_id = ? AND faculty_id = ? AND department_id = ? AND semester_id = ?`,
		moduleID, facultyID, departmentID, semesterID).Scan(&existing)
	if err == nil {
		return nil, ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check module assignment: %w", err)
	}

	a := models.ModuleAssignment{
		ID:           uuid.New(),
		ModuleID:     moduleID,
		FacultyID:    facultyID,
		DepartmentID: departmentID,
		SemesterID:   semesterID,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO module_assignments (id, module_id, faculty_id, department_id, semester_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.ModuleID, a.FacultyID, a.DepartmentID, a.SemesterID, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create module assignment: %w", err)
	}
	return &a, nil
}

// DeleteAssignment removes one assignment by ID.
func (s *Store) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM module_assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete module assignment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// updateAllowListed builds an UPDATE for the allow-listed fields present
// in the payload. Column names come from the fixed allow-list, never
// from the request, so the statement stays injection safe.
func (s *Store) updateAllowListed(ctx context.Context, table, id string, fields map[string]any, allowed []string) error {
	sets := make([]string, 0, len(allowed)+1)
	args := make([]any, 0, len(allowed)+2)
	for _, col := range allowed {
		if v, ok := fields[col]; ok {
			sets = append(sets, col+" = ?")
			args = append(args, v)
		}
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	//nolint:gosec // table and columns are compile-time constants
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
