// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kuppihub/kuppi-admin/internal/models"
)

// ListFaculties returns every faculty ordered by name.
func (s *Store) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM faculties ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list faculties: %w", err)
	}
	defer func() { _ = rows.Close() }()

	faculties := []models.Faculty{}
	for rows.Next() {
		var f models.Faculty
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan faculty: %w", err)
		}
		faculties = append(faculties, f)
	}
	return faculties, rows.Err()
}

// CreateFaculty inserts a faculty and returns the stored row.
func (s *Store) CreateFaculty(ctx context.Context, name string) (*models.Faculty, error) {
	f := models.Faculty{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO faculties (id, name, created_at) VALUES (?, ?, ?)`,
		f.ID, f.Name, f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create faculty: %w", err)
	}
	return &f, nil
}

// ListDepartments returns every department ordered by name.
func (s *Store) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, faculty_id, created_at FROM departments ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	departments := []models.Department{}
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.FacultyID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// CreateDepartment inserts a department under a faculty.
func (s *Store) CreateDepartment(ctx context.Context, name string, facultyID uuid.UUID) (*models.Department, error) {
	d := models.Department{
		ID:        uuid.New(),
		Name:      name,
		FacultyID: facultyID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO departments (id, name, faculty_id, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Name, d.FacultyID, d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return &d, nil
}

// ListSemesters returns every semester in creation order.
func (s *Store) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM semesters ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	semesters := []models.Semester{}
	for rows.Next() {
		var sem models.Semester
		if err := rows.Scan(&sem.ID, &sem.Name, &sem.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan semester: %w", err)
		}
		semesters = append(semesters, sem)
	}
	return semesters, rows.Err()
}

// CreateSemester inserts a semester and returns the stored row with its
// assigned serial ID.
func (s *Store) CreateSemester(ctx context.Context, name string) (*models.Semester, error) {
	sem := models.Semester{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO semesters (name, created_at) VALUES (?, ?) RETURNING id`,
		sem.Name, sem.CreatedAt).Scan(&sem.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create semester: %w", err)
	}
	return &sem, nil
}
