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

	"github.com/google/uuid"

	"github.com/kuppihub/kuppi-admin/internal/models"
)

// userUpdatable is the PATCH field allow-list for users. Anything else
// in the request body, including provider_uid, is dropped.
var userUpdatable = []string{
	"display_name", "email", "is_active", "role", "photo_url",
	"is_approved_for_kuppies",
}

const userSelect = `
	SELECT id, provider_uid, email, display_name, photo_url, role,
	       is_active, is_approved_for_kuppies, created_at, updated_at
	FROM users`

// ListUsers returns every user, newest account first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.conn.QueryContext(ctx, userSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.ProviderUID, &u.Email, &u.DisplayName, &u.PhotoURL,
			&u.Role, &u.IsActive, &u.IsApprovedForKuppies, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser returns one user by ID or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.conn.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id).
		Scan(&u.ID, &u.ProviderUID, &u.Email, &u.DisplayName, &u.PhotoURL,
			&u.Role, &u.IsActive, &u.IsApprovedForKuppies, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpdateUser applies allow-listed fields to a user and returns the
// updated row.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error) {
	if err := s.updateAllowListed(ctx, "users", id.String(), fields, userUpdatable); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes one user by ID.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
