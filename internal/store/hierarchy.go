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
	"time"

	"github.com/goccy/go-json"

	"github.com/kuppihub/kuppi-admin/internal/models"
)

// GetHierarchy returns the latest hierarchy snapshot, or ErrNotFound
// when none has been stored yet.
func (s *Store) GetHierarchy(ctx context.Context) (*models.HierarchySnapshot, error) {
	var (
		snap models.HierarchySnapshot
		raw  string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, data, created_at, updated_at FROM faculty_hierarchy ORDER BY id DESC LIMIT 1`).
		Scan(&snap.ID, &raw, &snap.CreatedAt, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hierarchy: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &snap.Data); err != nil {
		return nil, fmt.Errorf("failed to decode hierarchy document: %w", err)
	}
	return &snap, nil
}

// PutHierarchy replaces the latest snapshot's document, or inserts the
// first snapshot when none exists.
func (s *Store) PutHierarchy(ctx context.Context, data map[string]any) (*models.HierarchySnapshot, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hierarchy document: %w", err)
	}

	now := time.Now().UTC()

	var currentID int64
	err = s.conn.QueryRowContext(ctx,
		`SELECT id FROM faculty_hierarchy ORDER BY id DESC LIMIT 1`).Scan(&currentID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = s.conn.QueryRowContext(ctx,
			`INSERT INTO faculty_hierarchy (data, created_at, updated_at) VALUES (?, ?, ?) RETURNING id`,
			string(encoded), now, now).Scan(&currentID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert hierarchy: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to find current hierarchy: %w", err)
	default:
		if _, err := s.conn.ExecContext(ctx,
			`UPDATE faculty_hierarchy SET data = ?, updated_at = ? WHERE id = ?`,
			string(encoded), now, currentID); err != nil {
			return nil, fmt.Errorf("failed to update hierarchy: %w", err)
		}
	}

	return s.GetHierarchy(ctx)
}
