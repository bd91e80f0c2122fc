// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kuppihub/kuppi-admin/internal/models"
)

// GetStats assembles the moderation dashboard aggregates: entity
// counts, unapproved uploaders with their kuppi counts, and the ten
// newest kuppis awaiting approval.
func (s *Store) GetStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{
		PendingUsers:  []models.PendingUploader{},
		PendingKuppis: []models.PendingKuppi{},
	}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM users`, &stats.Users},
		{`SELECT COUNT(*) FROM modules`, &stats.Modules},
		{`SELECT COUNT(*) FROM videos WHERE is_kuppi = true`, &stats.Kuppis},
		{`SELECT COUNT(*) FROM videos WHERE is_kuppi = true AND is_approved = false`, &stats.PendingKuppisCount},
	}
	for _, c := range counts {
		if err := s.conn.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count for stats: %w", err)
		}
	}

	if err := s.pendingUploaders(ctx, stats); err != nil {
		return nil, err
	}
	if err := s.pendingKuppis(ctx, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// pendingUploaders finds users who have uploaded kuppis but are not yet
// approved to publish, with their upload counts.
func (s *Store) pendingUploaders(ctx context.Context, stats *models.Stats) error {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT u.id, u.email, u.display_name, u.photo_url, u.created_at,
		       COUNT(v.id) AS kuppi_count
		FROM users u
		JOIN videos v ON v.added_by_user_id = u.id
		WHERE u.is_approved_for_kuppies = false
		GROUP BY u.id, u.email, u.display_name, u.photo_url, u.created_at
		ORDER BY u.created_at DESC`)
	if err != nil {
		return fmt.Errorf("failed to list pending uploaders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var p models.PendingUploader
		if err := rows.Scan(&p.ID, &p.Email, &p.DisplayName, &p.PhotoURL, &p.CreatedAt, &p.KuppiCount); err != nil {
			return fmt.Errorf("failed to scan pending uploader: %w", err)
		}
		stats.PendingUsers = append(stats.PendingUsers, p)
	}
	return rows.Err()
}

// pendingKuppis lists the ten newest unapproved kuppis with module and
// uploader summaries.
func (s *Store) pendingKuppis(ctx context.Context, stats *models.Stats) error {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT v.id, v.title, v.module_id, v.created_at,
		       m.id, m.code, m.name,
		       u.id, u.email, u.display_name, u.photo_url
		FROM videos v
		LEFT JOIN modules m ON m.id = v.module_id
		LEFT JOIN users u ON u.id = v.added_by_user_id
		WHERE v.is_kuppi = true AND v.is_approved = false
		ORDER BY v.created_at DESC
		LIMIT 10`)
	if err != nil {
		return fmt.Errorf("failed to list pending kuppis: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			p          models.PendingKuppi
			moduleID   sql.NullString
			moduleCode sql.NullString
			moduleName sql.NullString
			userID     sql.NullString
			userEmail  sql.NullString
			userName   sql.NullString
			userPhoto  sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.ModuleID, &p.CreatedAt,
			&moduleID, &moduleCode, &moduleName,
			&userID, &userEmail, &userName, &userPhoto); err != nil {
			return fmt.Errorf("failed to scan pending kuppi: %w", err)
		}

		if moduleID.Valid {
			if id, err := uuid.Parse(moduleID.String); err == nil {
				p.Module = &models.ModuleRef{ID: id, Code: moduleCode.String, Name: moduleName.String}
			}
		}
		if userID.Valid {
			if id, err := uuid.Parse(userID.String); err == nil {
				p.Uploader = &models.User{
					ID:          id,
					Email:       userEmail.String,
					DisplayName: userName.String,
					PhotoURL:    userPhoto.String,
				}
			}
		}

		stats.PendingKuppis = append(stats.PendingKuppis, p)
	}
	return rows.Err()
}
