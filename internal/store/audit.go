// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kuppihub/kuppi-admin/internal/audit"
)

// InsertEvent persists one audit event. Detail is stored as JSON text.
func (s *Store) InsertEvent(ctx context.Context, e audit.Event) error {
	detail := "{}"
	if len(e.Detail) > 0 {
		encoded, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("failed to encode audit detail: %w", err)
		}
		detail = string(encoded)
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO audit_events (id, event_type, actor_uid, actor_email, target_type,
		                           target_id, source_ip, route, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Type, e.Actor.UID, e.Actor.Email, e.Target.Type,
		e.Target.ID, e.Source.IP, e.Source.Route, detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
