// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package store

import (
	"context"
	"fmt"
)

// schema is applied statement by statement at startup. UUID columns are
// VARCHAR because IDs are generated in Go; link arrays and the hierarchy
// document are stored as JSON text.
var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_semesters START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_hierarchy START 1`,

	`CREATE TABLE IF NOT EXISTS faculties (
		id         VARCHAR PRIMARY KEY,
		name       VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS departments (
		id         VARCHAR PRIMARY KEY,
		name       VARCHAR NOT NULL,
		faculty_id VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS semesters (
		id         BIGINT PRIMARY KEY DEFAULT nextval('seq_semesters'),
		name       VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS modules (
		id          VARCHAR PRIMARY KEY,
		code        VARCHAR NOT NULL,
		name        VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS module_assignments (
		id            VARCHAR PRIMARY KEY,
		module_id     VARCHAR NOT NULL,
		faculty_id    VARCHAR NOT NULL,
		department_id VARCHAR NOT NULL,
		semester_id   BIGINT NOT NULL,
		created_at    TIMESTAMP NOT NULL,
		UNIQUE (module_id, faculty_id, department_id, semester_id)
	)`,

	`CREATE TABLE IF NOT EXISTS videos (
		id               VARCHAR PRIMARY KEY,
		module_id        VARCHAR NOT NULL,
		title            VARCHAR NOT NULL,
		description      VARCHAR NOT NULL DEFAULT '',
		youtube_links    VARCHAR NOT NULL DEFAULT '[]',
		telegram_links   VARCHAR NOT NULL DEFAULT '[]',
		material_urls    VARCHAR NOT NULL DEFAULT '[]',
		language_code    VARCHAR NOT NULL DEFAULT 'si',
		is_kuppi         BOOLEAN NOT NULL DEFAULT true,
		is_approved      BOOLEAN NOT NULL DEFAULT false,
		is_hidden        BOOLEAN NOT NULL DEFAULT false,
		added_by_user_id VARCHAR,
		created_at       TIMESTAMP NOT NULL,
		updated_at       TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id                      VARCHAR PRIMARY KEY,
		provider_uid            VARCHAR NOT NULL DEFAULT '',
		email                   VARCHAR NOT NULL,
		display_name            VARCHAR NOT NULL DEFAULT '',
		photo_url               VARCHAR NOT NULL DEFAULT '',
		role                    VARCHAR NOT NULL DEFAULT 'student',
		is_active               BOOLEAN NOT NULL DEFAULT true,
		is_approved_for_kuppies BOOLEAN NOT NULL DEFAULT false,
		created_at              TIMESTAMP NOT NULL,
		updated_at              TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS faculty_hierarchy (
		id         BIGINT PRIMARY KEY DEFAULT nextval('seq_hierarchy'),
		data       VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS audit_events (
		id          VARCHAR PRIMARY KEY,
		event_type  VARCHAR NOT NULL,
		actor_uid   VARCHAR NOT NULL DEFAULT '',
		actor_email VARCHAR NOT NULL DEFAULT '',
		target_type VARCHAR NOT NULL DEFAULT '',
		target_id   VARCHAR NOT NULL DEFAULT '',
		source_ip   VARCHAR NOT NULL DEFAULT '',
		route       VARCHAR NOT NULL DEFAULT '',
		detail      VARCHAR NOT NULL DEFAULT '{}',
		created_at  TIMESTAMP NOT NULL
	)`,
}

// initSchema creates tables and sequences if they do not exist.
func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
