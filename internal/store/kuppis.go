// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kuppihub/kuppi-admin/internal/models"
)

// kuppiUpdatable is the PATCH field allow-list for kuppis: content
// fields plus the moderation flags.
var kuppiUpdatable = []string{
	"title", "description", "youtube_links", "telegram_links",
	"material_urls", "language_code", "is_approved", "is_hidden",
}

// kuppiLinkColumns are stored as JSON text and need marshaling on write.
var kuppiLinkColumns = map[string]bool{
	"youtube_links":  true,
	"telegram_links": true,
	"material_urls":  true,
}

// NewKuppi carries the fields accepted when creating a kuppi. Moderation
// flags are not included; new kuppis always start unapproved and
// visible.
type NewKuppi struct {
	ModuleID      uuid.UUID
	Title         string
	Description   string
	YouTubeLinks  []string
	TelegramLinks []string
	MaterialURLs  []string
	LanguageCode  string
	AddedByUserID *uuid.UUID
}

const kuppiSelect = `
	SELECT v.id, v.module_id, v.title, v.description,
	       v.youtube_links, v.telegram_links, v.material_urls,
	       v.language_code, v.is_approved, v.is_hidden,
	       v.added_by_user_id, v.created_at, v.updated_at,
	       m.id, m.code, m.name
	FROM videos v
	LEFT JOIN modules m ON m.id = v.module_id
	WHERE v.is_kuppi = true`

// ListKuppis returns every kuppi newest first, each with its module
// summary joined in.
func (s *Store) ListKuppis(ctx context.Context) ([]models.Kuppi, error) {
	rows, err := s.conn.QueryContext(ctx, kuppiSelect+` ORDER BY v.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list kuppis: %w", err)
	}
	defer func() { _ = rows.Close() }()

	kuppis := []models.Kuppi{}
	for rows.Next() {
		k, err := scanKuppi(rows)
		if err != nil {
			return nil, err
		}
		kuppis = append(kuppis, *k)
	}
	return kuppis, rows.Err()
}

// GetKuppi returns one kuppi by ID or ErrNotFound.
func (s *Store) GetKuppi(ctx context.Context, id uuid.UUID) (*models.Kuppi, error) {
	rows, err := s.conn.QueryContext(ctx, kuppiSelect+` AND v.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get kuppi: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get kuppi: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanKuppi(rows)
}

// CreateKuppi inserts a kuppi. New kuppis start unapproved and visible;
// the language code defaults to Sinhala.
func (s *Store) CreateKuppi(ctx context.Context, in NewKuppi) (*models.Kuppi, error) {
	now := time.Now().UTC()

	lang := in.LanguageCode
	if lang == "" {
		lang = "si"
	}

	k := models.Kuppi{
		ID:            uuid.New(),
		ModuleID:      in.ModuleID,
		Title:         in.Title,
		Description:   in.Description,
		YouTubeLinks:  in.YouTubeLinks,
		TelegramLinks: in.TelegramLinks,
		MaterialURLs:  in.MaterialURLs,
		LanguageCode:  lang,
		IsApproved:    false,
		IsHidden:      false,
		AddedByUserID: in.AddedByUserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var addedBy any
	if k.AddedByUserID != nil {
		addedBy = k.AddedByUserID.String()
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO videos (id, module_id, title, description, youtube_links, telegram_links,
		                     material_urls, language_code, is_kuppi, is_approved, is_hidden,
		                     added_by_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, true, false, false, ?, ?, ?)`,
		k.ID, k.ModuleID, k.Title, k.Description,
		marshalLinks(k.YouTubeLinks), marshalLinks(k.TelegramLinks), marshalLinks(k.MaterialURLs),
		k.LanguageCode, addedBy, k.CreatedAt, k.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create kuppi: %w", err)
	}
	return &k, nil
}

// UpdateKuppi applies allow-listed fields to a kuppi and returns the
// updated row. Link arrays arrive as decoded JSON and are re-marshaled
// for storage.
func (s *Store) UpdateKuppi(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Kuppi, error) {
	prepared := make(map[string]any, len(fields))
	for k, v := range fields {
		if kuppiLinkColumns[k] {
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", k, err)
			}
			prepared[k] = string(encoded)
			continue
		}
		prepared[k] = v
	}

	if err := s.updateAllowListed(ctx, "videos", id.String(), prepared, kuppiUpdatable); err != nil {
		return nil, err
	}
	return s.GetKuppi(ctx, id)
}

// DeleteKuppi removes one kuppi by ID.
func (s *Store) DeleteKuppi(ctx context.Context, id uuid.UUID) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM videos WHERE id = ? AND is_kuppi = true`, id)
	if err != nil {
		return fmt.Errorf("failed to delete kuppi: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanKuppi reads one joined kuppi row.
func scanKuppi(rows *sql.Rows) (*models.Kuppi, error) {
	var (
		k            models.Kuppi
		youtube      string
		telegram     string
		materials    string
		addedBy      sql.NullString
		moduleID     sql.NullString
		moduleCode   sql.NullString
		moduleName   sql.NullString
	)

	err := rows.Scan(&k.ID, &k.ModuleID, &k.Title, &k.Description,
		&youtube, &telegram, &materials,
		&k.LanguageCode, &k.IsApproved, &k.IsHidden,
		&addedBy, &k.CreatedAt, &k.UpdatedAt,
		&moduleID, &moduleCode, &moduleName)
	if err != nil {
		return nil, fmt.Errorf("failed to scan kuppi: %w", err)
	}

	k.YouTubeLinks = unmarshalLinks(youtube)
	k.TelegramLinks = unmarshalLinks(telegram)
	k.MaterialURLs = unmarshalLinks(materials)

	if addedBy.Valid {
		if id, err := uuid.Parse(addedBy.String); err == nil {
			k.AddedByUserID = &id
		}
	}

	if moduleID.Valid {
		if id, err := uuid.Parse(moduleID.String); err == nil {
			k.Module = &models.ModuleRef{
				ID:   id,
				Code: moduleCode.String,
				Name: moduleName.String,
			}
		}
	}

	return &k, nil
}

// marshalLinks encodes a link list as JSON text, nil as the empty list.
func marshalLinks(links []string) string {
	if links == nil {
		links = []string{}
	}
	encoded, err := json.Marshal(links)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

// unmarshalLinks decodes stored JSON link text, tolerating bad rows.
func unmarshalLinks(raw string) []string {
	var links []string
	if err := json.Unmarshal([]byte(raw), &links); err != nil || links == nil {
		return []string{}
	}
	return links
}
