// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package models defines the resource types served by the admin API.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Faculty is a top-level academic unit.
type Faculty struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Department belongs to a faculty.
type Department struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FacultyID uuid.UUID `json:"faculty_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Semester is a curriculum period. Semesters use serial IDs so listings
// keep their creation order.
type Semester struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Module is a taught course unit.
type Module struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ModuleAssignment places a module in the curriculum: one module taught
// in one faculty/department/semester slot. The four-column combination
// is unique.
type ModuleAssignment struct {
	ID           uuid.UUID `json:"id"`
	ModuleID     uuid.UUID `json:"module_id"`
	FacultyID    uuid.UUID `json:"faculty_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	SemesterID   int64     `json:"semester_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ModuleRef is the embedded module summary returned with kuppi listings.
type ModuleRef struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

// Kuppi is a student-made tutorial video awaiting or past moderation.
type Kuppi struct {
	ID            uuid.UUID  `json:"id"`
	ModuleID      uuid.UUID  `json:"module_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	YouTubeLinks  []string   `json:"youtube_links"`
	TelegramLinks []string   `json:"telegram_links,omitempty"`
	MaterialURLs  []string   `json:"material_urls,omitempty"`
	LanguageCode  string     `json:"language_code"`
	IsApproved    bool       `json:"is_approved"`
	IsHidden      bool       `json:"is_hidden"`
	AddedByUserID *uuid.UUID `json:"added_by_user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Module is populated on reads by joining module_id.
	Module *ModuleRef `json:"module,omitempty"`
}

// User is a platform account.
type User struct {
	ID                   uuid.UUID `json:"id"`
	ProviderUID          string    `json:"provider_uid"`
	Email                string    `json:"email"`
	DisplayName          string    `json:"display_name"`
	PhotoURL             string    `json:"photo_url,omitempty"`
	Role                 string    `json:"role"`
	IsActive             bool      `json:"is_active"`
	IsApprovedForKuppies bool      `json:"is_approved_for_kuppies"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// HierarchySnapshot is one stored revision of the faculty hierarchy
// document. Reads return the latest revision.
type HierarchySnapshot struct {
	ID        int64          `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PendingUploader is a user who has uploaded kuppis but is not yet
// approved to publish them.
type PendingUploader struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	KuppiCount  int       `json:"kuppi_count"`
}

// PendingKuppi is an unapproved kuppi with its uploader summary for the
// moderation dashboard.
type PendingKuppi struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	ModuleID  uuid.UUID  `json:"module_id"`
	Module    *ModuleRef `json:"module,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Uploader  *User      `json:"user,omitempty"`
}

// Stats are the dashboard aggregates.
type Stats struct {
	Users              int               `json:"users"`
	Modules            int               `json:"modules"`
	Kuppis             int               `json:"kuppis"`
	PendingKuppisCount int               `json:"pending_kuppis_count"`
	PendingUsers       []PendingUploader `json:"pending_users"`
	PendingKuppis      []PendingKuppi    `json:"pending_kuppis"`
}
