// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db"), Threads: 1})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insertUser(t *testing.T, s *Store, email string, approved bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()
	_, err := s.conn.ExecContext(context.Background(),
		`INSERT INTO users (id, provider_uid, email, display_name, role, is_active,
		                    is_approved_for_kuppies, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'student', true, ?, ?, ?)`,
		id, "uid-"+email, email, "User "+email, approved, now, now)
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}
	return id
}

func TestFacultiesOrderedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Science", "Engineering", "Medicine"} {
		if _, err := s.CreateFaculty(ctx, name); err != nil {
			t.Fatalf("creating faculty: %v", err)
		}
	}

	faculties, err := s.ListFaculties(ctx)
	if err != nil {
		t.Fatalf("listing faculties: %v", err)
	}
	if len(faculties) != 3 {
		t.Fatalf("got %d faculties, want 3", len(faculties))
	}
	want := []string{"Engineering", "Medicine", "Science"}
	for i, f := range faculties {
		if f.Name != want[i] {
			t.Errorf("faculties[%d] = %q, want %q", i, f.Name, want[i])
		}
	}
}

func TestDepartments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fac, err := s.CreateFaculty(ctx, "Engineering")
	if err != nil {
		t.Fatalf("creating faculty: %v", err)
	}

	dep, err := s.CreateDepartment(ctx, "Computer Engineering", fac.ID)
	if err != nil {
		t.Fatalf("creating department: %v", err)
	}
	if dep.FacultyID != fac.ID {
		t.Errorf("FacultyID = %v, want %v", dep.FacultyID, fac.ID)
	}

	deps, err := s.ListDepartments(ctx)
	if err != nil {
		t.Fatalf("listing departments: %v", err)
	}
	if len(deps) != 1 || deps[0].Name != "Computer Engineering" {
		t.Errorf("departments = %+v", deps)
	}
}

func TestSemestersSerialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateSemester(ctx, "Semester 1")
	if err != nil {
		t.Fatalf("creating semester: %v", err)
	}
	second, err := s.CreateSemester(ctx, "Semester 2")
	if err != nil {
		t.Fatalf("creating semester: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("IDs not increasing: %d then %d", first.ID, second.ID)
	}

	semesters, err := s.ListSemesters(ctx)
	if err != nil {
		t.Fatalf("listing semesters: %v", err)
	}
	if len(semesters) != 2 || semesters[0].ID != first.ID {
		t.Errorf("semesters = %+v", semesters)
	}
}

func TestModuleLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.CreateModule(ctx, "CS1010", "Programming Fundamentals", "Intro module")
	if err != nil {
		t.Fatalf("creating module: %v", err)
	}

	got, err := s.GetModule(ctx, m.ID)
	if err != nil {
		t.Fatalf("getting module: %v", err)
	}
	if got.Code != "CS1010" || got.Description != "Intro module" {
		t.Errorf("module = %+v", got)
	}

	updated, err := s.UpdateModule(ctx, m.ID, map[string]any{
		"name":      "Programming I",
		"bogus":     "ignored",
		"is_hidden": true,
	})
	if err != nil {
		t.Fatalf("updating module: %v", err)
	}
	if updated.Name != "Programming I" {
		t.Errorf("Name = %q after update", updated.Name)
	}
	if updated.Code != "CS1010" {
		t.Errorf("Code changed unexpectedly: %q", updated.Code)
	}

	if err := s.DeleteModule(ctx, m.ID); err != nil {
		t.Fatalf("deleting module: %v", err)
	}
	if _, err := s.GetModule(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestModuleDeleteCascadesAssignments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, _ := s.CreateModule(ctx, "CS2020", "Data Structures", "")
	fac, _ := s.CreateFaculty(ctx, "Engineering")
	dep, _ := s.CreateDepartment(ctx, "Computer Engineering", fac.ID)
	sem, _ := s.CreateSemester(ctx, "Semester 1")

	if _, err := s.CreateAssignment(ctx, m.ID, fac.ID, dep.ID, sem.ID); err != nil {
		t.Fatalf("creating assignment: %v", err)
	}

	if err := s.DeleteModule(ctx, m.ID); err != nil {
		t.Fatalf("deleting module: %v", err)
	}

	assignments, err := s.ListAssignments(ctx)
	if err != nil {
		t.Fatalf("listing assignments: %v", err)
	}
	if len(assignments) != 0 {
		t.Errorf("assignments not cascaded: %+v", assignments)
	}
}

func TestAssignmentDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, _ := s.CreateModule(ctx, "CS2020", "Data Structures", "")
	fac, _ := s.CreateFaculty(ctx, "Engineering")
	dep, _ := s.CreateDepartment(ctx, "Computer Engineering", fac.ID)
	sem, _ := s.CreateSemester(ctx, "Semester 1")
	sem2, _ := s.CreateSemester(ctx, "Semester 2")

	if _, err := s.CreateAssignment(ctx, m.ID, fac.ID, dep.ID, sem.ID); err != nil {
		t.Fatalf("creating assignment: %v", err)
	}

	if _, err := s.CreateAssignment(ctx, m.ID, fac.ID, dep.ID, sem.ID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// A different semester is a different slot.
	if _, err := s.CreateAssignment(ctx, m.ID, fac.ID, dep.ID, sem2.ID); err != nil {
		t.Errorf("distinct assignment rejected: %v", err)
	}
}

func TestKuppiLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, _ := s.CreateModule(ctx, "CS1010", "Programming Fundamentals", "")
	uploader := insertUser(t, s, "student@kuppihub.lk", false)

	k, err := s.CreateKuppi(ctx, NewKuppi{
		ModuleID:      m.ID,
		Title:         "Pointers explained",
		YouTubeLinks:  []string{"https://youtu.be/abc"},
		AddedByUserID: &uploader,
	})
	if err != nil {
		t.Fatalf("creating kuppi: %v", err)
	}
	if k.LanguageCode != "si" {
		t.Errorf("LanguageCode = %q, want default si", k.LanguageCode)
	}
	if k.IsApproved || k.IsHidden {
		t.Error("new kuppi must start unapproved and visible")
	}

	got, err := s.GetKuppi(ctx, k.ID)
	if err != nil {
		t.Fatalf("getting kuppi: %v", err)
	}
	if len(got.YouTubeLinks) != 1 || got.YouTubeLinks[0] != "https://youtu.be/abc" {
		t.Errorf("YouTubeLinks = %v", got.YouTubeLinks)
	}
	if got.Module == nil || got.Module.Code != "CS1010" {
		t.Errorf("Module join = %+v", got.Module)
	}
	if got.AddedByUserID == nil || *got.AddedByUserID != uploader {
		t.Errorf("AddedByUserID = %v", got.AddedByUserID)
	}

	updated, err := s.UpdateKuppi(ctx, k.ID, map[string]any{
		"is_approved":   true,
		"youtube_links": []any{"https://youtu.be/abc", "https://youtu.be/def"},
		"provider_uid":  "ignored",
	})
	if err != nil {
		t.Fatalf("updating kuppi: %v", err)
	}
	if !updated.IsApproved {
		t.Error("IsApproved not applied")
	}
	if len(updated.YouTubeLinks) != 2 {
		t.Errorf("YouTubeLinks = %v after update", updated.YouTubeLinks)
	}

	if err := s.DeleteKuppi(ctx, k.ID); err != nil {
		t.Fatalf("deleting kuppi: %v", err)
	}
	if _, err := s.GetKuppi(ctx, k.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestKuppisNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, _ := s.CreateModule(ctx, "CS1010", "Programming Fundamentals", "")
	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.CreateKuppi(ctx, NewKuppi{ModuleID: m.ID, Title: title}); err != nil {
			t.Fatalf("creating kuppi: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	kuppis, err := s.ListKuppis(ctx)
	if err != nil {
		t.Fatalf("listing kuppis: %v", err)
	}
	if len(kuppis) != 3 {
		t.Fatalf("got %d kuppis, want 3", len(kuppis))
	}
	if kuppis[0].Title != "third" || kuppis[2].Title != "first" {
		t.Errorf("order = %q, %q, %q", kuppis[0].Title, kuppis[1].Title, kuppis[2].Title)
	}
}

func TestUserUpdateAllowList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := insertUser(t, s, "student@kuppihub.lk", false)

	updated, err := s.UpdateUser(ctx, id, map[string]any{
		"display_name":            "Amara",
		"is_approved_for_kuppies": true,
		"provider_uid":            "hijacked",
	})
	if err != nil {
		t.Fatalf("updating user: %v", err)
	}
	if updated.DisplayName != "Amara" || !updated.IsApprovedForKuppies {
		t.Errorf("user = %+v", updated)
	}
	if updated.ProviderUID != "uid-student@kuppihub.lk" {
		t.Errorf("provider_uid changed via PATCH: %q", updated.ProviderUID)
	}

	if err := s.DeleteUser(ctx, id); err != nil {
		t.Fatalf("deleting user: %v", err)
	}
	if _, err := s.GetUser(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestHierarchyPutAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetHierarchy(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty hierarchy, got %v", err)
	}

	doc := map[string]any{
		"faculties": []any{
			map[string]any{"name": "Engineering", "departments": []any{}},
		},
	}

	first, err := s.PutHierarchy(ctx, doc)
	if err != nil {
		t.Fatalf("putting hierarchy: %v", err)
	}

	doc["faculties"] = []any{}
	second, err := s.PutHierarchy(ctx, doc)
	if err != nil {
		t.Fatalf("updating hierarchy: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("update created a new row: %d then %d", first.ID, second.ID)
	}

	got, err := s.GetHierarchy(ctx)
	if err != nil {
		t.Fatalf("getting hierarchy: %v", err)
	}
	faculties, ok := got.Data["faculties"].([]any)
	if !ok || len(faculties) != 0 {
		t.Errorf("hierarchy data = %+v", got.Data)
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, _ := s.CreateModule(ctx, "CS1010", "Programming Fundamentals", "")
	pendingUploader := insertUser(t, s, "new@kuppihub.lk", false)
	approvedUploader := insertUser(t, s, "old@kuppihub.lk", true)

	_, _ = s.CreateKuppi(ctx, NewKuppi{ModuleID: m.ID, Title: "pending one", AddedByUserID: &pendingUploader})
	k2, _ := s.CreateKuppi(ctx, NewKuppi{ModuleID: m.ID, Title: "approved one", AddedByUserID: &approvedUploader})
	_, _ = s.UpdateKuppi(ctx, k2.ID, map[string]any{"is_approved": true})

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("getting stats: %v", err)
	}

	if stats.Users != 2 || stats.Modules != 1 || stats.Kuppis != 2 {
		t.Errorf("counts = %+v", stats)
	}
	if stats.PendingKuppisCount != 1 {
		t.Errorf("PendingKuppisCount = %d, want 1", stats.PendingKuppisCount)
	}
	if len(stats.PendingUsers) != 1 || stats.PendingUsers[0].ID != pendingUploader {
		t.Errorf("PendingUsers = %+v", stats.PendingUsers)
	}
	if stats.PendingUsers[0].KuppiCount != 1 {
		t.Errorf("KuppiCount = %d, want 1", stats.PendingUsers[0].KuppiCount)
	}
	if len(stats.PendingKuppis) != 1 || stats.PendingKuppis[0].Title != "pending one" {
		t.Errorf("PendingKuppis = %+v", stats.PendingKuppis)
	}
	if stats.PendingKuppis[0].Uploader == nil || stats.PendingKuppis[0].Uploader.Email != "new@kuppihub.lk" {
		t.Errorf("Uploader = %+v", stats.PendingKuppis[0].Uploader)
	}
}
