// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package hierarchy

import (
	"strings"
	"testing"
)

func validDoc() map[string]any {
	return map[string]any{
		"faculties": []any{
			map[string]any{
				"name": "Engineering",
				"departments": []any{
					map[string]any{
						"name": "Computer Engineering",
						"semesters": []any{
							map[string]any{
								"name":    "Semester 1",
								"modules": []any{"CS1010", "MA1010"},
							},
						},
					},
				},
			},
		},
	}
}

func TestNormalizeValid(t *testing.T) {
	out, err := Normalize(validDoc())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	faculties := out["faculties"].([]any)
	faculty := faculties[0].(map[string]any)
	if faculty["name"] != "Engineering" {
		t.Errorf("faculty name = %v", faculty["name"])
	}

	departments := faculty["departments"].([]any)
	department := departments[0].(map[string]any)
	semesters := department["semesters"].([]any)
	semester := semesters[0].(map[string]any)
	modules := semester["modules"].([]any)
	if len(modules) != 2 || modules[0] != "CS1010" {
		t.Errorf("modules = %v", modules)
	}
}

func TestNormalizeDropsUnknownKeys(t *testing.T) {
	doc := validDoc()
	doc["extra"] = "dropped"
	faculty := doc["faculties"].([]any)[0].(map[string]any)
	faculty["injected"] = map[string]any{"deep": true}

	out, err := Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if _, ok := out["extra"]; ok {
		t.Error("top-level unknown key kept")
	}
	cleaned := out["faculties"].([]any)[0].(map[string]any)
	if _, ok := cleaned["injected"]; ok {
		t.Error("faculty unknown key kept")
	}
}

func TestNormalizeSanitizesNames(t *testing.T) {
	doc := validDoc()
	faculty := doc["faculties"].([]any)[0].(map[string]any)
	faculty["name"] = "  <b>Engineering</b>  "

	out, err := Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	cleaned := out["faculties"].([]any)[0].(map[string]any)
	if cleaned["name"] != "bEngineering/b" {
		t.Errorf("name = %v", cleaned["name"])
	}
}

func TestNormalizeMissingChildArraysDefaultEmpty(t *testing.T) {
	doc := map[string]any{
		"faculties": []any{
			map[string]any{"name": "Science"},
		},
	}

	out, err := Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	faculty := out["faculties"].([]any)[0].(map[string]any)
	if deps := faculty["departments"].([]any); len(deps) != 0 {
		t.Errorf("departments = %v, want empty", deps)
	}
}

func TestNormalizeRejections(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		wantErr string
	}{
		{
			name:    "missing faculties",
			doc:     map[string]any{},
			wantErr: "faculties is required",
		},
		{
			name:    "faculties not array",
			doc:     map[string]any{"faculties": "nope"},
			wantErr: "faculties must be an array",
		},
		{
			name:    "faculty not object",
			doc:     map[string]any{"faculties": []any{"nope"}},
			wantErr: "faculties[0] must be an object",
		},
		{
			name: "faculty missing name",
			doc: map[string]any{"faculties": []any{
				map[string]any{"departments": []any{}},
			}},
			wantErr: "faculties[0].name must be a string",
		},
		{
			name: "departments not array",
			doc: map[string]any{"faculties": []any{
				map[string]any{"name": "Science", "departments": map[string]any{}},
			}},
			wantErr: "faculties[0].departments must be an array",
		},
		{
			name: "module code not string",
			doc: map[string]any{"faculties": []any{
				map[string]any{"name": "Science", "departments": []any{
					map[string]any{"name": "Physics", "semesters": []any{
						map[string]any{"name": "Semester 1", "modules": []any{float64(7)}},
					}},
				}},
			}},
			wantErr: "modules[0] must be a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.doc)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}
