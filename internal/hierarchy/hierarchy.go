// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package hierarchy validates the faculty hierarchy document against an
// explicit schema before it is stored: faculties contain departments,
// departments contain semesters, semesters list module codes. Unknown
// keys are dropped and every name is sanitized.
package hierarchy

import (
	"fmt"

	"github.com/kuppihub/kuppi-admin/internal/sanitize"
)

// Limits on the document's breadth. The dashboard edits this document
// whole, so a runaway payload is a client bug, not a real curriculum.
const (
	maxFaculties    = 50
	maxDepartments  = 100
	maxSemesters    = 20
	maxModuleCodes  = 500
	maxNameLength   = 200
	maxModuleLength = 50
)

// Normalize validates doc against the hierarchy schema and returns a
// cleaned copy containing only the schema's keys, with all names
// sanitized. The error names the first offending path.
func Normalize(doc map[string]any) (map[string]any, error) {
	rawFaculties, ok := doc["faculties"]
	if !ok {
		return nil, fmt.Errorf("faculties is required")
	}
	facultyList, ok := rawFaculties.([]any)
	if !ok {
		return nil, fmt.Errorf("faculties must be an array")
	}
	if len(facultyList) > maxFaculties {
		return nil, fmt.Errorf("faculties exceeds %d entries", maxFaculties)
	}

	faculties := make([]any, 0, len(facultyList))
	for i, rawFaculty := range facultyList {
		faculty, err := normalizeFaculty(rawFaculty, fmt.Sprintf("faculties[%d]", i))
		if err != nil {
			return nil, err
		}
		faculties = append(faculties, faculty)
	}

	return map[string]any{"faculties": faculties}, nil
}

func normalizeFaculty(raw any, path string) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", path)
	}

	name, err := normalizeName(obj["name"], path)
	if err != nil {
		return nil, err
	}

	rawDepartments, ok := obj["departments"]
	if !ok {
		rawDepartments = []any{}
	}
	departmentList, ok := rawDepartments.([]any)
	if !ok {
		return nil, fmt.Errorf("%s.departments must be an array", path)
	}
	if len(departmentList) > maxDepartments {
		return nil, fmt.Errorf("%s.departments exceeds %d entries", path, maxDepartments)
	}

	departments := make([]any, 0, len(departmentList))
	for i, rawDepartment := range departmentList {
		department, err := normalizeDepartment(rawDepartment, fmt.Sprintf("%s.departments[%d]", path, i))
		if err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}

	return map[string]any{"name": name, "departments": departments}, nil
}

func normalizeDepartment(raw any, path string) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", path)
	}

	name, err := normalizeName(obj["name"], path)
	if err != nil {
		return nil, err
	}

	rawSemesters, ok := obj["semesters"]
	if !ok {
		rawSemesters = []any{}
	}
	semesterList, ok := rawSemesters.([]any)
	if !ok {
		return nil, fmt.Errorf("%s.semesters must be an array", path)
	}
	if len(semesterList) > maxSemesters {
		return nil, fmt.Errorf("%s.semesters exceeds %d entries", path, maxSemesters)
	}

	semesters := make([]any, 0, len(semesterList))
	for i, rawSemester := range semesterList {
		semester, err := normalizeSemester(rawSemester, fmt.Sprintf("%s.semesters[%d]", path, i))
		if err != nil {
			return nil, err
		}
		semesters = append(semesters, semester)
	}

	return map[string]any{"name": name, "semesters": semesters}, nil
}

func normalizeSemester(raw any, path string) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", path)
	}

	name, err := normalizeName(obj["name"], path)
	if err != nil {
		return nil, err
	}

	rawModules, ok := obj["modules"]
	if !ok {
		rawModules = []any{}
	}
	moduleList, ok := rawModules.([]any)
	if !ok {
		return nil, fmt.Errorf("%s.modules must be an array", path)
	}
	if len(moduleList) > maxModuleCodes {
		return nil, fmt.Errorf("%s.modules exceeds %d entries", path, maxModuleCodes)
	}

	modules := make([]any, 0, len(moduleList))
	for i, rawModule := range moduleList {
		code, ok := rawModule.(string)
		if !ok {
			return nil, fmt.Errorf("%s.modules[%d] must be a string", path, i)
		}
		code = sanitize.String(code)
		if code == "" || len(code) > maxModuleLength {
			return nil, fmt.Errorf("%s.modules[%d] has an invalid module code", path, i)
		}
		modules = append(modules, code)
	}

	return map[string]any{"name": name, "modules": modules}, nil
}

func normalizeName(raw any, path string) (string, error) {
	name, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s.name must be a string", path)
	}
	name = sanitize.String(name)
	if name == "" {
		return "", fmt.Errorf("%s.name must not be empty", path)
	}
	if len(name) > maxNameLength {
		return "", fmt.Errorf("%s.name exceeds %d characters", path, maxNameLength)
	}
	return name, nil
}
