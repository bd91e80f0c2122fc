// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package api

import "github.com/kuppihub/kuppi-admin/internal/validation"

// Validation rule sets, one per write route. Fields absent from a rule
// set are dropped from the payload before it reaches a handler.
var (
	facultyCreateRules = map[string]validation.Rule{
		"name": {Required: true, Type: validation.TypeString, MinLength: 1, MaxLength: 200},
	}

	departmentCreateRules = map[string]validation.Rule{
		"name":       {Required: true, Type: validation.TypeString, MinLength: 1, MaxLength: 200},
		"faculty_id": {Required: true, Type: validation.TypeString, Pattern: validation.UUID},
	}

	semesterCreateRules = map[string]validation.Rule{
		"name": {Required: true, Type: validation.TypeString, MinLength: 1, MaxLength: 100},
	}

	moduleCreateRules = map[string]validation.Rule{
		"code":        {Required: true, Type: validation.TypeString, MinLength: 1, MaxLength: 20},
		"name":        {Required: true, Type: validation.TypeString, MinLength: 1, MaxLength: 200},
		"description": {Type: validation.TypeString, MaxLength: 2000},
	}

	moduleUpdateRules = map[string]validation.Rule{
		"code":        {Type: validation.TypeString, MinLength: 1, MaxLength: 20},
		"name":        {Type: validation.TypeString, MinLength: 1, MaxLength: 200},
		"description": {Type: validation.TypeString, MaxLength: 2000},
	}

	assignmentCreateRules = map[string]validation.Rule{
		"module_id":     {Required: true, Type: validation.TypeString, Pattern: validation.UUID},
		"faculty_id":    {Required: true, Type: validation.TypeString, Pattern: validation.UUID},
		"department_id": {Required: true, Type: validation.TypeString, Pattern: validation.UUID},
		"semester_id":   {Required: true, Type: validation.TypeNumber, Min: validation.Float(1)},
	}

	kuppiCreateRules = map[string]validation.Rule{
		"module_id":      {Required: true, Type: validation.TypeString, Pattern: validation.UUID},
		"title":          {Required: true, Type: validation.TypeString, MinLength: 1, MaxLength: 200},
		"description":    {Type: validation.TypeString, MaxLength: 5000},
		"youtube_links":  {Required: true, Type: validation.TypeArray},
		"telegram_links": {Type: validation.TypeArray},
		"material_urls":  {Type: validation.TypeArray},
		"language_code":  {Type: validation.TypeString, Pattern: validation.LanguageCode},
		"student_id":     {Type: validation.TypeString, Pattern: validation.UUID},
	}

	kuppiUpdateRules = map[string]validation.Rule{
		"title":          {Type: validation.TypeString, MinLength: 1, MaxLength: 200},
		"description":    {Type: validation.TypeString, MaxLength: 5000},
		"youtube_links":  {Type: validation.TypeArray},
		"telegram_links": {Type: validation.TypeArray},
		"material_urls":  {Type: validation.TypeArray},
		"language_code":  {Type: validation.TypeString, Pattern: validation.LanguageCode},
		"is_approved":    {Type: validation.TypeBoolean},
		"is_hidden":      {Type: validation.TypeBoolean},
	}

	userUpdateRules = map[string]validation.Rule{
		"display_name":            {Type: validation.TypeString, MinLength: 1, MaxLength: 200},
		"email":                   {Type: validation.TypeString, Pattern: validation.Email},
		"photo_url":               {Type: validation.TypeString, Pattern: validation.URL},
		"role":                    {Type: validation.TypeString, Enum: []string{"student", "tutor", "admin"}},
		"is_active":               {Type: validation.TypeBoolean},
		"is_approved_for_kuppies": {Type: validation.TypeBoolean},
	}

	hierarchyPutRules = map[string]validation.Rule{
		"faculties": {Required: true, Type: validation.TypeArray},
	}
)
