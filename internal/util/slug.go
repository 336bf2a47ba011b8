// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides URL slug generation and validation with
// transliteration of non-ASCII titles.
package util

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title to a URL-friendly slug.
// "Zážitkový kurz 2024" becomes "zazitkovy-kurz-2024".
func Slugify(s string) string {
	// Compose first so unidecode sees whole characters, not combining marks
	result := unidecode.Unidecode(norm.NFC.String(s))
	result = strings.ToLower(result)
	result = slugRegex.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}

// AvailableSlug returns base, or base with the smallest "-N" suffix, that is
// neither reserved nor taken according to taken.
func AvailableSlug(base string, reserved func(string) bool, taken func(string) (bool, error)) (string, error) {
	if base == "" {
		base = "article"
	}
	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = base + "-" + strconv.Itoa(i)
		}
		if reserved != nil && reserved(candidate) {
			continue
		}
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}
