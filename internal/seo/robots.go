// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
)

// DefaultDisallow keeps crawlers away from operator and probe endpoints.
var DefaultDisallow = []string{"/-/", "/health"}

// RobotsConfig holds configuration for robots.txt generation.
type RobotsConfig struct {
	DisallowAll   bool     // staging and development sites
	DisallowPaths []string // in addition to DefaultDisallow
	ExtraRules    string
}

// BuildRobots generates the robots.txt content.
func BuildRobots(cfg RobotsConfig) string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")

	if cfg.DisallowAll {
		sb.WriteString("Disallow: /\n")
	} else {
		paths := append(append([]string{}, DefaultDisallow...), cfg.DisallowPaths...)
		for _, path := range paths {
			sb.WriteString("Disallow: ")
			sb.WriteString(path)
			sb.WriteString("\n")
		}
		sb.WriteString("Allow: /\n")
	}

	if cfg.ExtraRules != "" {
		sb.WriteString("\n")
		sb.WriteString(cfg.ExtraRules)
		if !strings.HasSuffix(cfg.ExtraRules, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
