// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Set via -ldflags "-X github.com/olegiv/sitekit/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info contains build-time version information.
type Info struct {
	Version   string `json:"version"`    // semantic version from git tags, e.g. "v1.2.3"
	GitCommit string `json:"git_commit"` // short commit hash
	BuildTime string `json:"build_time"` // RFC3339
}

// Get returns the injected build information.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}

// String formats the info for the -version flag.
func (i Info) String() string {
	return fmt.Sprintf("sitekit %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
}
