// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Config keys
const (
	ConfigKeySiteName                = "site_name"
	ConfigKeySEODefaultTitle         = "seo_default_title"
	ConfigKeySEODefaultTitleOG       = "seo_default_title_og"
	ConfigKeySEODefaultDescription   = "seo_default_description"
	ConfigKeySEODefaultDescriptionOG = "seo_default_description_og"
	ConfigKeySEODefaultOGImage       = "seo_default_og_image"
	ConfigKeyContactIntro            = "contact_intro"
)

// ConfigItem represents a key/value site configuration row.
type ConfigItem struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Category string `json:"category"`
	Active   bool   `json:"active"`
}
