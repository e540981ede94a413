// Package registry holds the fixed set of report descriptors.
package registry

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"ad-reporting/internal/models"
)

// DefaultReport is substituted for any unrecognized report type.
const DefaultReport = models.URLReport

type entry struct {
	config models.ReportConfig
	// groupField is the column the report is grouped by. It matches the
	// primary dimension for every built-in report.
	groupField string
}

var entries = []entry{
	{
		config: models.ReportConfig{
			Type:             models.URLReport,
			Slug:             "url",
			File:             "sample_ad_reporting__url_report.csv",
			PrimaryDimension: models.FieldURLSegment,
			DimensionLabel:   "URL Path",
		},
		groupField: models.FieldURLSegment,
	},
	{
		config: models.ReportConfig{
			Type:             models.AdReport,
			Slug:             "ad",
			File:             "sample_ad_reporting__ad_report.csv",
			PrimaryDimension: models.FieldAdName,
			DimensionLabel:   "Ad Name",
		},
		groupField: models.FieldAdName,
	},
	{
		config: models.ReportConfig{
			Type:             models.AdGroupReport,
			Slug:             "ad-group",
			File:             "sample_ad_reporting__ad_group_report.csv",
			PrimaryDimension: models.FieldAdGroupName,
			DimensionLabel:   "Ad Group",
		},
		groupField: models.FieldAdGroupName,
	},
	{
		config: models.ReportConfig{
			Type:             models.CampaignReport,
			Slug:             "campaign",
			File:             "sample_ad_reporting__campaign_report.csv",
			PrimaryDimension: models.FieldCampaignName,
			DimensionLabel:   "Campaign",
		},
		groupField: models.FieldCampaignName,
	},
	{
		config: models.ReportConfig{
			Type:             models.CampaignRegionReport,
			Slug:             "campaign-region",
			File:             "sample_ad_reporting__campaign_region_report.csv",
			PrimaryDimension: models.FieldRegion,
			DimensionLabel:   "Region",
		},
		groupField: models.FieldRegion,
	},
	{
		config: models.ReportConfig{
			Type:             models.CampaignCountryReport,
			Slug:             "campaign-country",
			File:             "sample_ad_reporting__campaign_country_report.csv",
			PrimaryDimension: models.FieldCountry,
			DimensionLabel:   "Country",
		},
		groupField: models.FieldCountry,
	},
	{
		config: models.ReportConfig{
			Type:             models.SearchReport,
			Slug:             "search",
			File:             "sample_ad_reporting__search_report.csv",
			PrimaryDimension: models.FieldKeywordText,
			DimensionLabel:   "Keyword",
		},
		groupField: models.FieldKeywordText,
	},
	{
		config: models.ReportConfig{
			Type:             models.KeywordReport,
			Slug:             "keyword",
			File:             "sample_ad_reporting__keyword_report.csv",
			PrimaryDimension: models.FieldKeywordText,
			DimensionLabel:   "Keyword",
		},
		groupField: models.FieldKeywordText,
	},
	{
		config: models.ReportConfig{
			Type:             models.AccountReport,
			Slug:             "account",
			File:             "sample_ad_reporting__account_report.csv",
			PrimaryDimension: models.FieldAccountName,
			DimensionLabel:   "Account",
		},
		groupField: models.FieldAccountName,
	},
}

var byType = func() map[models.ReportType]entry {
	m := make(map[models.ReportType]entry, len(entries))
	for _, e := range entries {
		m[e.config.Type] = e
	}
	return m
}()

// List returns the report types in display order.
func List() []models.ReportType {
	out := make([]models.ReportType, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.config.Type)
	}
	return out
}

// Configs returns every descriptor in display order.
func Configs() []models.ReportConfig {
	out := make([]models.ReportConfig, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.config)
	}
	return out
}

// Get looks up the descriptor of a report type.
func Get(t models.ReportType) (models.ReportConfig, bool) {
	e, ok := byType[t]
	return e.config, ok
}

// MustGet is Get for callers that only pass values obtained from List.
func MustGet(t models.ReportType) models.ReportConfig {
	cfg, ok := Get(t)
	if !ok {
		panic(fmt.Sprintf("registry: unknown report type %q", t))
	}
	return cfg
}

// Resolve maps a display name or slug to a report type. Anything
// unrecognized resolves to DefaultReport.
func Resolve(name string) models.ReportType {
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.TrimSpace(name)
	for _, e := range entries {
		if strings.EqualFold(name, string(e.config.Type)) || strings.EqualFold(name, e.config.Slug) {
			return e.config.Type
		}
	}
	return DefaultReport
}

// GroupField returns the column a report is grouped by. Report types
// outside the registry fall back to the descriptor's primary dimension.
func GroupField(t models.ReportType, cfg models.ReportConfig) string {
	if e, ok := byType[t]; ok {
		return e.groupField
	}
	return cfg.PrimaryDimension
}

// SourcePath returns the CSV location of a report under dataDir.
func SourcePath(dataDir string, cfg models.ReportConfig) string {
	if filepath.IsAbs(cfg.File) {
		return cfg.File
	}
	return filepath.Join(dataDir, cfg.File)
}
