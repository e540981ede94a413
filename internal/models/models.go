package models

import (
	"time"
)

// ReportType identifies one of the fixed report granularities.
type ReportType string

const (
	URLReport             ReportType = "URL Report"
	AdReport              ReportType = "Ad Report"
	AdGroupReport         ReportType = "Ad Group Report"
	CampaignReport        ReportType = "Campaign Report"
	CampaignRegionReport  ReportType = "Campaign Region Report"
	CampaignCountryReport ReportType = "Campaign Country Report"
	SearchReport          ReportType = "Search Report"
	KeywordReport         ReportType = "Keyword Report"
	AccountReport         ReportType = "Account Report"
)

// Dimension column names found in the report sources.
const (
	FieldBaseURL      = "base_url"
	FieldURLSegment   = "url_segment"
	FieldAdName       = "ad_name"
	FieldAdGroupName  = "ad_group_name"
	FieldCampaignName = "campaign_name"
	FieldRegion       = "region"
	FieldCountry      = "country"
	FieldKeywordText  = "keyword_text"
	FieldAccountName  = "account_name"
)

// ReportConfig describes where a report lives and how it is grouped.
type ReportConfig struct {
	Type             ReportType `json:"type"`
	Slug             string     `json:"slug"`
	File             string     `json:"file"`
	PrimaryDimension string     `json:"primary_dimension"`
	DimensionLabel   string     `json:"dimension_label"`
}

// Record is one row of advertising activity.
type Record struct {
	Date             time.Time
	Platform         string
	Spend            float64
	Impressions      int64
	Clicks           int64
	Conversions      int64
	ConversionsValue float64

	// Dimensions holds every non-metric column, keyed by header name,
	// plus derived columns such as url_segment.
	Dimensions map[string]string
}

// Dimension returns the value of a dimension column, or "" if absent.
func (r Record) Dimension(field string) string {
	return r.Dimensions[field]
}

// Table is a loaded report. Tables held by the cache are shared and must
// not be mutated.
type Table struct {
	Report   ReportType
	Columns  []string
	Records  []Record
	Quality  QualitySummary
	LoadedAt time.Time
}

// QualitySummary counts the coercions applied while loading a table.
type QualitySummary struct {
	TotalRows        int      `json:"total_rows"`
	CleanRows        int      `json:"clean_rows"`
	ClampedNegatives int      `json:"clamped_negatives"`
	MissingPlatforms int      `json:"missing_platforms"`
	QualityScore     float64  `json:"quality_score"`
	CommonIssues     []string `json:"common_issues"`
}

// DateRange holds the endpoints supplied by the date picker. The range is
// only applied when exactly two endpoints are present.
type DateRange []time.Time

// FilterSelection is the user's current control state.
type FilterSelection struct {
	Dates     DateRange
	Platforms []string
}

// Controls describes the options offered by the filter widgets.
type Controls struct {
	Report           ReportType     `json:"report"`
	MinDate          string         `json:"min_date"`
	MaxDate          string         `json:"max_date"`
	Platforms        []string       `json:"platforms"`
	DefaultPlatforms []string       `json:"default_platforms"`
	Rows             int            `json:"rows"`
	Quality          QualitySummary `json:"quality"`
}

// KPISummary holds the aggregate totals and ratios for a filtered table.
type KPISummary struct {
	TotalSpend            float64 `json:"total_spend"`
	TotalImpressions      int64   `json:"total_impressions"`
	TotalClicks           int64   `json:"total_clicks"`
	TotalConversions      int64   `json:"total_conversions"`
	TotalConversionsValue float64 `json:"total_conversions_value"`
	CTR                   float64 `json:"ctr"`
	CVR                   float64 `json:"cvr"`
	ROAS                  float64 `json:"roas"`
}

// KPITile is one formatted KPI as displayed on the dashboard.
type KPITile struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Help  string `json:"help"`
}

// DimensionRow is the per-dimension aggregate. CPA and ROAS are nil when
// their denominator is zero.
type DimensionRow struct {
	Dimension        string   `json:"dimension"`
	Spend            float64  `json:"spend"`
	Clicks           int64    `json:"clicks"`
	Conversions      int64    `json:"conversions"`
	Impressions      int64    `json:"impressions"`
	ConversionsValue float64  `json:"conversions_value"`
	CTR              float64  `json:"ctr"`
	CPA              *float64 `json:"cpa"`
	ROAS             *float64 `json:"roas"`

	Display DisplayRow `json:"display"`
}

// DisplayRow is the formatted form of a DimensionRow.
type DisplayRow struct {
	Spend       string `json:"spend"`
	Clicks      string `json:"clicks"`
	Conversions string `json:"conversions"`
	CTR         string `json:"ctr"`
	CPA         string `json:"cpa"`
	ROAS        string `json:"roas"`
}

// Cells returns the display columns in table order.
func (d DisplayRow) Cells() []string {
	return []string{d.Spend, d.Clicks, d.Conversions, d.CTR, d.CPA, d.ROAS}
}

// DimensionTable is the ranked performance table for one report.
type DimensionTable struct {
	Report     ReportType     `json:"report"`
	GroupField string         `json:"group_field"`
	Headers    []string       `json:"headers"`
	Rows       []DimensionRow `json:"rows"`
}

// TimeSeriesPoint is one day of the spend-over-time chart.
type TimeSeriesPoint struct {
	Date        string  `json:"date"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
}

// PlatformTotal is one bar of the platform comparison chart.
type PlatformTotal struct {
	Platform    string  `json:"platform"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Label       string  `json:"label"`
}

// PlatformChart is the platform comparison chart payload.
type PlatformChart struct {
	Bars     []PlatformTotal `json:"bars"`
	YAxisMax float64         `json:"y_axis_max"`
}

// ROASMatrix is the platform by dimension heatmap. Values[i][j] is the ROAS
// of Rows[i] on Columns[j].
type ROASMatrix struct {
	GroupField string      `json:"group_field"`
	XLabel     string      `json:"x_label"`
	YLabel     string      `json:"y_label"`
	Rows       []string    `json:"rows"`
	Columns    []string    `json:"columns"`
	Values     [][]float64 `json:"values"`
	Labels     [][]string  `json:"labels"`
	Height     int         `json:"height"`
}

// Dashboard bundles every panel for one filter selection.
type Dashboard struct {
	Report    ReportConfig      `json:"report"`
	KPIs      KPISummary        `json:"kpis"`
	Tiles     []KPITile         `json:"tiles"`
	Series    []TimeSeriesPoint `json:"time_series"`
	Platforms PlatformChart     `json:"platforms"`
	Heatmap   ROASMatrix        `json:"heatmap"`
	Table     DimensionTable    `json:"table"`
	Rows      int               `json:"rows"`
}

// Snapshot is the payload pushed to an external sink.
type Snapshot struct {
	Report      ReportType     `json:"report"`
	GeneratedAt string         `json:"generated_at"`
	From        string         `json:"from,omitempty"`
	To          string         `json:"to,omitempty"`
	Platforms   []string       `json:"platforms"`
	KPIs        KPISummary     `json:"kpis"`
	Table       DimensionTable `json:"table"`
}
