// Package charts prepares the series drawn by the dashboard charts.
package charts

import (
	"sort"
	"strings"

	"ad-reporting/internal/format"
	"ad-reporting/internal/metrics"
	"ad-reporting/internal/models"
	"ad-reporting/internal/registry"
)

const (
	dateLayout = "2006-01-02"

	// heatmap sizing
	minHeatmapHeight = 400
	heatmapRowHeight = 20

	// headroom above the tallest platform bar
	barPadding = 1.15

	keySep = "\x00"
)

// TimeSeries sums spend, impressions, clicks and conversions per day,
// oldest first.
func TimeSeries(records []models.Record) []models.TimeSeriesPoint {
	groups := metrics.GroupBy(records, func(r models.Record) string {
		return r.Date.Format(dateLayout)
	})

	out := make([]models.TimeSeriesPoint, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.TimeSeriesPoint{
			Date:        g.Key,
			Spend:       g.Spend,
			Impressions: g.Impressions,
			Clicks:      g.Clicks,
			Conversions: g.Conversions,
		})
	}
	return out
}

// PlatformTotals sums each platform and orders them by conversions,
// highest first.
func PlatformTotals(records []models.Record) models.PlatformChart {
	groups := metrics.GroupBy(records, func(r models.Record) string { return r.Platform })

	bars := make([]models.PlatformTotal, 0, len(groups))
	var top int64
	for _, g := range groups {
		bars = append(bars, models.PlatformTotal{
			Platform:    g.Key,
			Spend:       g.Spend,
			Impressions: g.Impressions,
			Clicks:      g.Clicks,
			Conversions: g.Conversions,
			Label:       format.Integer(g.Conversions),
		})
		if g.Conversions > top {
			top = g.Conversions
		}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Conversions > bars[j].Conversions })

	return models.PlatformChart{
		Bars:     bars,
		YAxisMax: float64(top) * barPadding,
	}
}

// ROASMatrix pivots ROAS by dimension value (rows) and platform (columns).
// Cells with zero spend or no records are 0.
func ROASMatrix(records []models.Record, report models.ReportType, cfg models.ReportConfig) models.ROASMatrix {
	field := registry.GroupField(report, cfg)
	groups := metrics.GroupBy(records, func(r models.Record) string {
		dim := r.Dimension(field)
		if dim == "" {
			return ""
		}
		return r.Platform + keySep + dim
	})

	type cell struct{ platform, dim string }
	values := make(map[cell]float64, len(groups))
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	for _, g := range groups {
		platform, dim, _ := strings.Cut(g.Key, keySep)
		rowSet[dim] = struct{}{}
		colSet[platform] = struct{}{}

		var roas float64
		if g.Spend != 0 {
			roas = format.Round(g.ConversionsValue/g.Spend, 1)
		}
		values[cell{platform, dim}] = roas
	}

	m := models.ROASMatrix{
		GroupField: field,
		XLabel:     "Platform",
		YLabel:     cfg.DimensionLabel,
		Rows:       sortedKeys(rowSet),
		Columns:    sortedKeys(colSet),
	}
	m.Values = make([][]float64, len(m.Rows))
	m.Labels = make([][]string, len(m.Rows))
	for i, dim := range m.Rows {
		m.Values[i] = make([]float64, len(m.Columns))
		m.Labels[i] = make([]string, len(m.Columns))
		for j, platform := range m.Columns {
			v := values[cell{platform, dim}]
			m.Values[i][j] = v
			m.Labels[i][j] = format.Multiplier(v)
		}
	}

	m.Height = len(m.Rows) * heatmapRowHeight
	if m.Height < minHeatmapHeight {
		m.Height = minHeatmapHeight
	}
	return m
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
