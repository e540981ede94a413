package metrics

import (
	"math"
	"sort"

	"ad-reporting/internal/format"
	"ad-reporting/internal/models"
	"ad-reporting/internal/registry"
)

// Totals holds the summed numeric columns of a set of records.
type Totals struct {
	Spend            float64
	Impressions      int64
	Clicks           int64
	Conversions      int64
	ConversionsValue float64
}

func (t *Totals) Add(r models.Record) {
	t.Spend += r.Spend
	t.Impressions += r.Impressions
	t.Clicks += r.Clicks
	t.Conversions += r.Conversions
	t.ConversionsValue += r.ConversionsValue
}

// Group is the totals of the records sharing one key.
type Group struct {
	Key string
	Totals
}

// GroupBy partitions records by key and sums each partition. Groups are
// returned in ascending key order. Records with an empty key are skipped.
func GroupBy(records []models.Record, key func(models.Record) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Add(r)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// ComputeKPIs sums the filtered records. Ratios with a zero denominator
// are reported as 0.
func (c *Calculator) ComputeKPIs(records []models.Record) models.KPISummary {
	var t Totals
	for _, r := range records {
		t.Add(r)
	}

	return models.KPISummary{
		TotalSpend:            t.Spend,
		TotalImpressions:      t.Impressions,
		TotalClicks:           t.Clicks,
		TotalConversions:      t.Conversions,
		TotalConversionsValue: t.ConversionsValue,
		CTR:                   c.safeDivide(float64(t.Clicks), float64(t.Impressions)) * 100,
		CVR:                   c.safeDivide(float64(t.Conversions), float64(t.Clicks)) * 100,
		ROAS:                  c.safeDivide(t.ConversionsValue, t.Spend),
	}
}

// KPITiles formats the six dashboard tiles.
func (c *Calculator) KPITiles(k models.KPISummary) []models.KPITile {
	return []models.KPITile{
		{
			Label: "Spend",
			Value: "$" + format.Thousands(k.TotalSpend),
			Help:  "Total amount spent on advertising across the selected platforms and time period",
		},
		{
			Label: "Impressions",
			Value: format.Thousands(float64(k.TotalImpressions)),
			Help:  "Total number of times ads were displayed",
		},
		{
			Label: "CTR",
			Value: format.Percent(k.CTR),
			Help:  "Click-Through Rate: Clicks ÷ Impressions × 100",
		},
		{
			Label: "CVR",
			Value: format.Percent(k.CVR),
			Help:  "Conversion Rate: Conversions ÷ Clicks × 100",
		},
		{
			Label: "Conversions",
			Value: format.Integer(k.TotalConversions),
			Help:  "Total number of completed conversion actions",
		},
		{
			Label: "ROAS",
			Value: format.Multiplier(k.ROAS),
			Help:  "Return on Ad Spend: Conversion Value ÷ Spend",
		},
	}
}

// ComputeDimensionTable builds the ranked per-dimension table, highest
// spend first. Rows with equal spend keep their grouping order.
func (c *Calculator) ComputeDimensionTable(records []models.Record, report models.ReportType, cfg models.ReportConfig) models.DimensionTable {
	field := registry.GroupField(report, cfg)
	groups := GroupBy(records, func(r models.Record) string { return r.Dimension(field) })

	rows := make([]models.DimensionRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, c.dimensionRow(g))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Spend > rows[j].Spend })

	return models.DimensionTable{
		Report:     report,
		GroupField: field,
		Headers:    []string{cfg.DimensionLabel, "Spend", "Clicks", "Conversions", "CTR", "CPA", "ROAS"},
		Rows:       rows,
	}
}

func (c *Calculator) dimensionRow(g Group) models.DimensionRow {
	row := models.DimensionRow{
		Dimension:        g.Key,
		Spend:            g.Spend,
		Clicks:           g.Clicks,
		Conversions:      g.Conversions,
		Impressions:      g.Impressions,
		ConversionsValue: g.ConversionsValue,
		CTR:              format.Round(c.safeDivide(float64(g.Clicks), float64(g.Impressions))*100, 1),
		CPA:              c.optionalRatio(g.Spend, float64(g.Conversions), 2),
		ROAS:             c.optionalRatio(g.ConversionsValue, g.Spend, 1),
	}
	row.Display = models.DisplayRow{
		Spend:       format.Currency(row.Spend),
		Clicks:      format.Integer(row.Clicks),
		Conversions: format.Integer(row.Conversions),
		CTR:         format.Percent(row.CTR),
		CPA:         format.Cents(row.CPA),
		ROAS:        format.OptionalMultiplier(row.ROAS),
	}
	return row
}

// optionalRatio is nil when the denominator is zero.
func (c *Calculator) optionalRatio(numerator, denominator float64, places int) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v = format.Round(v, places)
	return &v
}

func (c *Calculator) safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}
