package transformer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ad-reporting/internal/models"
)

var (
	ErrNoDateColumn  = errors.New("no date_day or date_month column")
	ErrMissingColumn = errors.New("missing required column")
)

const (
	colDateDay          = "date_day"
	colDateMonth        = "date_month"
	colPlatform         = "platform"
	colSpend            = "spend"
	colImpressions      = "impressions"
	colClicks           = "clicks"
	colConversions      = "conversions"
	colConversionsValue = "conversions_value"

	unknownPlatform = "unknown"
)

var metricColumns = []string{colSpend, colImpressions, colClicks, colConversions, colConversionsValue}

// Transformer turns raw CSV rows into normalized records.
type Transformer struct {
	dateFormats []string
}

func New() *Transformer {
	return &Transformer{
		dateFormats: []string{
			"2006-01-02",
			"2006-01-02 15:04:05",
			time.RFC3339,
			"2006/01/02",
			"2006-01",
		},
	}
}

type columnIndex struct {
	date        int
	platform    int
	metrics     map[string]int
	dimensions  map[string]int
	dateColumns map[int]bool
}

func (t *Transformer) indexColumns(report models.ReportType, headers []string) (*columnIndex, error) {
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	idx := &columnIndex{
		date:        -1,
		metrics:     make(map[string]int, len(metricColumns)),
		dimensions:  make(map[string]int),
		dateColumns: make(map[int]bool),
	}

	// date_day wins when both are present
	if i, ok := pos[colDateDay]; ok {
		idx.date = i
	} else if i, ok := pos[colDateMonth]; ok {
		idx.date = i
	} else {
		return nil, ErrNoDateColumn
	}
	for _, c := range []string{colDateDay, colDateMonth} {
		if i, ok := pos[c]; ok {
			idx.dateColumns[i] = true
		}
	}

	i, ok := pos[colPlatform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, colPlatform)
	}
	idx.platform = i

	for _, c := range metricColumns {
		i, ok := pos[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		idx.metrics[c] = i
	}

	if report == models.URLReport {
		if _, ok := pos[models.FieldBaseURL]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, models.FieldBaseURL)
		}
	}

	for name, i := range pos {
		if i == idx.platform || idx.dateColumns[i] {
			continue
		}
		if _, isMetric := idx.metrics[name]; isMetric {
			continue
		}
		idx.dimensions[name] = i
	}
	return idx, nil
}

// NormalizeRows converts CSV rows (without the header) into records.
// Structural problems (missing columns, unparsable cells) are errors;
// negative metrics and empty platforms are corrected and counted.
func (t *Transformer) NormalizeRows(report models.ReportType, headers []string, rows [][]string) ([]models.Record, models.QualitySummary, error) {
	idx, err := t.indexColumns(report, headers)
	if err != nil {
		return nil, models.QualitySummary{}, err
	}

	quality := models.QualitySummary{TotalRows: len(rows)}
	records := make([]models.Record, 0, len(rows))

	for n, row := range rows {
		line := n + 2 // header is line 1
		issues := 0

		date, err := t.parseDate(cell(row, idx.date))
		if err != nil {
			return nil, quality, fmt.Errorf("line %d: %w", line, err)
		}

		platform := strings.TrimSpace(cell(row, idx.platform))
		if platform == "" {
			platform = unknownPlatform
			quality.MissingPlatforms++
			issues++
		}

		values := make(map[string]float64, len(metricColumns))
		for _, c := range metricColumns {
			v, err := parseNumber(cell(row, idx.metrics[c]))
			if err != nil {
				return nil, quality, fmt.Errorf("line %d, column %s: %w", line, c, err)
			}
			if v < 0 {
				v = 0
				quality.ClampedNegatives++
				issues++
			}
			values[c] = v
		}

		dims := make(map[string]string, len(idx.dimensions)+1)
		for name, i := range idx.dimensions {
			dims[name] = strings.TrimSpace(cell(row, i))
		}
		if report == models.URLReport {
			dims[models.FieldURLSegment] = URLSegment(dims[models.FieldBaseURL])
		}

		records = append(records, models.Record{
			Date:             date,
			Platform:         platform,
			Spend:            values[colSpend],
			Impressions:      toCount(values[colImpressions]),
			Clicks:           toCount(values[colClicks]),
			Conversions:      toCount(values[colConversions]),
			ConversionsValue: values[colConversionsValue],
			Dimensions:       dims,
		})

		if issues == 0 {
			quality.CleanRows++
		}
	}

	quality.QualityScore = qualityScore(quality.CleanRows, quality.TotalRows)
	quality.CommonIssues = commonIssues(quality)
	return records, quality, nil
}

// URLSegment keeps the final path segment of a URL, prefixed with "/".
// Values without a slash are returned unchanged.
func URLSegment(baseURL string) string {
	i := strings.LastIndex(baseURL, "/")
	if i < 0 {
		return baseURL
	}
	return "/" + baseURL[i+1:]
}

func (t *Transformer) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, format := range t.dateFormats {
		if d, err := time.Parse(format, s); err == nil {
			y, m, day := d.Date()
			return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func toCount(v float64) int64 {
	return int64(math.Round(v))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func qualityScore(clean, total int) float64 {
	if total == 0 {
		return 100
	}
	return math.Round(float64(clean)/float64(total)*1000) / 10
}

func commonIssues(q models.QualitySummary) []string {
	issues := []string{}
	if q.ClampedNegatives > 0 {
		issues = append(issues, fmt.Sprintf("%d negative metric values set to 0", q.ClampedNegatives))
	}
	if q.MissingPlatforms > 0 {
		issues = append(issues, fmt.Sprintf("%d rows without platform set to %q", q.MissingPlatforms, unknownPlatform))
	}
	return issues
}
