// Package filter narrows report records to the user's control selection.
package filter

import (
	"fmt"
	"strings"
	"time"

	"ad-reporting/internal/models"
)

const dateLayout = "2006-01-02"

// Apply keeps the records whose date lies in dates (inclusive) and whose
// platform is in platforms. The date filter is skipped unless dates holds
// exactly two endpoints. Output order follows the input.
func Apply(records []models.Record, dates models.DateRange, platforms []string) []models.Record {
	accepted := make(map[string]struct{}, len(platforms))
	for _, p := range platforms {
		accepted[p] = struct{}{}
	}

	byDate := len(dates) == 2
	var start, end time.Time
	if byDate {
		start, end = day(dates[0]), day(dates[1])
	}

	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if byDate {
			d := day(r.Date)
			if d.Before(start) || d.After(end) {
				continue
			}
		}
		if _, ok := accepted[r.Platform]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Select is Apply driven by a FilterSelection.
func Select(records []models.Record, sel models.FilterSelection) []models.Record {
	return Apply(records, sel.Dates, sel.Platforms)
}

// ParseDateRange parses YYYY-MM-DD endpoints. Empty values are dropped, so
// the result may hold fewer than two dates.
func ParseDateRange(values []string) (models.DateRange, error) {
	var out models.DateRange
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD", v)
		}
		out = append(out, d)
	}
	return out, nil
}

// Platforms returns the distinct platforms of records in first-seen order.
func Platforms(records []models.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Platform]; ok {
			continue
		}
		seen[r.Platform] = struct{}{}
		out = append(out, r.Platform)
	}
	return out
}

// Controls describes the widget options for a table: its date bounds and
// platforms. By default every platform is selected.
func Controls(t *models.Table) models.Controls {
	c := models.Controls{
		Report:    t.Report,
		Platforms: Platforms(t.Records),
		Rows:      len(t.Records),
		Quality:   t.Quality,
	}
	if c.Platforms == nil {
		c.Platforms = []string{}
	}
	c.DefaultPlatforms = c.Platforms

	if first, last, ok := DateBounds(t.Records); ok {
		c.MinDate = first.Format(dateLayout)
		c.MaxDate = last.Format(dateLayout)
	}
	return c
}

// DateBounds returns the earliest and latest record dates.
func DateBounds(records []models.Record) (time.Time, time.Time, bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last := day(records[0].Date), day(records[0].Date)
	for _, r := range records[1:] {
		d := day(r.Date)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return first, last, true
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
