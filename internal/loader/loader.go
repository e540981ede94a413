// Package loader reads report tables from their CSV sources.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"ad-reporting/internal/models"
	"ad-reporting/internal/registry"
	"ad-reporting/internal/transformer"
)

// LoadObserver receives the outcome of each source read.
type LoadObserver interface {
	TableLoaded(report models.ReportType, rows int, took time.Duration)
}

type Loader struct {
	dataDir     string
	transformer *transformer.Transformer
	logger      *logrus.Logger
	observer    LoadObserver
}

func New(dataDir string, tr *transformer.Transformer, logger *logrus.Logger, observer LoadObserver) *Loader {
	return &Loader{
		dataDir:     dataDir,
		transformer: tr,
		logger:      logger,
		observer:    observer,
	}
}

// Load reads the table of a report type. Unknown report types load the
// default report instead.
func (l *Loader) Load(ctx context.Context, report models.ReportType) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := registry.Get(report); !ok {
		l.logger.WithField("report", report).Warn("Unknown report type, using default")
		report = registry.DefaultReport
	}

	start := time.Now()
	cfg := registry.MustGet(report)
	path := registry.SourcePath(l.dataDir, cfg)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", report, err)
	}
	defer f.Close()

	headers, rows, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	records, quality, err := l.transformer.NormalizeRows(report, headers, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", path, err)
	}

	took := time.Since(start)
	l.logger.WithFields(logrus.Fields{
		"report":        report,
		"file":          path,
		"rows":          len(records),
		"quality_score": quality.QualityScore,
		"duration_ms":   took.Milliseconds(),
	}).Info("Report table loaded")
	if len(quality.CommonIssues) > 0 {
		l.logger.WithField("issues", quality.CommonIssues).Warn("Data quality issues detected")
	}
	if l.observer != nil {
		l.observer.TableLoaded(report, len(records), took)
	}

	return &models.Table{
		Report:   report,
		Columns:  headers,
		Records:  records,
		Quality:  quality,
		LoadedAt: time.Now(),
	}, nil
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return headers, rows, nil
}
