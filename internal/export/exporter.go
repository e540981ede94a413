package export

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"ad-reporting/internal/client"
	"ad-reporting/internal/models"
)

const sheetName = "Sheet1"

type Exporter struct {
	secret     string
	httpClient *client.HTTPClient
	logger     *logrus.Logger
}

func NewExporter(secret string, httpClient *client.HTTPClient, logger *logrus.Logger) *Exporter {
	return &Exporter{
		secret:     secret,
		httpClient: httpClient,
		logger:     logger,
	}
}

// PushSnapshot posts a signed dashboard snapshot to sinkURL.
func (e *Exporter) PushSnapshot(ctx context.Context, sinkURL string, snapshot models.Snapshot) error {
	if sinkURL == "" {
		return fmt.Errorf("sink not configured")
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	signature := e.Sign(body)

	if err := e.httpClient.PostSigned(ctx, sinkURL, body, signature); err != nil {
		e.logger.WithError(err).WithField("report", snapshot.Report).Error("Failed to push snapshot")
		return fmt.Errorf("failed to push snapshot: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"report": snapshot.Report,
		"rows":   len(snapshot.Table.Rows),
	}).Info("Successfully pushed snapshot")
	return nil
}

// Sign returns the X-Signature value for body: "sha256=" + hex HMAC.
func (e *Exporter) Sign(body []byte) string {
	h := hmac.New(sha256.New, []byte(e.secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// WriteCSV writes the formatted dimension table.
func WriteCSV(w io.Writer, table models.DimensionTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := cw.Write(append([]string{row.Dimension}, row.Display.Cells()...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the dimension table as a spreadsheet. Metric cells hold
// raw numbers so they stay sortable; undefined CPA and ROAS cells are N/A.
func WriteXLSX(w io.Writer, table models.DimensionTable) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for r, row := range table.Rows {
		values := []interface{}{
			row.Dimension,
			row.Spend,
			row.Clicks,
			row.Conversions,
			row.CTR,
			optional(row.CPA, row.Display.CPA),
			optional(row.ROAS, row.Display.ROAS),
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func optional(v *float64, display string) interface{} {
	if v == nil {
		return display
	}
	return *v
}
