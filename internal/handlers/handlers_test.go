package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-reporting/internal/client"
	"ad-reporting/internal/config"
	"ad-reporting/internal/export"
	"ad-reporting/internal/loader"
	"ad-reporting/internal/metrics"
	"ad-reporting/internal/models"
	"ad-reporting/internal/registry"
	"ad-reporting/internal/storage"
	"ad-reporting/internal/transformer"
)

const campaignCSV = `date_day,platform,campaign_name,spend,impressions,clicks,conversions,conversions_value
2024-01-01,google_ads,Brand,1500,20000,400,20,4500
2024-01-02,meta,Brand,500,5000,100,5,500
2024-01-03,google_ads,Retargeting,3000,10000,300,0,0
`

const urlCSV = `date_day,platform,base_url,spend,impressions,clicks,conversions,conversions_value
2024-01-01,google_ads,https://example.com/pricing,100,1000,10,2,250
`

type testServer struct {
	router *gin.Engine
	store  *storage.MemoryStore
}

func setup(t *testing.T, sinkURL string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	write := func(report models.ReportType, content string) {
		path := registry.SourcePath(dir, registry.MustGet(report))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(models.CampaignReport, campaignCSV)
	write(models.URLReport, urlCSV)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		DataDir:       dir,
		DefaultReport: string(models.URLReport),
		SinkURL:       sinkURL,
		SinkSecret:    "secret",
		HTTPTimeout:   time.Second,
		RetryAttempts: 1,
	}
	store := storage.NewMemoryStore(loader.New(dir, transformer.New(), logger, nil).Load, nil)
	exporter := export.NewExporter(cfg.SinkSecret, client.NewHTTPClient(cfg, logger), logger)

	router := gin.New()
	New(cfg, store, metrics.NewCalculator(), exporter, logger).Register(router)
	return &testServer{router: router, store: store}
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealthCheck(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestReadinessFollowsDefaultReport(t *testing.T) {
	s := setup(t, "")
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/readyz").Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/reports/url/kpis").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/readyz").Code)
}

func TestListReports(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/reports")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Default models.ReportType     `json:"default"`
		Reports []models.ReportConfig `json:"reports"`
	}
	decode(t, w, &body)
	assert.Equal(t, models.URLReport, body.Default)
	assert.Len(t, body.Reports, len(registry.List()))
}

func TestGetControls(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/reports/campaign/controls")
	require.Equal(t, http.StatusOK, w.Code)

	var controls models.Controls
	decode(t, w, &controls)
	assert.Equal(t, models.CampaignReport, controls.Report)
	assert.Equal(t, "2024-01-01", controls.MinDate)
	assert.Equal(t, "2024-01-03", controls.MaxDate)
	assert.Equal(t, []string{"google_ads", "meta"}, controls.Platforms)
}

func TestGetDataQualityReport(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/reports/campaign/quality")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Report  models.ReportType     `json:"report"`
		Columns []string              `json:"columns"`
		Quality models.QualitySummary `json:"quality"`
	}
	decode(t, w, &body)
	assert.Equal(t, models.CampaignReport, body.Report)
	assert.Contains(t, body.Columns, "campaign_name")
	assert.Equal(t, 3, body.Quality.TotalRows)
	assert.Equal(t, 3, body.Quality.CleanRows)
}

func TestGetDashboard(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/reports/Campaign%20Report/dashboard")
	require.Equal(t, http.StatusOK, w.Code)

	var dash models.Dashboard
	decode(t, w, &dash)
	assert.Equal(t, models.CampaignReport, dash.Report.Type)
	assert.Equal(t, 3, dash.Rows)
	assert.Equal(t, 5000.0, dash.KPIs.TotalSpend)
	require.Len(t, dash.Table.Rows, 2)
	assert.Equal(t, "Retargeting", dash.Table.Rows[0].Dimension)
	assert.Equal(t, "N/A", dash.Table.Rows[0].Display.CPA)
	assert.Equal(t, "$80.00", dash.Table.Rows[1].Display.CPA)
	assert.Len(t, dash.Series, 3)
	assert.Equal(t, []string{"Brand", "Retargeting"}, dash.Heatmap.Rows)
	assert.Equal(t, "google_ads", dash.Platforms.Bars[0].Platform)
}

func TestFiltersNarrowRecords(t *testing.T) {
	s := setup(t, "")

	w := s.do(http.MethodGet, "/reports/campaign/kpis?platform=meta")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		KPIs models.KPISummary `json:"kpis"`
	}
	decode(t, w, &body)
	assert.Equal(t, 500.0, body.KPIs.TotalSpend)

	w = s.do(http.MethodGet, "/reports/campaign/kpis?start=2024-01-02&end=2024-01-03")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.Equal(t, 3500.0, body.KPIs.TotalSpend)

	w = s.do(http.MethodGet, "/reports/campaign/kpis?platform=")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.Zero(t, body.KPIs.TotalSpend)
}

func TestBadDateIsRejected(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/reports/campaign/table?date=01/02/2024")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownReportFallsBackToDefault(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/reports/nonsense/table")
	require.Equal(t, http.StatusOK, w.Code)

	var table models.DimensionTable
	decode(t, w, &table)
	assert.Equal(t, models.URLReport, table.Report)
	assert.Equal(t, "URL Path", table.Headers[0])
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "/pricing", table.Rows[0].Dimension)
}

func TestMissingSourceIsServerError(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/reports/keyword/table")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExportCSV(t *testing.T) {
	s := setup(t, "")
	w := s.do(http.MethodGet, "/reports/campaign/export?format=csv")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Header().Get("Content-Disposition"), "campaign_performance.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Campaign,Spend,Clicks,Conversions,CTR,CPA,ROAS", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Retargeting,"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	s := setup(t, "")
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/reports/campaign/export?format=pdf").Code)
}

func TestSnapshotWithoutSink(t *testing.T) {
	s := setup(t, "")
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodPost, "/reports/campaign/snapshot").Code)
}

func TestSnapshotPushesToSink(t *testing.T) {
	var got models.Snapshot
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Signature"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer sink.Close()

	s := setup(t, sink.URL)
	w := s.do(http.MethodPost, "/reports/campaign/snapshot?start=2024-01-01&end=2024-01-02")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, models.CampaignReport, got.Report)
	assert.Equal(t, "2024-01-01", got.From)
	assert.Equal(t, "2024-01-02", got.To)
	require.Len(t, got.Table.Rows, 1)
	assert.Equal(t, "Brand", got.Table.Rows[0].Dimension)
}

func TestSnapshotSinkFailure(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer sink.Close()

	s := setup(t, sink.URL)
	assert.Equal(t, http.StatusBadGateway, s.do(http.MethodPost, "/reports/campaign/snapshot").Code)
}
