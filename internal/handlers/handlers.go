package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ad-reporting/internal/charts"
	"ad-reporting/internal/config"
	"ad-reporting/internal/export"
	"ad-reporting/internal/filter"
	"ad-reporting/internal/metrics"
	"ad-reporting/internal/models"
	"ad-reporting/internal/registry"
	"ad-reporting/internal/storage"
)

type Handler struct {
	config     *config.Config
	store      *storage.MemoryStore
	calculator *metrics.Calculator
	exporter   *export.Exporter
	logger     *logrus.Logger
}

func New(cfg *config.Config, store *storage.MemoryStore, calculator *metrics.Calculator,
	exporter *export.Exporter, logger *logrus.Logger) *Handler {
	return &Handler{
		config:     cfg,
		store:      store,
		calculator: calculator,
		exporter:   exporter,
		logger:     logger,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.HealthCheck)
	r.GET("/readyz", h.ReadinessCheck)

	r.GET("/reports", h.ListReports)
	reports := r.Group("/reports/:type")
	reports.GET("/controls", h.GetControls)
	reports.GET("/quality", h.GetDataQualityReport)
	reports.GET("/dashboard", h.GetDashboard)
	reports.GET("/kpis", h.GetKPIs)
	reports.GET("/table", h.GetDimensionTable)
	reports.GET("/charts/timeseries", h.GetTimeSeries)
	reports.GET("/charts/platforms", h.GetPlatformTotals)
	reports.GET("/charts/heatmap", h.GetHeatmap)
	reports.GET("/export", h.ExportTable)
	reports.POST("/snapshot", h.PushSnapshot)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "ad-reporting",
	})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	report := registry.Resolve(h.config.DefaultReport)
	if h.store.Has(report) {
		cached := make([]string, 0)
		for t := range h.store.Cached() {
			cached = append(cached, string(t))
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"cached": cached,
		})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":  "not ready",
		"message": fmt.Sprintf("%s not loaded yet", report),
	})
}

func (h *Handler) ListReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": registry.Resolve(h.config.DefaultReport),
		"reports": registry.Configs(),
	})
}

func (h *Handler) GetControls(c *gin.Context) {
	_, table, ok := h.table(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, filter.Controls(table))
}

func (h *Handler) GetDataQualityReport(c *gin.Context) {
	_, table, ok := h.table(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":    table.Report,
		"columns":   table.Columns,
		"loaded_at": table.LoadedAt.Format(time.RFC3339),
		"quality":   table.Quality,
	})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	cfg, records, ok := h.filtered(c)
	if !ok {
		return
	}

	kpis := h.calculator.ComputeKPIs(records)
	c.JSON(http.StatusOK, models.Dashboard{
		Report:    cfg,
		KPIs:      kpis,
		Tiles:     h.calculator.KPITiles(kpis),
		Series:    charts.TimeSeries(records),
		Platforms: charts.PlatformTotals(records),
		Heatmap:   charts.ROASMatrix(records, cfg.Type, cfg),
		Table:     h.calculator.ComputeDimensionTable(records, cfg.Type, cfg),
		Rows:      len(records),
	})
}

func (h *Handler) GetKPIs(c *gin.Context) {
	_, records, ok := h.filtered(c)
	if !ok {
		return
	}
	kpis := h.calculator.ComputeKPIs(records)
	c.JSON(http.StatusOK, gin.H{
		"kpis":  kpis,
		"tiles": h.calculator.KPITiles(kpis),
	})
}

func (h *Handler) GetDimensionTable(c *gin.Context) {
	cfg, records, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.calculator.ComputeDimensionTable(records, cfg.Type, cfg))
}

func (h *Handler) GetTimeSeries(c *gin.Context) {
	_, records, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": charts.TimeSeries(records)})
}

func (h *Handler) GetPlatformTotals(c *gin.Context) {
	_, records, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, charts.PlatformTotals(records))
}

func (h *Handler) GetHeatmap(c *gin.Context) {
	cfg, records, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, charts.ROASMatrix(records, cfg.Type, cfg))
}

func (h *Handler) ExportTable(c *gin.Context) {
	cfg, records, ok := h.filtered(c)
	if !ok {
		return
	}
	table := h.calculator.ComputeDimensionTable(records, cfg.Type, cfg)

	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	formatName := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	switch formatName {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, table)
	case "csv":
		contentType = "text/csv"
		err = export.WriteCSV(&buf, table)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or csv"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("report", cfg.Type).Error("Failed to export table")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export table"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cfg.Slug+"_performance."+formatName))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *Handler) PushSnapshot(c *gin.Context) {
	if h.config.SinkURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sink not configured"})
		return
	}

	cfg, table, ok := h.table(c)
	if !ok {
		return
	}
	sel, ok := h.selection(c, table)
	if !ok {
		return
	}
	records := filter.Select(table.Records, sel)

	snapshot := models.Snapshot{
		Report:      cfg.Type,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Platforms:   sel.Platforms,
		KPIs:        h.calculator.ComputeKPIs(records),
		Table:       h.calculator.ComputeDimensionTable(records, cfg.Type, cfg),
	}
	if len(sel.Dates) == 2 {
		snapshot.From = sel.Dates[0].Format("2006-01-02")
		snapshot.To = sel.Dates[1].Format("2006-01-02")
	}

	if err := h.exporter.PushSnapshot(c.Request.Context(), h.config.SinkURL, snapshot); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to push snapshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"report":      cfg.Type,
		"rows":        len(snapshot.Table.Rows),
		"exported_at": snapshot.GeneratedAt,
	})
}

// table resolves the :type parameter and returns its cached table.
func (h *Handler) table(c *gin.Context) (models.ReportConfig, *models.Table, bool) {
	report := registry.Resolve(c.Param("type"))
	cfg := registry.MustGet(report)

	table, err := h.store.Get(c.Request.Context(), report)
	if err != nil {
		h.logger.WithError(err).WithField("report", report).Error("Failed to load report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report data"})
		return cfg, nil, false
	}
	return cfg, table, true
}

// selection reads the filter controls from the query string. Without a
// platform parameter every platform of the table is selected.
func (h *Handler) selection(c *gin.Context, table *models.Table) (models.FilterSelection, bool) {
	rawDates := c.QueryArray("date")
	if len(rawDates) == 0 {
		if start, ok := c.GetQuery("start"); ok {
			rawDates = append(rawDates, start)
		}
		if end, ok := c.GetQuery("end"); ok {
			rawDates = append(rawDates, end)
		}
	}
	dates, err := filter.ParseDateRange(rawDates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.FilterSelection{}, false
	}

	platforms := filter.Platforms(table.Records)
	if values, ok := c.GetQueryArray("platform"); ok {
		platforms = splitList(values)
	}

	return models.FilterSelection{Dates: dates, Platforms: platforms}, true
}

func (h *Handler) filtered(c *gin.Context) (models.ReportConfig, []models.Record, bool) {
	cfg, table, ok := h.table(c)
	if !ok {
		return cfg, nil, false
	}
	sel, ok := h.selection(c, table)
	if !ok {
		return cfg, nil, false
	}
	return cfg, filter.Select(table.Records, sel), true
}

func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
