package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/funnelquiz/internal/model"
	"github.com/verte-zerg/funnelquiz/internal/stats"
)

// AdminHandler serves funnel metrics computed from stored records.
type AdminHandler struct {
	reader stats.RecordReader
	now    func() time.Time
}

// NewAdminHandler builds an admin handler over a record reader.
func NewAdminHandler(reader stats.RecordReader) *AdminHandler {
	return &AdminHandler{reader: reader, now: time.Now}
}

// reportConfig parses since (YYYY-MM-DD), source, variant and tz query parameters.
// Dates are UTC unless tz names a zone.
func reportConfig(c *gin.Context) (model.ReportConfig, error) {
	cfg := model.ReportConfig{Location: time.UTC}
	if tz := strings.TrimSpace(c.Query("tz")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("invalid tz: %w", err)
		}
		cfg.Location = loc
	}
	if since := strings.TrimSpace(c.Query("since")); since != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, since, cfg.Location)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date: %w", err)
		}
		cfg.Filter.Since = &parsed
	}
	cfg.Filter.Source = strings.TrimSpace(c.Query("source"))
	cfg.Filter.Variant = strings.TrimSpace(c.Query("variant"))
	return cfg, nil
}

func (h *AdminHandler) load(c *gin.Context) (model.ReportConfig, []model.FunnelRecord, bool) {
	cfg, err := reportConfig(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return cfg, nil, false
	}
	records, err := h.reader.ListRecords(c.Request.Context(), cfg.Filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, fmt.Errorf("failed to load records: %w", err))
		return cfg, nil, false
	}
	return cfg, records, true
}

// Metrics returns stage counts and conversion rates.
func (h *AdminHandler) Metrics(c *gin.Context) {
	if _, records, ok := h.load(c); ok {
		c.JSON(http.StatusOK, gin.H{"metrics": stats.ComputeMetrics(records)})
	}
}

// Dropoffs returns per-question reach and drop-off.
func (h *AdminHandler) Dropoffs(c *gin.Context) {
	if _, records, ok := h.load(c); ok {
		c.JSON(http.StatusOK, gin.H{"dropoffs": stats.QuestionDropoffs(records)})
	}
}

// Sources returns the traffic source breakdown.
func (h *AdminHandler) Sources(c *gin.Context) {
	if _, records, ok := h.load(c); ok {
		c.JSON(http.StatusOK, gin.H{"sources": stats.TrafficSources(records)})
	}
}

// Cohorts returns per-day cohorts in the requested time zone.
func (h *AdminHandler) Cohorts(c *gin.Context) {
	if cfg, records, ok := h.load(c); ok {
		c.JSON(http.StatusOK, gin.H{"cohorts": stats.Cohorts(records, cfg.Location)})
	}
}

// Leads returns the lead summary.
func (h *AdminHandler) Leads(c *gin.Context) {
	if cfg, records, ok := h.load(c); ok {
		c.JSON(http.StatusOK, gin.H{"leads": stats.LeadSummary(records, h.now(), cfg.Location)})
	}
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports service liveness and, when configured, store reachability.
func Health(pinger Pinger, registry *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if registry != nil {
			body["sessions"] = registry.Len()
		}
		if pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				respondError(c, http.StatusServiceUnavailable, CodeUnavailable, fmt.Errorf("store unreachable: %w", err))
				return
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
