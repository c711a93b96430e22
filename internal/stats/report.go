package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

// RecordReader loads funnel records.
type RecordReader interface {
	ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.FunnelRecord, error)
}

// Report contains precomputed data for dashboard and text rendering.
type Report struct {
	GeneratedAt time.Time
	Records     int
	Metrics     Metrics
	Dropoffs    []QuestionDropoff
	Sources     []SourceCount
	Cohorts     []Cohort
	Leads       LeadStats
}

// BuildReport loads records and computes every funnel view.
func BuildReport(ctx context.Context, reader RecordReader, cfg model.ReportConfig) (Report, error) {
	records, err := reader.ListRecords(ctx, cfg.Filter)
	if err != nil {
		return Report{}, err
	}
	return NewReport(records, time.Now(), cfg.Location), nil
}

// NewReport computes a report from already loaded records.
func NewReport(records []model.FunnelRecord, now time.Time, loc *time.Location) Report {
	return Report{
		GeneratedAt: now,
		Records:     len(records),
		Metrics:     ComputeMetrics(records),
		Dropoffs:    QuestionDropoffs(records),
		Sources:     TrafficSources(records),
		Cohorts:     Cohorts(records, loc),
		Leads:       LeadSummary(records, now, loc),
	}
}
