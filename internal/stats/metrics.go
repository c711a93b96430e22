// Package stats contains funnel metric calculations and reporting.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

// QuestionCount is the number of questions tracked for drop-off.
const QuestionCount = 3

// Metrics holds funnel stage counts and stage-to-stage conversion rates.
type Metrics struct {
	TotalPageViews     int `json:"total_page_views"`
	QuizStarted        int `json:"quiz_started"`
	EmailScreenReached int `json:"email_screen_reached"`
	EmailProvided      int `json:"email_provided"`
	QuizCompleted      int `json:"quiz_completed"`
	ResultViewed       int `json:"result_viewed"`
	VSLClicked         int `json:"vsl_clicked"`

	PageToQuizStart    float64 `json:"page_to_quiz_start"`
	StartToEmailScreen float64 `json:"start_to_email_screen"`
	EmailScreenToLead  float64 `json:"email_screen_to_lead"`
	LeadToCompleted    float64 `json:"lead_to_completed"`
	CompletedToResult  float64 `json:"completed_to_result"`
	ResultToVSL        float64 `json:"result_to_vsl"`
}

// Stage is one named step of the funnel with its count and the conversion
// rate from the previous step.
type Stage struct {
	Name  string
	Count int
	Rate  float64
}

// Stages lists the funnel steps in order. The first stage has no rate.
func (m Metrics) Stages() []Stage {
	return []Stage{
		{Name: "Page views", Count: m.TotalPageViews},
		{Name: "Quiz started", Count: m.QuizStarted, Rate: m.PageToQuizStart},
		{Name: "Email screen", Count: m.EmailScreenReached, Rate: m.StartToEmailScreen},
		{Name: "Email provided", Count: m.EmailProvided, Rate: m.EmailScreenToLead},
		{Name: "Quiz completed", Count: m.QuizCompleted, Rate: m.LeadToCompleted},
		{Name: "Result viewed", Count: m.ResultViewed, Rate: m.CompletedToResult},
		{Name: "VSL clicked", Count: m.VSLClicked, Rate: m.ResultToVSL},
	}
}

// QuestionDropoff is the reach and drop-off of one question.
type QuestionDropoff struct {
	Question    int     `json:"question"`
	Reached     int     `json:"reached"`
	DropoffRate float64 `json:"dropoff_rate"`
}

// SourceCount is the number of records attributed to a traffic source.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Cohort aggregates the records whose page view fell on one local day.
type Cohort struct {
	Date          string `json:"date"`
	PageViews     int    `json:"page_views"`
	QuizStarted   int    `json:"quiz_started"`
	EmailProvided int    `json:"email_provided"`
	QuizCompleted int    `json:"quiz_completed"`
	VSLClicked    int    `json:"vsl_clicked"`
}

// LeadStats summarizes captured leads.
type LeadStats struct {
	TotalLeads   int    `json:"total_leads"`
	LeadsToday   int    `json:"leads_today"`
	AvgReadiness int    `json:"avg_readiness"`
	TopProfile   string `json:"top_profile"`
}

// Rate returns num/den as a percentage, or 0 when den is not positive.
func Rate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// ComputeMetrics counts records per stage and derives the conversion rates.
func ComputeMetrics(records []model.FunnelRecord) Metrics {
	var m Metrics
	for _, r := range records {
		if r.PageViewedAt != nil {
			m.TotalPageViews++
		}
		if r.QuizStartedAt != nil {
			m.QuizStarted++
		}
		if r.EmailScreenReachedAt != nil {
			m.EmailScreenReached++
		}
		if r.Email != "" {
			m.EmailProvided++
		}
		if r.QuizCompletedAt != nil {
			m.QuizCompleted++
		}
		if r.ResultViewedAt != nil {
			m.ResultViewed++
		}
		if r.VSLClickedAt != nil {
			m.VSLClicked++
		}
	}
	m.PageToQuizStart = Rate(m.QuizStarted, m.TotalPageViews)
	m.StartToEmailScreen = Rate(m.EmailScreenReached, m.QuizStarted)
	m.EmailScreenToLead = Rate(m.EmailProvided, m.EmailScreenReached)
	m.LeadToCompleted = Rate(m.QuizCompleted, m.EmailProvided)
	m.CompletedToResult = Rate(m.ResultViewed, m.QuizCompleted)
	m.ResultToVSL = Rate(m.VSLClicked, m.ResultViewed)
	return m
}

// QuestionDropoffs reports how many records reached each question and the
// share lost since the previous one. The first question never drops.
func QuestionDropoffs(records []model.FunnelRecord) []QuestionDropoff {
	reached := make([]int, QuestionCount+1)
	for _, r := range records {
		for i := 1; i <= QuestionCount && r.LastQuestionReached >= i; i++ {
			reached[i]++
		}
	}
	out := make([]QuestionDropoff, 0, QuestionCount)
	for i := 1; i <= QuestionCount; i++ {
		d := QuestionDropoff{Question: i, Reached: reached[i]}
		if i > 1 {
			d.DropoffRate = Rate(reached[i-1]-reached[i], reached[i-1])
		}
		out = append(out, d)
	}
	return out
}

// TrafficSources counts records per UTM source, largest first.
func TrafficSources(records []model.FunnelRecord) []SourceCount {
	counts := map[string]int{}
	for _, r := range records {
		source := strings.TrimSpace(r.Attribution.UTMSource)
		if source == "" {
			source = model.DirectSource
		}
		counts[source]++
	}
	out := make([]SourceCount, 0, len(counts))
	for source, count := range counts {
		out = append(out, SourceCount{Source: source, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Source < out[j].Source
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// Cohorts groups records by the local date of their page view, most recent day first.
// Records without a page view are skipped.
func Cohorts(records []model.FunnelRecord, loc *time.Location) []Cohort {
	if loc == nil {
		loc = time.Local
	}
	byDay := map[string]*Cohort{}
	for _, r := range records {
		if r.PageViewedAt == nil {
			continue
		}
		day := r.PageViewedAt.In(loc).Format(time.DateOnly)
		c, ok := byDay[day]
		if !ok {
			c = &Cohort{Date: day}
			byDay[day] = c
		}
		c.PageViews++
		if r.QuizStartedAt != nil {
			c.QuizStarted++
		}
		if r.Email != "" {
			c.EmailProvided++
		}
		if r.QuizCompletedAt != nil {
			c.QuizCompleted++
		}
		if r.VSLClickedAt != nil {
			c.VSLClicked++
		}
	}
	out := make([]Cohort, 0, len(byDay))
	for _, c := range byDay {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// LeadSummary summarizes records with a captured email. Leads today are
// counted against the local date of now.
func LeadSummary(records []model.FunnelRecord, now time.Time, loc *time.Location) LeadStats {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(time.DateOnly)
	var stats LeadStats
	var readinessSum int
	profiles := map[string]int{}
	for _, r := range records {
		if r.Email == "" {
			continue
		}
		stats.TotalLeads++
		readinessSum += r.ReadinessScore
		if r.Profile != "" {
			profiles[r.Profile]++
		}
		at := r.CreatedAt
		if r.QuizCompletedAt != nil {
			at = *r.QuizCompletedAt
		}
		if at.In(loc).Format(time.DateOnly) == today {
			stats.LeadsToday++
		}
	}
	if stats.TotalLeads > 0 {
		stats.AvgReadiness = int(math.Round(float64(readinessSum) / float64(stats.TotalLeads)))
	}
	best := 0
	for profile, count := range profiles {
		if count > best || (count == best && profile < stats.TopProfile) {
			best = count
			stats.TopProfile = profile
		}
	}
	return stats
}
