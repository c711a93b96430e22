// Package model defines shared data structures.
package model

import "time"

// Choice is one selectable answer of a question.
type Choice struct {
	ID    string `json:"id" toml:"id"`
	Text  string `json:"text" toml:"text"`
	Emoji string `json:"emoji,omitempty" toml:"emoji"`
	Value string `json:"value" toml:"value"`
}

// Question is a quiz question with its ordered choices.
type Question struct {
	ID      string   `json:"id" toml:"id"`
	Prompt  string   `json:"prompt" toml:"prompt"`
	Choices []Choice `json:"choices" toml:"choices"`
}

// ProfileDetails are the per-answer descriptors shown on the result screen.
type ProfileDetails struct {
	Desire    string `json:"desire" toml:"desire"`
	Frequency string `json:"frequency" toml:"frequency"`
	MainBlock string `json:"main_block" toml:"main-block"`
}

// Profile is the result a visitor receives after submitting their contact.
type Profile struct {
	ID          string         `json:"id" toml:"id"`
	Title       string         `json:"title" toml:"title"`
	Emoji       string         `json:"emoji" toml:"emoji"`
	Description string         `json:"description" toml:"description"`
	Details     ProfileDetails `json:"details" toml:"details"`
}

// Attribution captures where a visitor came from.
type Attribution struct {
	Variant     string `json:"variant,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	DeviceType  string `json:"device_type,omitempty"`
	FBClickID   string `json:"fbclid,omitempty"`
	GClickID    string `json:"gclid,omitempty"`
}

// DirectSource buckets records that arrived without a UTM source.
const DirectSource = "direct"

// Milestone names a funnel stage or tracked interaction.
type Milestone string

// Funnel milestones in flow order.
const (
	MilestonePageViewed         Milestone = "page_viewed"
	MilestoneQuizStarted        Milestone = "quiz_started"
	MilestoneQuestionShown      Milestone = "question_shown"
	MilestoneAnswerSubmitted    Milestone = "answer_submitted"
	MilestonePatternRevealed    Milestone = "pattern_revealed"
	MilestoneEmailScreenReached Milestone = "email_screen_reached"
	MilestoneLeadCaptured       Milestone = "lead_captured"
	MilestoneQuizCompleted      Milestone = "quiz_completed"
	MilestoneResultViewed       Milestone = "result_viewed"
	MilestoneVSLClicked         Milestone = "vsl_clicked"
)

// MilestoneFields carries the optional payload of a milestone.
// Only the fields relevant to the milestone are set.
type MilestoneFields struct {
	Attribution    *Attribution      `json:"attribution,omitempty"`
	QuestionIndex  int               `json:"question_index,omitempty"`
	QuestionID     string            `json:"question_id,omitempty"`
	Value          string            `json:"value,omitempty"`
	Pattern        string            `json:"pattern,omitempty"`
	Email          string            `json:"email,omitempty"`
	Name           string            `json:"name,omitempty"`
	Profile        string            `json:"profile,omitempty"`
	ReadinessScore int               `json:"readiness_score,omitempty"`
	Answers        map[string]string `json:"answers,omitempty"`
}

// FunnelRecord is the persisted funnel trail of one visitor session.
// A nil milestone timestamp means the stage was not reached.
type FunnelRecord struct {
	ID                   string
	CreatedAt            time.Time
	PageViewedAt         *time.Time
	QuizStartedAt        *time.Time
	EmailScreenReachedAt *time.Time
	QuizCompletedAt      *time.Time
	ResultViewedAt       *time.Time
	VSLClickedAt         *time.Time
	VSLClickCount        int
	LastQuestionReached  int
	Email                string
	Name                 string
	Profile              string
	ReadinessScore       int
	Answers              map[string]string
	Attribution          Attribution
}

// RecordFilter narrows the records loaded for reporting.
type RecordFilter struct {
	Since   *time.Time
	Source  string
	Variant string
}

// Config defines quiz run settings.
type Config struct {
	Variant string
	DBPath  string
}

// ReportConfig defines filters and options for dashboard and report output.
type ReportConfig struct {
	Filter   RecordFilter
	Location *time.Location
}
