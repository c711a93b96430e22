package quiz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

// Errors returned by Machine transitions. Callers match them with errors.Is.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrUnknownChoice     = errors.New("unknown choice")
	ErrMissingContact    = errors.New("email and name are required")
)

// Screen is a position in the quiz flow.
type Screen int

// Screens in flow order. Questions occupy 1 through 3.
const (
	ScreenIntro  Screen = 0
	ScreenEmail  Screen = 4
	ScreenResult Screen = 5
)

// ScreenCount is the number of steps used for progress reporting.
const ScreenCount = 5

// IsQuestion reports whether the screen shows a question.
func (s Screen) IsQuestion() bool {
	return s >= 1 && s <= QuestionCount
}

// Overlay is the interstitial shown between screens.
type Overlay int

// Overlays, one per answered question.
const (
	OverlayNone Overlay = iota
	OverlayRevelation
	OverlayPattern
	OverlayPreEmail
)

func (o Overlay) String() string {
	switch o {
	case OverlayRevelation:
		return "revelation"
	case OverlayPattern:
		return "pattern"
	case OverlayPreEmail:
		return "pre_email"
	default:
		return "none"
	}
}

// Tracker receives funnel events from a machine. Implementations must not block.
type Tracker interface {
	Milestone(sessionID string, milestone model.Milestone, at time.Time, fields model.MilestoneFields)
	Answer(sessionID, questionID, value string, at time.Time)
}

type nopTracker struct{}

func (nopTracker) Milestone(string, model.Milestone, time.Time, model.MilestoneFields) {}
func (nopTracker) Answer(string, string, string, time.Time)                            {}

// State is a snapshot of a session.
type State struct {
	Screen    Screen
	Overlay   Overlay
	Answers   map[string]string
	Email     string
	Name      string
	ProfileID string
	Landed    bool
}

// Options configures a Machine.
type Options struct {
	SessionID   string
	Content     *Content
	Tracker     Tracker
	Attribution model.Attribution
	Now         func() time.Time
}

// Machine drives one visitor through the quiz. It is not safe for concurrent use.
type Machine struct {
	sessionID   string
	content     *Content
	tracker     Tracker
	attribution model.Attribution
	now         func() time.Time

	screen    Screen
	overlay   Overlay
	answers   map[string]string
	email     string
	name      string
	profile   model.Profile
	hasResult bool
	landed    bool
}

// New creates a machine positioned on the intro screen.
func New(opts Options) (*Machine, error) {
	if strings.TrimSpace(opts.SessionID) == "" {
		return nil, errors.New("session id is required")
	}
	if opts.Content == nil {
		return nil, errors.New("quiz content is required")
	}
	if err := opts.Content.Validate(); err != nil {
		return nil, err
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = nopTracker{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Machine{
		sessionID:   opts.SessionID,
		content:     opts.Content,
		tracker:     tracker,
		attribution: opts.Attribution,
		now:         now,
		answers:     make(map[string]string, QuestionCount),
	}, nil
}

// SessionID returns the session identifier.
func (m *Machine) SessionID() string {
	return m.sessionID
}

// Content returns the variant the machine runs.
func (m *Machine) Content() *Content {
	return m.content
}

// Attribution returns the attribution captured for the session.
func (m *Machine) Attribution() model.Attribution {
	return m.attribution
}

// Land records the page view. It may be called once.
func (m *Machine) Land() error {
	if m.landed {
		return fmt.Errorf("%w: page view already recorded", ErrInvalidTransition)
	}
	m.landed = true
	attr := m.attribution
	m.tracker.Milestone(m.sessionID, model.MilestonePageViewed, m.now(), model.MilestoneFields{Attribution: &attr})
	return nil
}

// Start leaves the intro screen for the first question.
func (m *Machine) Start() error {
	if m.screen != ScreenIntro || m.overlay != OverlayNone {
		return fmt.Errorf("%w: start on screen %d", ErrInvalidTransition, m.screen)
	}
	m.screen = 1
	at := m.now()
	m.tracker.Milestone(m.sessionID, model.MilestoneQuizStarted, at, model.MilestoneFields{})
	m.emitQuestionShown(at)
	return nil
}

// Answer records a choice for the current question and raises its overlay.
func (m *Machine) Answer(questionID, choiceID string) error {
	if m.overlay != OverlayNone {
		return fmt.Errorf("%w: %s overlay is showing", ErrInvalidTransition, m.overlay)
	}
	if !m.screen.IsQuestion() {
		return fmt.Errorf("%w: answer on screen %d", ErrInvalidTransition, m.screen)
	}
	q := m.content.Questions[m.screen-1]
	if questionID != q.ID {
		if !m.knownQuestion(questionID) {
			return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
		}
		return fmt.Errorf("%w: question %q is not current", ErrInvalidTransition, questionID)
	}
	var choice *model.Choice
	for i := range q.Choices {
		if q.Choices[i].ID == choiceID {
			choice = &q.Choices[i]
			break
		}
	}
	if choice == nil {
		return fmt.Errorf("%w: %q for question %q", ErrUnknownChoice, choiceID, questionID)
	}

	m.answers[q.ID] = choice.Value
	switch m.screen {
	case 1:
		m.overlay = OverlayRevelation
	case 2:
		m.overlay = OverlayPattern
	default:
		m.overlay = OverlayPreEmail
	}

	at := m.now()
	m.tracker.Answer(m.sessionID, q.ID, choice.Value, at)
	m.tracker.Milestone(m.sessionID, model.MilestoneAnswerSubmitted, at, model.MilestoneFields{
		QuestionIndex: int(m.screen),
		QuestionID:    q.ID,
		Value:         choice.Value,
	})
	if m.overlay == OverlayPattern {
		m.tracker.Milestone(m.sessionID, model.MilestonePatternRevealed, at, model.MilestoneFields{
			Pattern: m.content.PatternText(m.answers),
		})
	}
	return nil
}

// DismissOverlay closes the overlay and advances to the next screen.
func (m *Machine) DismissOverlay() error {
	if m.overlay == OverlayNone {
		return fmt.Errorf("%w: no overlay to dismiss", ErrInvalidTransition)
	}
	m.overlay = OverlayNone
	m.screen++
	at := m.now()
	if m.screen.IsQuestion() {
		m.emitQuestionShown(at)
	} else if m.screen == ScreenEmail {
		m.tracker.Milestone(m.sessionID, model.MilestoneEmailScreenReached, at, model.MilestoneFields{})
	}
	return nil
}

// SubmitContact captures the lead and shows the result.
func (m *Machine) SubmitContact(email, name string) error {
	if m.screen != ScreenEmail || m.overlay != OverlayNone {
		return fmt.Errorf("%w: submit on screen %d", ErrInvalidTransition, m.screen)
	}
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return ErrMissingContact
	}

	m.email = email
	m.name = name
	m.profile = m.content.ResolveProfile(m.answers)
	m.hasResult = true
	m.screen = ScreenResult

	at := m.now()
	m.tracker.Milestone(m.sessionID, model.MilestoneLeadCaptured, at, model.MilestoneFields{
		Email:          email,
		Name:           name,
		Profile:        m.profile.Title,
		ReadinessScore: m.content.ReadinessScore(m.answers),
		Answers:        copyAnswers(m.answers),
	})
	m.tracker.Milestone(m.sessionID, model.MilestoneQuizCompleted, at, model.MilestoneFields{Profile: m.profile.Title})
	m.tracker.Milestone(m.sessionID, model.MilestoneResultViewed, at, model.MilestoneFields{Profile: m.profile.Title})
	return nil
}

// ClickVSL records a click on the result call to action. It may repeat.
func (m *Machine) ClickVSL() error {
	if m.screen != ScreenResult {
		return fmt.Errorf("%w: vsl click on screen %d", ErrInvalidTransition, m.screen)
	}
	m.tracker.Milestone(m.sessionID, model.MilestoneVSLClicked, m.now(), model.MilestoneFields{Profile: m.profile.Title})
	return nil
}

// CurrentQuestion returns the question of the current screen.
func (m *Machine) CurrentQuestion() (model.Question, bool) {
	if !m.screen.IsQuestion() {
		return model.Question{}, false
	}
	return m.content.Question(int(m.screen))
}

// ActiveOverlay returns the overlay currently showing.
func (m *Machine) ActiveOverlay() Overlay {
	return m.overlay
}

// OverlayText returns the headline text of the active overlay.
func (m *Machine) OverlayText() string {
	switch m.overlay {
	case OverlayRevelation:
		return m.content.Revelation(m.content.answerAt(m.answers, 1))
	case OverlayPattern:
		return m.content.PatternText(m.answers)
	case OverlayPreEmail:
		return m.content.PreEmail.Headline
	default:
		return ""
	}
}

// FinalProfile returns the resolved profile once the contact was submitted.
func (m *Machine) FinalProfile() (model.Profile, bool) {
	return m.profile, m.hasResult
}

// ReadinessScore scores the answers collected so far.
func (m *Machine) ReadinessScore() int {
	return m.content.ReadinessScore(m.answers)
}

// Progress returns the completed fraction of the flow. An overlay counts half a step.
func (m *Machine) Progress() float64 {
	steps := float64(m.screen)
	if m.overlay != OverlayNone {
		steps += 0.5
	}
	return steps / ScreenCount
}

// State returns a copy of the session state.
func (m *Machine) State() State {
	st := State{
		Screen:  m.screen,
		Overlay: m.overlay,
		Answers: copyAnswers(m.answers),
		Email:   m.email,
		Name:    m.name,
		Landed:  m.landed,
	}
	if m.hasResult {
		st.ProfileID = m.profile.ID
	}
	return st
}

func (m *Machine) emitQuestionShown(at time.Time) {
	q, _ := m.content.Question(int(m.screen))
	m.tracker.Milestone(m.sessionID, model.MilestoneQuestionShown, at, model.MilestoneFields{
		QuestionIndex: int(m.screen),
		QuestionID:    q.ID,
	})
}

func (m *Machine) knownQuestion(id string) bool {
	for _, q := range m.content.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func copyAnswers(answers map[string]string) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}
