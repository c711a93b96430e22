package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/funnelquiz/internal/attribution"
	"github.com/verte-zerg/funnelquiz/internal/logger"
	"github.com/verte-zerg/funnelquiz/internal/model"
	"github.com/verte-zerg/funnelquiz/internal/quiz"
)

// SessionHandler exposes the quiz flow to web front ends.
type SessionHandler struct {
	registry *Registry
	content  *quiz.Content
	tracker  quiz.Tracker
	log      *logger.Logger
}

// NewSessionHandler builds a handler serving one quiz variant.
func NewSessionHandler(registry *Registry, content *quiz.Content, tracker quiz.Tracker, log *logger.Logger) *SessionHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionHandler{registry: registry, content: content, tracker: tracker, log: log}
}

// CreateSessionRequest describes how a visitor landed. All fields are optional;
// without them the request query string and headers are used.
type CreateSessionRequest struct {
	LandingURL  string             `json:"landing_url"`
	Referrer    string             `json:"referrer"`
	Attribution *model.Attribution `json:"attribution"`
}

type answerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	ChoiceID   string `json:"choice_id" binding:"required"`
}

type contactRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OverlayView is the overlay part of a session view.
type OverlayView struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// SessionView is the JSON representation of a session.
type SessionView struct {
	SessionID      string            `json:"session_id"`
	Screen         int               `json:"screen"`
	Progress       float64           `json:"progress"`
	Overlay        *OverlayView      `json:"overlay,omitempty"`
	Question       *model.Question   `json:"question,omitempty"`
	Answers        map[string]string `json:"answers"`
	Profile        *model.Profile    `json:"profile,omitempty"`
	ReadinessScore *int              `json:"readiness_score,omitempty"`
}

func viewOf(m *quiz.Machine) SessionView {
	st := m.State()
	v := SessionView{
		SessionID: m.SessionID(),
		Screen:    int(st.Screen),
		Progress:  m.Progress(),
		Answers:   st.Answers,
	}
	if st.Overlay != quiz.OverlayNone {
		v.Overlay = &OverlayView{Kind: st.Overlay.String(), Text: m.OverlayText()}
	}
	if q, ok := m.CurrentQuestion(); ok && st.Overlay == quiz.OverlayNone {
		v.Question = &q
	}
	if p, ok := m.FinalProfile(); ok {
		score := m.ReadinessScore()
		v.Profile = &p
		v.ReadinessScore = &score
	}
	return v
}

// Create lands a new visitor and returns the fresh session.
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	attr, err := h.attributionFor(c, req)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	s, err := h.registry.create(quiz.Options{
		Content:     h.content,
		Tracker:     h.tracker,
		Attribution: attr,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.machine.Land(); err != nil {
		respondTransitionError(c, err)
		return
	}
	h.log.Info("session created", "session_id", s.machine.SessionID(), "variant", attr.Variant, "utm_source", attr.UTMSource)
	c.JSON(http.StatusCreated, viewOf(s.machine))
}

func (h *SessionHandler) attributionFor(c *gin.Context, req CreateSessionRequest) (model.Attribution, error) {
	referrer := firstNonEmpty(req.Referrer, c.GetHeader("Referer"))
	userAgent := c.GetHeader("User-Agent")
	switch {
	case req.Attribution != nil:
		attr := *req.Attribution
		if attr.Referrer == "" {
			attr.Referrer = referrer
		}
		if attr.UserAgent == "" {
			attr.UserAgent = userAgent
		}
		return attribution.Normalize(attr), nil
	case req.LandingURL != "":
		return attribution.FromURL(req.LandingURL, referrer, userAgent)
	default:
		return attribution.FromQuery(c.Request.URL.Query(), referrer, userAgent), nil
	}
}

// Get returns the current state of a session.
func (h *SessionHandler) Get(c *gin.Context) {
	h.withSession(c, func(m *quiz.Machine) error { return nil })
}

// Start leaves the intro screen.
func (h *SessionHandler) Start(c *gin.Context) {
	h.withSession(c, func(m *quiz.Machine) error { return m.Start() })
}

// Answer records a choice for the current question.
func (h *SessionHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	h.withSession(c, func(m *quiz.Machine) error { return m.Answer(req.QuestionID, req.ChoiceID) })
}

// Continue dismisses the active overlay.
func (h *SessionHandler) Continue(c *gin.Context) {
	h.withSession(c, func(m *quiz.Machine) error { return m.DismissOverlay() })
}

// Contact submits the lead form.
func (h *SessionHandler) Contact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	h.withSession(c, func(m *quiz.Machine) error {
		if err := m.SubmitContact(req.Email, req.Name); err != nil {
			return err
		}
		p, _ := m.FinalProfile()
		h.log.Info("lead captured", "session_id", m.SessionID(), "email", req.Email, "profile", p.ID)
		return nil
	})
}

// VSL records a click on the result call to action.
func (h *SessionHandler) VSL(c *gin.Context) {
	h.withSession(c, func(m *quiz.Machine) error { return m.ClickVSL() })
}

func (h *SessionHandler) withSession(c *gin.Context, fn func(m *quiz.Machine) error) {
	id := strings.TrimSpace(c.Param("id"))
	s, ok := h.registry.get(id)
	if !ok {
		respondError(c, http.StatusNotFound, CodeSessionNotFound, errors.New("session not found or expired"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.machine); err != nil {
		h.log.Debug("transition rejected", "session_id", id, "error", err)
		respondTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(s.machine))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
