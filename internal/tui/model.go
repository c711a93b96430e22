// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/funnelquiz/internal/logger"
	"github.com/verte-zerg/funnelquiz/internal/quiz"
)

const (
	inputName = iota
	inputEmail
	inputCount
)

const progressBarWidth = 20

// Model implements the Bubble Tea quiz UI over one quiz session.
type Model struct {
	machine *quiz.Machine
	content *quiz.Content
	log     *logger.Logger

	width  int
	height int

	cursor  int
	inputs  [inputCount]textinput.Model
	focus   int
	errMsg  string
	clicked bool
}

var (
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	ctaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#C89A3A")).Padding(0, 2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#C89A3A")).Padding(1, 2)
)

// NewModel lands the session and constructs a quiz TUI model.
func NewModel(machine *quiz.Machine, log *logger.Logger) (*Model, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := machine.Land(); err != nil {
		return nil, fmt.Errorf("failed to land session: %w", err)
	}
	content := machine.Content()
	m := &Model{
		machine: machine,
		content: content,
		log:     log,
	}
	name := textinput.New()
	name.Placeholder = content.Email.NameLabel
	name.CharLimit = 80
	email := textinput.New()
	email.Placeholder = content.Email.EmailLabel
	email.CharLimit = 254
	m.inputs[inputName] = name
	m.inputs[inputEmail] = email
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	default:
		if m.machine.State().Screen == quiz.ScreenEmail {
			return m, m.updateInputs(msg)
		}
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.machine.State()
	switch {
	case st.Overlay != quiz.OverlayNone:
		if isConfirm(msg) {
			m.apply(m.machine.DismissOverlay())
			if m.machine.State().Screen == quiz.ScreenEmail {
				return m, m.focusInput(inputName)
			}
		}
		return m, nil
	case st.Screen == quiz.ScreenIntro:
		if isConfirm(msg) {
			m.apply(m.machine.Start())
		}
		return m, nil
	case st.Screen.IsQuestion():
		m.handleQuestionKey(msg)
		return m, nil
	case st.Screen == quiz.ScreenEmail:
		return m, m.handleEmailKey(msg)
	default:
		return m.handleResultKey(msg)
	}
}

func (m *Model) handleQuestionKey(msg tea.KeyMsg) {
	q, ok := m.machine.CurrentQuestion()
	if !ok {
		return
	}
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(q.Choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.choose(q.ID, q.Choices[m.cursor].ID)
	default:
		if len(msg.Runes) == 1 {
			r := msg.Runes[0]
			idx := int(r - '1')
			if r >= '1' && r <= '9' && idx < len(q.Choices) {
				m.cursor = idx
				m.choose(q.ID, q.Choices[idx].ID)
			}
		}
	}
}

func (m *Model) choose(questionID, choiceID string) {
	if m.apply(m.machine.Answer(questionID, choiceID)) {
		m.cursor = 0
	}
}

func (m *Model) handleEmailKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		return m.focusInput((m.focus + 1) % inputCount)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.focusInput((m.focus + inputCount - 1) % inputCount)
	case tea.KeyEnter:
		name := m.inputs[inputName].Value()
		email := m.inputs[inputEmail].Value()
		if m.apply(m.machine.SubmitContact(email, name)) {
			for i := range m.inputs {
				m.inputs[i].Blur()
			}
		}
		return nil
	default:
		return m.updateInputs(msg)
	}
}

func (m *Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		if m.apply(m.machine.ClickVSL()) {
			m.clicked = true
		}
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) focusInput(idx int) tea.Cmd {
	m.focus = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == idx {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, inputCount)
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// apply records the outcome of a transition for display.
func (m *Model) apply(err error) bool {
	if err != nil {
		m.errMsg = err.Error()
		m.log.Debug("transition rejected", "session_id", m.machine.SessionID(), "error", err)
		return false
	}
	m.errMsg = ""
	return true
}

func isConfirm(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "enter", " ":
		return true
	default:
		return false
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := 0
	if m.width > 0 {
		contentWidth = int(float64(m.width) * 0.70)
		if contentWidth < 1 {
			contentWidth = 1
		}
	}
	body := m.renderBody(contentWidth)
	if m.width == 0 || m.height == 0 {
		return body + "\n" + m.renderFooter()
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(body)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	placed := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return placed + "\n" + footerLine
}

func (m *Model) renderBody(width int) string {
	st := m.machine.State()
	var lines []string
	switch {
	case st.Overlay != quiz.OverlayNone:
		lines = m.overlayLines(st.Overlay, width)
	case st.Screen == quiz.ScreenIntro:
		lines = m.introLines(width)
	case st.Screen.IsQuestion():
		lines = m.questionLines(width)
	case st.Screen == quiz.ScreenEmail:
		lines = m.emailLines(width)
	default:
		lines = m.resultLines(width)
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(wrapText(m.errMsg, width)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) introLines(width int) []string {
	hook := m.content.Hook
	lines := []string{
		headlineStyle.Render(wrapText(hook.Headline, width)),
		"",
		textStyle.Render(wrapText(hook.Subheadline, width)),
	}
	if hook.Teaser != "" {
		lines = append(lines, "", textStyle.Render(wrapText(hook.Teaser, width)))
	}
	if hook.Gift != "" {
		lines = append(lines, "", selectedStyle.Render(wrapText(hook.Gift, width)))
	}
	lines = append(lines, "", ctaStyle.Render(hook.CTA))
	if hook.Footnote != "" {
		lines = append(lines, "", mutedStyle.Render(wrapText(hook.Footnote, width)))
	}
	return lines
}

func (m *Model) questionLines(width int) []string {
	q, ok := m.machine.CurrentQuestion()
	if !ok {
		return nil
	}
	lines := []string{headlineStyle.Render(wrapText(q.Prompt, width)), ""}
	for i, ch := range q.Choices {
		label := fmt.Sprintf("%d. %s %s", i+1, ch.Emoji, ch.Text)
		if ch.Emoji == "" {
			label = fmt.Sprintf("%d. %s", i+1, ch.Text)
		}
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("> "+wrapText(label, width-2)))
			continue
		}
		lines = append(lines, textStyle.Render("  "+wrapText(label, width-2)))
	}
	lines = append(lines, "", mutedStyle.Render("↑/↓ to move · enter or 1-4 to choose"))
	return lines
}

func (m *Model) overlayLines(overlay quiz.Overlay, width int) []string {
	lines := []string{headlineStyle.Render(wrapText(m.machine.OverlayText(), width))}
	cta := m.content.RevelationCTA
	switch overlay {
	case quiz.OverlayPattern:
		if m.content.Pattern.Headline != "" {
			lines = append([]string{mutedStyle.Render(wrapText(m.content.Pattern.Headline, width))}, lines...)
		}
		if m.content.Pattern.Suffix != "" {
			lines = append(lines, "", textStyle.Render(wrapText(m.content.Pattern.Suffix, width)))
		}
		cta = m.content.Pattern.CTA
	case quiz.OverlayPreEmail:
		pre := m.content.PreEmail
		if len(pre.Bullets) > 0 {
			lines = append(lines, "")
			for _, b := range pre.Bullets {
				lines = append(lines, textStyle.Render(wrapText("• "+b, width)))
			}
		}
		if pre.Prompt != "" {
			lines = append(lines, "", textStyle.Render(wrapText(pre.Prompt, width)))
		}
		if pre.Footnote != "" {
			lines = append(lines, "", mutedStyle.Render(wrapText(pre.Footnote, width)))
		}
		cta = pre.CTA
	}
	if cta != "" {
		lines = append(lines, "", ctaStyle.Render(cta))
	}
	return lines
}

func (m *Model) emailLines(width int) []string {
	ec := m.content.Email
	lines := []string{headlineStyle.Render(wrapText(ec.Headline, width)), ""}
	labels := [inputCount]string{ec.NameLabel, ec.EmailLabel}
	for i := range m.inputs {
		label := mutedStyle.Render(labels[i])
		if i == m.focus {
			label = selectedStyle.Render(labels[i])
		}
		lines = append(lines, label, m.inputs[i].View(), "")
	}
	lines = append(lines, ctaStyle.Render(ec.CTA), "", mutedStyle.Render("tab to switch fields · enter to submit"))
	return lines
}

func (m *Model) resultLines(width int) []string {
	profile, ok := m.machine.FinalProfile()
	if !ok {
		return nil
	}
	res := m.content.Result
	cardWidth := width - 6
	card := []string{
		headlineStyle.Render(wrapText(fmt.Sprintf("%s %s", profile.Emoji, fmt.Sprintf(res.Headline, profile.Title)), cardWidth)),
		"",
		textStyle.Render(wrapText(profile.Description, cardWidth)),
		"",
		detailLine(res.DesireLabel, profile.Details.Desire),
		detailLine(res.FrequencyLabel, profile.Details.Frequency),
		detailLine(res.BlockLabel, profile.Details.MainBlock),
		"",
		mutedStyle.Render(fmt.Sprintf("Readiness %d/100", m.machine.ReadinessScore())),
	}
	style := cardStyle
	if width > 0 {
		style = style.Width(width - 2)
	}
	lines := []string{style.Render(strings.Join(card, "\n")), ""}
	if res.Truth != "" {
		lines = append(lines, textStyle.Render(wrapText(fmt.Sprintf(res.Truth, profile.Title), width)), "")
	}
	if m.clicked {
		lines = append(lines, selectedStyle.Render(wrapText(res.VSLNotice, width)))
	} else {
		lines = append(lines, ctaStyle.Render(res.CTA))
	}
	lines = append(lines, "", mutedStyle.Render("q to quit"))
	return lines
}

func detailLine(label, value string) string {
	return mutedStyle.Render(label+": ") + textStyle.Render(value)
}

func (m *Model) renderFooter() string {
	st := m.machine.State()
	progress := m.machine.Progress()
	segments := []string{
		progressBar(progress, progressBarWidth),
		fmt.Sprintf("%d%%", int(progress*100+0.5)),
		stepLabel(st),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func progressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func stepLabel(st quiz.State) string {
	switch {
	case st.Screen == quiz.ScreenIntro:
		return "Start"
	case st.Screen.IsQuestion():
		return fmt.Sprintf("Question %d of %d", int(st.Screen), quiz.QuestionCount)
	case st.Screen == quiz.ScreenEmail:
		return "Almost there"
	default:
		return "Your result"
	}
}
