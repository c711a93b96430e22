package quiz

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

// DefaultProfileID identifies the profile used when no table entry matches.
const DefaultProfileID = "pioneer"

// answerAt returns the answer value of the question at a 1-based position.
func (c *Content) answerAt(answers map[string]string, index int) string {
	q, ok := c.Question(index)
	if !ok {
		return ""
	}
	return answers[q.ID]
}

// ResolveProfile maps the answers onto a profile. The lookup key is the
// first answer joined to the second with an underscore; a miss yields the
// default profile described by the raw answers.
func (c *Content) ResolveProfile(answers map[string]string) model.Profile {
	desire := c.answerAt(answers, 1)
	frequency := c.answerAt(answers, 2)
	block := c.answerAt(answers, 3)

	if p, ok := c.Profiles[desire+"_"+frequency]; ok {
		if p.ID == "" {
			p.ID = desire + "_" + frequency
		}
		p.Details.MainBlock = titlecase(block)
		return p
	}

	p := c.DefaultProfile
	if p.ID == "" {
		p.ID = DefaultProfileID
	}
	p.Details = model.ProfileDetails{
		Desire:    titlecase(desire),
		Frequency: titlecase(frequency),
		MainBlock: titlecase(block),
	}
	return p
}

// PatternText renders the first two answers as "DESIRE + FREQUENCY".
func (c *Content) PatternText(answers map[string]string) string {
	return strings.ToUpper(c.answerAt(answers, 1)) + " + " + strings.ToUpper(c.answerAt(answers, 2))
}

// ReadinessScore scores the answers on a 0..100 scale.
func (c *Content) ReadinessScore(answers map[string]string) int {
	score := 0
	switch c.answerAt(answers, 2) {
	case "daily":
		score += 40
	case "weekly":
		score += 30
	case "rarely":
		score += 20
	default:
		score += 10
	}
	switch c.answerAt(answers, 3) {
	case "knowledge":
		score += 30
	case "beliefs":
		score += 25
	case "fear":
		score += 20
	default:
		score += 15
	}
	if c.answerAt(answers, 1) == "money" {
		score += 30
	} else {
		score += 25
	}
	return score
}

// titlecase upper-cases the first rune and leaves the rest unchanged.
func titlecase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
