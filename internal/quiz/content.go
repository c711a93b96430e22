// Package quiz implements the funnel quiz flow and its content variants.
package quiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

// DefaultVariant is used when no variant is configured.
const DefaultVariant = "en"

// QuestionCount is the number of questions in the canonical flow.
const QuestionCount = 3

// HookCopy is the intro screen copy.
type HookCopy struct {
	Headline    string `toml:"headline"`
	Subheadline string `toml:"subheadline"`
	Teaser      string `toml:"teaser"`
	Gift        string `toml:"gift"`
	CTA         string `toml:"cta"`
	Footnote    string `toml:"footnote"`
}

// PreEmailCopy is the warning overlay shown before the email screen.
type PreEmailCopy struct {
	Headline string   `toml:"headline"`
	Bullets  []string `toml:"bullets"`
	Prompt   string   `toml:"prompt"`
	CTA      string   `toml:"cta"`
	Footnote string   `toml:"footnote"`
}

// PatternCopy is the overlay shown after the second answer.
type PatternCopy struct {
	Headline string `toml:"headline"`
	Suffix   string `toml:"suffix"`
	CTA      string `toml:"cta"`
}

// EmailCopy is the contact capture screen copy.
type EmailCopy struct {
	Headline   string `toml:"headline"`
	NameLabel  string `toml:"name-label"`
	EmailLabel string `toml:"email-label"`
	CTA        string `toml:"cta"`
	Success    string `toml:"success"`
}

// ResultCopy is the result screen copy. Headline and Truth take the profile title.
type ResultCopy struct {
	Headline       string `toml:"headline"`
	DesireLabel    string `toml:"desire-label"`
	FrequencyLabel string `toml:"frequency-label"`
	BlockLabel     string `toml:"block-label"`
	Truth          string `toml:"truth"`
	CTA            string `toml:"cta"`
	VSLNotice      string `toml:"vsl-notice"`
}

// Content is one quiz variant: questions, overlay copy and profile table.
type Content struct {
	Name           string                   `toml:"name"`
	Hook           HookCopy                 `toml:"hook"`
	Questions      []model.Question         `toml:"questions"`
	Revelations    map[string]string        `toml:"revelations"`
	RevelationCTA  string                   `toml:"revelation-cta"`
	Pattern        PatternCopy              `toml:"pattern"`
	PreEmail       PreEmailCopy             `toml:"pre-email"`
	Email          EmailCopy                `toml:"email"`
	Result         ResultCopy               `toml:"result"`
	Profiles       map[string]model.Profile `toml:"profiles"`
	DefaultProfile model.Profile            `toml:"default-profile"`
}

// Validate checks the structural invariants every variant must satisfy.
func (c *Content) Validate() error {
	if len(c.Questions) != QuestionCount {
		return fmt.Errorf("variant %q must define %d questions, got %d", c.Name, QuestionCount, len(c.Questions))
	}
	seen := map[string]struct{}{}
	for i, q := range c.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return fmt.Errorf("variant %q: question %d has no id", c.Name, i+1)
		}
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("variant %q: duplicate question id %q", c.Name, q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Choices) == 0 {
			return fmt.Errorf("variant %q: question %q has no choices", c.Name, q.ID)
		}
		for _, ch := range q.Choices {
			if ch.ID == "" || ch.Value == "" {
				return fmt.Errorf("variant %q: question %q has a choice without id or value", c.Name, q.ID)
			}
		}
	}
	if c.DefaultProfile.Title == "" {
		return fmt.Errorf("variant %q: default profile needs a title", c.Name)
	}
	return nil
}

// Question returns the question at a 1-based index.
func (c *Content) Question(index int) (model.Question, bool) {
	if index < 1 || index > len(c.Questions) {
		return model.Question{}, false
	}
	return c.Questions[index-1], true
}

// Revelation returns the canned message for a first-question answer value.
// Unknown values fall back to the message of the first choice.
func (c *Content) Revelation(value string) string {
	if text, ok := c.Revelations[value]; ok {
		return text
	}
	if len(c.Questions) > 0 && len(c.Questions[0].Choices) > 0 {
		return c.Revelations[c.Questions[0].Choices[0].Value]
	}
	return ""
}

// AnswerText returns the display text of a stored answer value.
func (c *Content) AnswerText(questionID, value string) string {
	for _, q := range c.Questions {
		if q.ID != questionID {
			continue
		}
		for _, ch := range q.Choices {
			if ch.Value == value {
				return ch.Text
			}
		}
	}
	return value
}

// LoadVariant reads a variant from a TOML file and validates it.
func LoadVariant(path string) (*Content, error) {
	var c Content
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("failed to decode variant: %w", err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ResolveVariant returns the named variant, preferring a file in dir over a built-in.
func ResolveVariant(name, dir string) (*Content, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = DefaultVariant
	}
	if dir != "" {
		path := filepath.Join(dir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			return LoadVariant(path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat variant: %w", err)
		}
	}
	if c, ok := Builtin(name); ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown variant %q", name)
}

// ListVariants returns built-in variant names followed by file variants in dir.
func ListVariants(dir string) ([]string, error) {
	names := BuiltinNames()
	seen := map[string]struct{}{}
	for _, n := range names {
		seen[n] = struct{}{}
	}
	if dir == "" {
		return names, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return names, nil
		}
		return nil, fmt.Errorf("failed to read variant directory: %w", err)
	}
	var extra []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		if _, ok := seen[name]; ok {
			continue
		}
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return append(names, extra...), nil
}
