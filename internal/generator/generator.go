// Package generator builds synthetic funnel journeys for demos and dashboards.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/funnelquiz/internal/attribution"
	"github.com/verte-zerg/funnelquiz/internal/model"
	"github.com/verte-zerg/funnelquiz/internal/quiz"
)

// Continuation probabilities from one stage to the next.
const (
	pStartQuiz    = 0.62
	pNextQuestion = 0.88
	pEmailScreen  = 0.93
	pLead         = 0.55
	pVSLClick     = 0.35
	pSecondClick  = 0.15
)

type source struct {
	name     string
	medium   string
	campaign string
	weight   float64
}

var sourceMix = []source{
	{name: "facebook", medium: "paid_social", campaign: "manifest_q3", weight: 45},
	{name: "instagram", medium: "paid_social", campaign: "manifest_q3", weight: 20},
	{name: "google", medium: "cpc", campaign: "manifestation_quiz", weight: 15},
	{name: "", weight: 15},
	{name: "tiktok", medium: "paid_social", campaign: "creator_push", weight: 5},
}

var userAgents = []struct {
	ua     string
	weight float64
}{
	{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148", 40},
	{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/124.0 Mobile Safari/537.36", 30},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/124.0 Safari/537.36", 25},
	{"Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148", 5},
}

// Answer popularity by choice value. Missing values weigh 1.
var answerWeights = map[string]float64{
	"money": 40, "love": 30, "health": 15, "purpose": 15,
	"daily": 20, "weekly": 35, "rarely": 30, "never": 15,
	"beliefs": 30, "knowledge": 25, "fear": 30, "all": 15,
}

var firstNames = []string{"Ana", "Bruno", "Carla", "Diego", "Elena", "Felipe", "Gabi", "Hugo", "Iris", "João"}

// Options controls the shape of a generated batch.
type Options struct {
	Visitors int
	Days     int
	Now      time.Time
}

// Generator produces randomized visitor journeys.
type Generator struct {
	rnd     *rand.Rand
	content *quiz.Content
}

// New returns a Generator for a quiz variant. A zero seed uses the current time.
func New(content *quiz.Content, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), content: content}
}

// Journeys builds one record per visitor, spread over the last opts.Days days.
func (g *Generator) Journeys(opts Options) ([]model.FunnelRecord, error) {
	if opts.Visitors < 0 {
		return nil, fmt.Errorf("visitors must be >= 0")
	}
	if opts.Days < 1 {
		return nil, fmt.Errorf("days must be >= 1")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	window := time.Duration(opts.Days) * 24 * time.Hour
	records := make([]model.FunnelRecord, 0, opts.Visitors)
	for i := 0; i < opts.Visitors; i++ {
		landed := now.Add(-time.Duration(g.rnd.Int63n(int64(window))))
		rec, err := g.journey(i, landed)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (g *Generator) journey(n int, landed time.Time) (model.FunnelRecord, error) {
	id, err := uuid.NewRandomFromReader(g.rnd)
	if err != nil {
		return model.FunnelRecord{}, fmt.Errorf("failed to generate id: %w", err)
	}
	rec := model.FunnelRecord{
		ID:          id.String(),
		CreatedAt:   landed,
		Attribution: g.attribution(),
	}
	at := landed
	rec.PageViewedAt = stamp(at)

	if !g.chance(pStartQuiz) {
		return rec, nil
	}
	at = g.after(at, 3, 40)
	rec.QuizStartedAt = stamp(at)

	answers := make(map[string]string, quiz.QuestionCount)
	for i, q := range g.content.Questions {
		if i > 0 && !g.chance(pNextQuestion) {
			break
		}
		rec.LastQuestionReached = i + 1
		at = g.after(at, 4, 25)
		answers[q.ID] = g.pickAnswer(q)
	}
	if len(answers) > 0 {
		rec.Answers = answers
	}
	if rec.LastQuestionReached < quiz.QuestionCount || !g.chance(pEmailScreen) {
		return rec, nil
	}
	at = g.after(at, 5, 30)
	rec.EmailScreenReachedAt = stamp(at)

	if !g.chance(pLead) {
		return rec, nil
	}
	at = g.after(at, 10, 90)
	name := firstNames[g.rnd.Intn(len(firstNames))]
	rec.Name = name
	rec.Email = fmt.Sprintf("lead%d@example.com", n+1)
	rec.Profile = g.content.ResolveProfile(answers).Title
	rec.ReadinessScore = g.content.ReadinessScore(answers)
	rec.QuizCompletedAt = stamp(at)
	rec.ResultViewedAt = stamp(at)

	if !g.chance(pVSLClick) {
		return rec, nil
	}
	at = g.after(at, 20, 240)
	rec.VSLClickedAt = stamp(at)
	rec.VSLClickCount = 1
	if g.chance(pSecondClick) {
		rec.VSLClickCount++
	}
	return rec, nil
}

func (g *Generator) attribution() model.Attribution {
	weights := make([]float64, len(sourceMix))
	for i, s := range sourceMix {
		weights[i] = s.weight
	}
	src := sourceMix[g.pick(weights)]

	uaWeights := make([]float64, len(userAgents))
	for i, u := range userAgents {
		uaWeights[i] = u.weight
	}
	ua := userAgents[g.pick(uaWeights)].ua

	attr := model.Attribution{
		Variant:     "A",
		UTMSource:   src.name,
		UTMMedium:   src.medium,
		UTMCampaign: src.campaign,
		UserAgent:   ua,
	}
	if g.chance(0.5) {
		attr.Variant = "B"
	}
	switch src.name {
	case "facebook", "instagram":
		attr.FBClickID = g.clickID("fb")
		attr.Referrer = "https://l.facebook.com/"
	case "google":
		attr.GClickID = g.clickID("g")
		attr.Referrer = "https://www.google.com/"
	}
	return attribution.Normalize(attr)
}

func (g *Generator) pickAnswer(q model.Question) string {
	weights := make([]float64, len(q.Choices))
	for i, ch := range q.Choices {
		w, ok := answerWeights[ch.Value]
		if !ok {
			w = 1
		}
		weights[i] = w
	}
	return q.Choices[g.pick(weights)].Value
}

// pick returns an index with probability proportional to its weight.
func (g *Generator) pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

func (g *Generator) chance(p float64) bool {
	return g.rnd.Float64() < p
}

func (g *Generator) after(t time.Time, minSec, maxSec int) time.Time {
	return t.Add(time.Duration(minSec+g.rnd.Intn(maxSec-minSec+1)) * time.Second)
}

func (g *Generator) clickID(prefix string) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 16)
	for i := range b {
		b[i] = alphabet[g.rnd.Intn(len(alphabet))]
	}
	return prefix + "." + string(b)
}

func stamp(t time.Time) *time.Time {
	return &t
}
