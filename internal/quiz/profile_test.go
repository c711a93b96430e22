package quiz

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveProfileTableHit(t *testing.T) {
	content, _ := Builtin("en")
	p := content.ResolveProfile(map[string]string{
		"primary_desire":          "money",
		"manifestation_frequency": "daily",
		"main_block":              "fear",
	})
	if p.ID != "money_daily" || p.Title != "ABUNDANCE MAGNET" || p.Emoji != "💰" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Details.Desire != "Strong" || p.Details.Frequency != "Daily" || p.Details.MainBlock != "Fear" {
		t.Fatalf("unexpected details: %+v", p.Details)
	}
}

func TestResolveProfileDefault(t *testing.T) {
	content, _ := Builtin("en")
	p := content.ResolveProfile(map[string]string{
		"primary_desire":          "purpose",
		"manifestation_frequency": "weekly",
		"main_block":              "fear",
	})
	if p.ID != DefaultProfileID || p.Title != "MANIFESTATION PIONEER" || p.Emoji != "🔮" {
		t.Fatalf("unexpected default profile: %+v", p)
	}
	if p.Details.Desire != "Purpose" || p.Details.Frequency != "Weekly" || p.Details.MainBlock != "Fear" {
		t.Fatalf("unexpected default details: %+v", p.Details)
	}
}

func TestResolveProfileDoesNotMutateTable(t *testing.T) {
	content, _ := Builtin("en")
	content.ResolveProfile(map[string]string{
		"primary_desire":          "money",
		"manifestation_frequency": "daily",
		"main_block":              "beliefs",
	})
	if got := content.Profiles["money_daily"].Details.MainBlock; got != "" {
		t.Fatalf("profile table mutated: %q", got)
	}
}

func TestPatternText(t *testing.T) {
	content, _ := Builtin("en")
	got := content.PatternText(map[string]string{
		"primary_desire":          "money",
		"manifestation_frequency": "daily",
	})
	if got != "MONEY + DAILY" {
		t.Fatalf("unexpected pattern: %q", got)
	}
}

func TestReadinessScore(t *testing.T) {
	content, _ := Builtin("en")
	cases := []struct {
		desire, frequency, block string
		want                     int
	}{
		{"money", "daily", "knowledge", 100},
		{"love", "weekly", "beliefs", 80},
		{"health", "rarely", "fear", 65},
		{"purpose", "never", "all", 50},
	}
	for _, tc := range cases {
		got := content.ReadinessScore(map[string]string{
			"primary_desire":          tc.desire,
			"manifestation_frequency": tc.frequency,
			"main_block":              tc.block,
		})
		if got != tc.want {
			t.Fatalf("%s/%s/%s: expected %d, got %d", tc.desire, tc.frequency, tc.block, tc.want, got)
		}
	}
}

func TestTitlecase(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"fear":    "Fear",
		"all":     "All",
		"éxito":   "Éxito",
		"mIxEd":   "MIxEd",
		"1st try": "1st try",
	}
	for in, want := range cases {
		if got := titlecase(in); got != want {
			t.Fatalf("titlecase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuiltinVariantsValidate(t *testing.T) {
	for _, name := range BuiltinNames() {
		c, ok := Builtin(name)
		if !ok {
			t.Fatalf("missing builtin %q", name)
		}
		if err := c.Validate(); err != nil {
			t.Fatalf("builtin %q invalid: %v", name, err)
		}
	}
}

func TestRevelationFallsBackToFirstChoice(t *testing.T) {
	content, _ := Builtin("en")
	if got := content.Revelation("unknown"); got != content.Revelations["money"] {
		t.Fatalf("unexpected fallback: %q", got)
	}
}

const customVariant = `
name = "short"
[default-profile]
title = "SEEKER"
emoji = "✨"

[[questions]]
id = "q1"
prompt = "One?"
[[questions.choices]]
id = "a"
text = "A"
value = "a"

[[questions]]
id = "q2"
prompt = "Two?"
[[questions.choices]]
id = "b"
text = "B"
value = "b"

[[questions]]
id = "q3"
prompt = "Three?"
[[questions.choices]]
id = "c"
text = "C"
value = "c"

[profiles.a_b]
title = "ALPHA BETA"
emoji = "🅰"
[profiles.a_b.details]
desire = "Alpha"
frequency = "Beta"
`

func TestResolveVariantPrefersFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "short.toml"), []byte(customVariant), 0o644); err != nil {
		t.Fatalf("write variant: %v", err)
	}
	c, err := ResolveVariant("short", dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	p := c.ResolveProfile(map[string]string{"q1": "a", "q2": "b", "q3": "c"})
	if p.Title != "ALPHA BETA" || p.ID != "a_b" || p.Details.MainBlock != "C" {
		t.Fatalf("unexpected profile from file variant: %+v", p)
	}

	names, err := ListVariants(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 3 || names[2] != "short" {
		t.Fatalf("unexpected variant list: %v", names)
	}

	if _, err := ResolveVariant("", dir); err != nil {
		t.Fatalf("default variant: %v", err)
	}
	if _, err := ResolveVariant("missing", dir); err == nil {
		t.Fatalf("expected unknown variant error")
	}
}

func TestLoadVariantRejectsWrongQuestionCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	body := "[default-profile]\ntitle = \"X\"\n[[questions]]\nid = \"q1\"\n[[questions.choices]]\nid = \"a\"\nvalue = \"a\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadVariant(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
