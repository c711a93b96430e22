package tui

import "testing"

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("what do you desire most", 10)
	want := "what do\nyou desire\nmost"
	if got != want {
		t.Fatalf("unexpected wrap:\n%q\nwant\n%q", got, want)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefghij", 4)
	want := "abcd\nefgh\nij"
	if got != want {
		t.Fatalf("unexpected wrap: %q want %q", got, want)
	}
}

func TestWrapTextKeepsLineBreaks(t *testing.T) {
	got := wrapText("one two\nthree", 20)
	if got != "one two\nthree" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextCountsWideRunes(t *testing.T) {
	// Each emoji takes two cells.
	got := wrapText("💰💰 ab", 4)
	if got != "💰💰\nab" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	if got := wrapText("as is", 0); got != "as is" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}
