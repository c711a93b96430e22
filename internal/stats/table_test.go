package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Source", "Records", "Share"}
	rows := [][]string{
		{"facebook", "120", "60.00%"},
		{"direct", "8", "4.00%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Source   Records  Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "facebook     120 60.00%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "direct         8  4.00%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Profile", "Leads"}, [][]string{{"💰 MAGNET", "3"}}, map[int]bool{1: true})
	if lines[1] != "💰 MAGNET     3" {
		t.Fatalf("emoji must count as two cells: %q", lines[1])
	}
}
