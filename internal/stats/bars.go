package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const (
	minBarWidth         = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	barColumnGap        = 2
)

// Partial blocks in eighths, from empty to seven eighths.
var barPartials = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉'}

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// BarWidthFor returns the bar width that fits a line of totalWidth next to
// a label column and a value column.
func BarWidthFor(totalWidth, labelWidth, valueWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	width := totalWidth - labelWidth - valueWidth - 2*barColumnGap
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

// Bar renders value relative to maxValue as a horizontal bar of width cells.
func Bar(value, maxValue float64, width int) string {
	if width <= 0 || maxValue <= 0 || value <= 0 {
		return ""
	}
	if value > maxValue {
		value = maxValue
	}
	eighths := int(value / maxValue * float64(width*8))
	if eighths == 0 {
		eighths = 1
	}
	full := eighths / 8
	rest := eighths % 8
	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	if rest > 0 {
		b.WriteRune(barPartials[rest])
	}
	return b.String()
}

// RenderFunnelBars prints one bar per stage scaled to the first stage.
// A totalWidth of 0 uses the terminal width of w.
func RenderFunnelBars(w io.Writer, stages []Stage, totalWidth int, forceColor bool) error {
	if len(stages) == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth(w)
	}
	useColor := shouldUseColor(w, forceColor)

	labelWidth := 0
	values := make([]string, len(stages))
	valueWidth := 0
	maxCount := 0
	for i, s := range stages {
		if n := displayWidth(s.Name); n > labelWidth {
			labelWidth = n
		}
		values[i] = humanize.Comma(int64(s.Count))
		if i > 0 {
			values[i] += fmt.Sprintf(" (%.1f%%)", s.Rate)
		}
		if n := displayWidth(values[i]); n > valueWidth {
			valueWidth = n
		}
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	barWidth := BarWidthFor(totalWidth, labelWidth, valueWidth)

	for i, s := range stages {
		bar := Bar(float64(s.Count), float64(maxCount), barWidth)
		if useColor && bar != "" {
			bar = colorPalette[i%len(colorPalette)] + bar + colorReset
		}
		line := padCell(s.Name, labelWidth, false) + strings.Repeat(" ", barColumnGap) +
			padCell(values[i], valueWidth, true) + strings.Repeat(" ", barColumnGap) + bar
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		file = os.Stdout
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
