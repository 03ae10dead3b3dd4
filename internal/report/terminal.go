package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultTerminalWidth is the number of axis columns when none is configured.
const DefaultTerminalWidth = 72

const (
	pointGlyph = "●"
	axisLayout = "2006-01-02 15:04:05"
)

// TerminalDisplay draws a chart as text. Colors are applied only when Out is
// a terminal that supports them.
type TerminalDisplay struct {
	Out   io.Writer
	Width int
}

// Show writes the chart to Out.
func (d TerminalDisplay) Show(_ context.Context, chart Chart) error {
	width := d.Width
	if width <= 0 {
		width = DefaultTerminalWidth
	}

	renderer := lipgloss.NewRenderer(d.Out)
	titleStyle := renderer.NewStyle().Bold(true)
	axisStyle := renderer.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))

	labelWidth := 0
	for _, series := range chart.Series {
		labelWidth = max(labelWidth, len(series.Label))
	}
	gutter := strings.Repeat(" ", labelWidth+1)

	var b strings.Builder
	b.WriteString(titleStyle.Render(chart.Title))
	b.WriteString("\n\n")

	for _, series := range chart.Series {
		pointStyle := renderer.NewStyle().Foreground(lipgloss.Color(series.Color))

		occupied := make([]bool, width)
		for _, ts := range series.Points {
			col := int(math.Round(chart.Position(ts) * float64(width-1)))
			occupied[col] = true
		}

		fmt.Fprintf(&b, "%-*s %s", labelWidth, series.Label, axisStyle.Render("│"))
		for _, hit := range occupied {
			if hit {
				b.WriteString(pointStyle.Render(pointGlyph))
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(axisStyle.Render("│"))
		fmt.Fprintf(&b, " %d\n", len(series.Points))
	}

	b.WriteString(gutter)
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", width) + "┘"))
	b.WriteByte('\n')

	start := chart.Min.Format(axisLayout)
	end := chart.Max.Format(axisLayout)
	padding := width + 2 - len(start) - len(end)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(gutter)
	b.WriteString(axisStyle.Render(start + strings.Repeat(" ", padding) + end))
	b.WriteByte('\n')

	_, err := io.WriteString(d.Out, b.String())
	return err
}
