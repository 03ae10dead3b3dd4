package report

import (
	"context"
	"time"

	"tracefile/internal/timeline"
)

// ChartTitle is shown above every timeline chart.
const ChartTitle = "Forensic Timeline"

// Series colors, one per timestamp kind.
const (
	ColorCreated  = "#00E676"
	ColorModified = "#5B8DEF"
	ColorAccessed = "#FF5252"
)

// Series is one category row of the chart.
type Series struct {
	Label  string      `json:"label"`
	Color  string      `json:"color"`
	Points []time.Time `json:"points"`
}

// Chart is a scatter plot of a timeline on a single shared time axis. Point i
// of every series belongs to Paths[i].
type Chart struct {
	Title  string    `json:"title"`
	Min    time.Time `json:"min"`
	Max    time.Time `json:"max"`
	Series []Series  `json:"series"`
	Paths  []string  `json:"paths"`
}

// Position maps ts onto the axis as a fraction in [0, 1]. A chart whose
// points all share one instant places them in the middle.
func (c Chart) Position(ts time.Time) float64 {
	span := c.Max.Sub(c.Min)
	if span <= 0 {
		return 0.5
	}
	pos := float64(ts.Sub(c.Min)) / float64(span)
	switch {
	case pos < 0:
		return 0
	case pos > 1:
		return 1
	}
	return pos
}

// Display presents a finished chart to the user.
type Display interface {
	Show(ctx context.Context, chart Chart) error
}

// BuildChart lays out tl as Created, Modified and Accessed rows. It reports
// false when there is nothing to plot.
func BuildChart(tl timeline.Timeline) (Chart, bool) {
	first, last, ok := tl.Span()
	if !ok {
		return Chart{}, false
	}

	created := make([]time.Time, len(tl))
	modified := make([]time.Time, len(tl))
	accessed := make([]time.Time, len(tl))
	for i, record := range tl {
		created[i] = record.Created
		modified[i] = record.Modified
		accessed[i] = record.Accessed
	}

	return Chart{
		Title: ChartTitle,
		Min:   first,
		Max:   last,
		Series: []Series{
			{Label: "Created", Color: ColorCreated, Points: created},
			{Label: "Modified", Color: ColorModified, Points: modified},
			{Label: "Accessed", Color: ColorAccessed, Points: accessed},
		},
		Paths: tl.Paths(),
	}, true
}

// RenderTimeline hands the chart for tl to d. It reports false without
// touching d when tl is empty.
func RenderTimeline(ctx context.Context, tl timeline.Timeline, d Display) (bool, error) {
	chart, ok := BuildChart(tl)
	if !ok {
		return false, nil
	}
	return true, d.Show(ctx, chart)
}
