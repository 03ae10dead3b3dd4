package frontend

import (
	"time"

	"tracefile/internal/report"
)

// SVG geometry of the chart page, in viewBox units.
const (
	viewWidth   = 960
	plotLeft    = 110
	plotRight   = 940
	rowTop      = 50
	rowSpacing  = 60
	labelX      = 16
	axisPadding = 30
)

type pointView struct {
	X     float64
	Y     int
	Color string
	Path  string
	Time  time.Time
}

type rowView struct {
	Label  string
	Y      int
	Points []pointView
}

// timelineView is the template model of one chart page.
type timelineView struct {
	Title  string
	Count  int
	Start  time.Time
	End    time.Time
	Width  int
	Height int
	LabelX int
	Left   int
	Right  int
	AxisY  int
	TickY  int
	Rows   []rowView
}

func newTimelineView(chart report.Chart) timelineView {
	view := timelineView{
		Title:  chart.Title,
		Count:  len(chart.Paths),
		Start:  chart.Min,
		End:    chart.Max,
		Width:  viewWidth,
		LabelX: labelX,
		Left:   plotLeft,
		Right:  plotRight,
	}

	for i, series := range chart.Series {
		row := rowView{Label: series.Label, Y: rowTop + i*rowSpacing}
		for j, ts := range series.Points {
			point := pointView{
				X:     plotLeft + chart.Position(ts)*float64(plotRight-plotLeft),
				Y:     row.Y,
				Color: series.Color,
				Time:  ts,
			}
			if j < len(chart.Paths) {
				point.Path = chart.Paths[j]
			}
			row.Points = append(row.Points, point)
		}
		view.Rows = append(view.Rows, row)
	}

	view.AxisY = rowTop + len(chart.Series)*rowSpacing - rowSpacing/2
	view.TickY = view.AxisY + 18
	view.Height = view.AxisY + axisPadding
	return view
}
