package frontend

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"tracefile/internal/report"
)

//go:embed templates/*.html static/*
var assets embed.FS

const tickLayout = "2006-01-02 15:04:05"

var templateFuncs = template.FuncMap{
	// coord prints an SVG coordinate with one decimal.
	"coord": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 1, 64)
	},
	"tick": func(ts time.Time) string {
		return ts.Format(tickLayout)
	},
	// stamp matches the timestamp form of the CSV report.
	"stamp": func(ts time.Time) string {
		return ts.Format(report.TimeLayout)
	},
}

// Renderer draws a finished chart as an SVG page.
type Renderer struct {
	once     sync.Once
	initErr  error
	template *template.Template
}

// NewRenderer creates a Renderer backed by the embedded assets.
func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) ensureTemplates() error {
	r.once.Do(func() {
		tpl, err := template.New("timeline.html").Funcs(templateFuncs).ParseFS(assets, "templates/timeline.html")
		if err != nil {
			r.initErr = err
			return
		}
		r.template = tpl
	})
	return r.initErr
}

// RenderTimeline lays out chart on the page grid and writes the page to w.
// Each series becomes one row and every point is placed by its position on
// the shared time axis.
func (r *Renderer) RenderTimeline(w http.ResponseWriter, chart report.Chart) error {
	if err := r.ensureTemplates(); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return r.template.ExecuteTemplate(w, "timeline.html", newTimelineView(chart))
}

// StaticHandler returns an http.Handler that serves embedded static assets.
func (r *Renderer) StaticHandler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			http.NotFound(w, req)
		})
	}
	return http.FileServer(http.FS(sub))
}
