// Package web holds the server-rendered pages and the helpers they call.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	"github.com/BruksfildServices01/nail-scheduler/internal/timezone"
)

//go:embed templates/*.html
var templateFS embed.FS

// InputLayout is what <input type="datetime-local"> submits.
const InputLayout = "2006-01-02T15:04"

// Raw HTML in the source is escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Templates parses every page. Pages are addressed by file name.
func Templates(tz string) (*template.Template, error) {
	tpl, err := template.New("").Funcs(FuncMap(tz)).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tpl, nil
}

func FuncMap(tz string) template.FuncMap {
	return template.FuncMap{
		"markdown": Markdown,
		"datetime": func(t time.Time) string {
			return timezone.Format(t, tz)
		},
		"inputTime": func(t time.Time) string {
			return InputTime(t, tz)
		},
		"duration": models.FormatDuration,
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
	}
}

// InputTime formats t for a datetime-local input showing wall time in tz.
func InputTime(t time.Time, tz string) string {
	if t.IsZero() {
		return ""
	}
	return t.In(timezone.Location(tz)).Format(InputLayout)
}

// Markdown renders src to HTML, falling back to escaped text.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
