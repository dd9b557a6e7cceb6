package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

// Theme holds the colors used for drawing.
type Theme struct {
	Name       string
	Background string
	RootFill   string
	BranchFill string
	LeafFill   string
	Stroke     string
	Text       string
	Connector  string
}

// Built-in themes.
var (
	LightTheme = Theme{
		Name:       "light",
		Background: "#ffffff",
		RootFill:   "#4f46e5",
		BranchFill: "#e0e7ff",
		LeafFill:   "#f8fafc",
		Stroke:     "#6366f1",
		Text:       "#1e1b4b",
		Connector:  "#94a3b8",
	}
	DarkTheme = Theme{
		Name:       "dark",
		Background: "#0f172a",
		RootFill:   "#6366f1",
		BranchFill: "#1e293b",
		LeafFill:   "#111827",
		Stroke:     "#818cf8",
		Text:       "#e2e8f0",
		Connector:  "#475569",
	}
)

// ThemeByName returns a built-in theme; unknown names yield the light theme.
func ThemeByName(name string) (Theme, bool) {
	switch strings.ToLower(name) {
	case "", "light":
		return LightTheme, true
	case "dark":
		return DarkTheme, true
	}
	return LightTheme, false
}

func (t Theme) fill(level int) string {
	switch {
	case level <= 0:
		return t.RootFill
	case level == 1:
		return t.BranchFill
	default:
		return t.LeafFill
	}
}

func (t Theme) textColor(level int) string {
	if level <= 0 {
		return t.Background
	}
	return t.Text
}

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	theme       Theme
	measurement Measurement
	measurer    *Measurer
	view        *viewport.State
}

// WithTheme sets the color theme.
func WithTheme(t Theme) Option { return func(r *renderer) { r.theme = t } }

// WithMeasurement reuses label lines from an earlier measurement.
func WithMeasurement(m Measurement) Option { return func(r *renderer) { r.measurement = m } }

// WithMeasurer sets the measurer used for labels missing from the
// measurement.
func WithMeasurer(m *Measurer) Option { return func(r *renderer) { r.measurer = m } }

// WithViewport wraps the drawing in the viewport's pan and zoom transform.
func WithViewport(s viewport.State) Option { return func(r *renderer) { r.view = &s } }

// Render draws the scene. Connectors are painted below the nodes.
func Render(s render.Scene, opts ...Option) []byte {
	r := renderer{theme: LightTheme}
	for _, opt := range opts {
		opt(&r)
	}
	if r.measurer == nil {
		r.measurer = NewMeasurer(nil)
	}

	ext := s.Extent()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(ext.Width), num(ext.Height), num(ext.Width), num(ext.Height))
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)

	if r.view != nil {
		fmt.Fprintf(&buf, `  <g class="viewport" transform="%s">`+"\n", r.view.SVGTransform())
	} else {
		buf.WriteString(`  <g class="viewport">` + "\n")
	}

	buf.WriteString(`    <g class="connections">` + "\n")
	for _, c := range s.Connections {
		if len(c.Points) < 2 {
			continue
		}
		var d strings.Builder
		for i, p := range c.Points {
			if i == 0 {
				d.WriteString("M")
			} else {
				d.WriteString(" L")
			}
			fmt.Fprintf(&d, "%s %s", num(p.X), num(p.Y))
		}
		fmt.Fprintf(&buf, `      <path id="%s" d="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
			escape("conn-"+c.ID), d.String(), r.theme.Connector)
	}
	buf.WriteString("    </g>\n")

	buf.WriteString(`    <g class="nodes">` + "\n")
	for _, n := range s.Nodes() {
		r.node(&buf, n)
	}
	buf.WriteString("    </g>\n")
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) node(buf *bytes.Buffer, n render.NodeBox) {
	label, ok := r.measurement[n.ID]
	if !ok {
		label = r.measurer.Label(n.Text, n.Level)
	}
	b := n.Box
	fmt.Fprintf(buf, `      <g class="node level-%d" data-id="%s">`+"\n", min(n.Level, 2), escape(n.ID))
	fmt.Fprintf(buf, `        <rect x="%s" y="%s" width="%s" height="%s" rx="10" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
		num(b.X), num(b.Y), num(b.Width), num(b.Height), r.theme.fill(n.Level), r.theme.Stroke)

	textH := float64(len(label.Lines)) * label.LineHeight
	baseline := b.Y + (b.Height-textH)/2 + label.LineHeight*0.75
	fmt.Fprintf(buf, `        <text x="%s" y="%s" font-family="sans-serif" font-size="%s" fill="%s" text-anchor="middle">`,
		num(b.CenterX()), num(baseline), num(label.FontSize), r.theme.textColor(n.Level))
	for i, line := range label.Lines {
		dy := "0"
		if i > 0 {
			dy = num(label.LineHeight)
		}
		fmt.Fprintf(buf, `<tspan x="%s" dy="%s">%s</tspan>`, num(b.CenterX()), dy, escape(line))
	}
	buf.WriteString("</text>\n")
	buf.WriteString("      </g>\n")
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
