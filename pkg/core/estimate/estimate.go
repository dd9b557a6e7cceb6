package estimate

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// charWidthRatio approximates the advance of an average glyph relative to
// the font size.
const charWidthRatio = 0.55

// LevelMetrics describes the text box model for one depth.
type LevelMetrics struct {
	FontSize   float64 `json:"font_size" toml:"font_size"`
	CharWidth  float64 `json:"char_width" toml:"char_width"`
	LineHeight float64 `json:"line_height" toml:"line_height"`
	PaddingX   float64 `json:"padding_x" toml:"padding_x"`
	PaddingY   float64 `json:"padding_y" toml:"padding_y"`
	MinWidth   float64 `json:"min_width" toml:"min_width"`
	MaxWidth   float64 `json:"max_width" toml:"max_width"`
	MinHeight  float64 `json:"min_height" toml:"min_height"`
}

// CharsPerLine returns how many average glyphs fit on one wrapped line.
func (m LevelMetrics) CharsPerLine() int {
	if m.CharWidth <= 0 {
		return 1
	}
	return max(1, int(math.Floor((m.MaxWidth-2*m.PaddingX)/m.CharWidth)))
}

// MinBox returns the smallest box for the level.
func (m LevelMetrics) MinBox() geom.Size {
	return geom.Size{Width: m.MinWidth, Height: m.MinHeight}
}

func metricsFor(fontSize, lineHeight, padX, padY, minW, maxW, minH float64) LevelMetrics {
	return LevelMetrics{
		FontSize:   fontSize,
		CharWidth:  fontSize * charWidthRatio,
		LineHeight: lineHeight,
		PaddingX:   padX,
		PaddingY:   padY,
		MinWidth:   minW,
		MaxWidth:   maxW,
		MinHeight:  minH,
	}
}

// Default per-level metrics.
var (
	DefaultRoot   = metricsFor(20, 26, 24, 17, 120, 300, 60)
	DefaultBranch = metricsFor(16, 21, 18, 13, 100, 220, 48)
	DefaultLeaf   = metricsFor(14, 18, 14, 9, 80, 180, 36)
)

// Estimator maps a label and depth to an approximate box size.
// The zero value uses the default metrics.
type Estimator struct {
	Root   LevelMetrics `json:"root" toml:"root"`
	Branch LevelMetrics `json:"branch" toml:"branch"`
	Leaf   LevelMetrics `json:"leaf" toml:"leaf"`
}

// New returns an Estimator with the default metrics.
func New() *Estimator {
	return &Estimator{Root: DefaultRoot, Branch: DefaultBranch, Leaf: DefaultLeaf}
}

// Metrics returns the metrics for a depth. Negative levels are treated as
// the root.
func (e *Estimator) Metrics(level int) LevelMetrics {
	if e == nil {
		e = &Estimator{}
	}
	var m, def LevelMetrics
	switch {
	case level <= 0:
		m, def = e.Root, DefaultRoot
	case level == 1:
		m, def = e.Branch, DefaultBranch
	default:
		m, def = e.Leaf, DefaultLeaf
	}
	if m == (LevelMetrics{}) {
		return def
	}
	return m
}

// Estimate returns the approximate rendered size of a node label at the
// given depth. Empty text yields the level's minimum box.
func (e *Estimator) Estimate(text string, level int) geom.Size {
	m := e.Metrics(level)
	text = strings.TrimSpace(text)
	if text == "" {
		return m.MinBox()
	}

	n := utf8.RuneCountInString(text)
	width := geom.Clamp(float64(n)*m.CharWidth+2*m.PaddingX, m.MinWidth, m.MaxWidth)
	cpl := m.CharsPerLine()
	lines := max(1, (n+cpl-1)/cpl)
	height := max(m.MinHeight, float64(lines)*m.LineHeight+2*m.PaddingY)
	return geom.Size{Width: width, Height: height}
}

// Lines returns the number of wrapped lines the estimator assumes for text.
func (e *Estimator) Lines(text string, level int) int {
	text = strings.TrimSpace(text)
	if text == "" {
		text = mindmap.PlaceholderText
	}
	cpl := e.Metrics(level).CharsPerLine()
	return max(1, (utf8.RuneCountInString(text)+cpl-1)/cpl)
}

// Validate reports whether the metrics can produce sensible boxes.
func (m LevelMetrics) Validate() bool {
	return m.CharWidth > 0 && m.LineHeight > 0 &&
		m.PaddingX >= 0 && m.PaddingY >= 0 &&
		m.MinWidth > 0 && m.MaxWidth >= m.MinWidth &&
		m.MaxWidth > 2*m.PaddingX && m.MinHeight > 0
}
