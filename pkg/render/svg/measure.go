package svg

import (
	"math"
	"strings"
	"unicode"

	"github.com/matzehuels/mindcanvas/pkg/core/estimate"
	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/route"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// Glyph advances in em for a proportional sans-serif face.
const (
	advanceNarrow  = 0.30
	advanceDefault = 0.52
	advanceCaps    = 0.66
	advanceWide    = 0.86
	advanceFull    = 1.00
)

const narrowGlyphs = "ijlftrI1.,:;'|!()[] "

// Label is a measured node label.
type Label struct {
	Lines      []string
	Level      int
	FontSize   float64
	LineHeight float64
	Size       geom.Size
}

// Measurement maps node ids to measured labels.
type Measurement map[string]Label

var _ route.GeometryProvider = Measurement(nil)

// RenderedBox implements route.GeometryProvider.
func (m Measurement) RenderedBox(id string) (geom.Size, bool) {
	l, ok := m[id]
	if !ok || l.Size.Empty() {
		return geom.Size{}, false
	}
	return l.Size, true
}

// Sizes returns the measured box sizes keyed by node id.
func (m Measurement) Sizes() layout.Sizes {
	out := make(layout.Sizes, len(m))
	for id, l := range m {
		out[id] = l.Size
	}
	return out
}

// Measurer wraps and sizes labels using an estimator's box model.
type Measurer struct {
	est *estimate.Estimator
}

// NewMeasurer returns a Measurer for est; nil uses the default metrics.
func NewMeasurer(est *estimate.Estimator) *Measurer {
	if est == nil {
		est = estimate.New()
	}
	return &Measurer{est: est}
}

// Measure measures every node of the tree.
func (m *Measurer) Measure(root *mindmap.Node) Measurement {
	out := Measurement{}
	mindmap.Walk(root, func(n, _ *mindmap.Node, depth int) bool {
		out[n.ID] = m.Label(n.Label(), depth)
		return true
	})
	return out
}

// Label wraps text for the given depth and sizes the resulting box.
func (m *Measurer) Label(text string, level int) Label {
	mt := m.est.Metrics(level)
	lines := m.Wrap(text, level)

	widest := 0.0
	for _, l := range lines {
		widest = max(widest, textWidth(l, mt.FontSize))
	}
	w := geom.Clamp(math.Ceil(widest+2*mt.PaddingX), mt.MinWidth, mt.MaxWidth)
	h := max(mt.MinHeight, math.Ceil(float64(len(lines))*mt.LineHeight+2*mt.PaddingY))
	return Label{
		Lines:      lines,
		Level:      level,
		FontSize:   mt.FontSize,
		LineHeight: mt.LineHeight,
		Size:       geom.Size{Width: w, Height: h},
	}
}

// Wrap breaks text into lines that fit the level's content width. Words
// wider than a line are split between glyphs.
func (m *Measurer) Wrap(text string, level int) []string {
	mt := m.est.Metrics(level)
	limit := mt.MaxWidth - 2*mt.PaddingX
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{mindmap.PlaceholderText}
	}

	var lines []string
	var cur string
	for _, w := range words {
		for _, part := range splitWord(w, limit, mt.FontSize) {
			candidate := part
			if cur != "" {
				candidate = cur + " " + part
			}
			if cur != "" && textWidth(candidate, mt.FontSize) > limit {
				lines = append(lines, cur)
				cur = part
				continue
			}
			cur = candidate
		}
	}
	return append(lines, cur)
}

func splitWord(w string, limit, fontSize float64) []string {
	if textWidth(w, fontSize) <= limit {
		return []string{w}
	}
	var parts []string
	var b strings.Builder
	width := 0.0
	for _, r := range w {
		adv := advance(r) * fontSize
		if b.Len() > 0 && width+adv > limit {
			parts = append(parts, b.String())
			b.Reset()
			width = 0
		}
		b.WriteRune(r)
		width += adv
	}
	return append(parts, b.String())
}

func textWidth(s string, fontSize float64) float64 {
	w := 0.0
	for _, r := range s {
		w += advance(r)
	}
	return w * fontSize
}

func advance(r rune) float64 {
	switch {
	case strings.ContainsRune(narrowGlyphs, r):
		return advanceNarrow
	case r == 'm' || r == 'w' || r == 'M' || r == 'W' || r == '@':
		return advanceWide
	case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
		return advanceFull
	case unicode.IsUpper(r):
		return advanceCaps
	default:
		return advanceDefault
	}
}
