package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

// pointsPerPixel converts CSS pixels to graphviz points.
const pointsPerPixel = 0.75

// Options configures DOT output.
type Options struct {
	// Detailed appends the node id and depth to each label.
	Detailed bool
	// Unpinned lets graphviz lay the tree out itself (rankdir=TB) instead
	// of pinning the engine's positions.
	Unpinned bool
}

// ToDOT converts a scene to DOT. Pinned coordinates are node centers with
// the y axis flipped, since graphviz grows upward.
func ToDOT(s render.Scene, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph mindmap {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"sans-serif\", fixedsize=true];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	if opts.Unpinned {
		buf.WriteString("  rankdir=TB;\n  ranksep=0.5;\n  nodesep=0.3;\n")
	} else {
		buf.WriteString("  layout=neato;\n  splines=ortho;\n")
	}
	buf.WriteString("\n")

	ext := s.Extent()
	for _, n := range s.Nodes() {
		label := n.Text
		if opts.Detailed {
			label = fmt.Sprintf("%s\nid: %s\nlevel: %d", n.Text, n.ID, n.Level)
		}
		attrs := []string{
			fmt.Sprintf("label=%q", label),
			fmt.Sprintf("width=%.2f", n.Box.Width*pointsPerPixel/72),
			fmt.Sprintf("height=%.2f", n.Box.Height*pointsPerPixel/72),
		}
		if !opts.Unpinned {
			cx := n.Box.CenterX() * pointsPerPixel
			cy := (ext.Height - n.Box.CenterY()) * pointsPerPixel
			attrs = append(attrs, fmt.Sprintf("pos=\"%.1f,%.1f!\"", cx, cy))
		}
		if n.Level == 0 {
			attrs = append(attrs, "fillcolor=\"#e0e7ff\"", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range s.Connections {
		fmt.Fprintf(&buf, "  %q -> %q;\n", c.FromNodeID, c.ToNodeID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT text to SVG using the embedded Graphviz. A
// layout attribute in the graph selects the engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderAs(ctx, dot, graphviz.SVG)
}

// RenderPNG renders DOT text to PNG using the embedded Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderAs(ctx, dot, graphviz.PNG)
}

func renderAs(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}
