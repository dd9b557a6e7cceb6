package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/observability"
	"github.com/matzehuels/mindcanvas/pkg/render"
	"github.com/matzehuels/mindcanvas/pkg/render/dot"
	"github.com/matzehuels/mindcanvas/pkg/render/grid"
	"github.com/matzehuels/mindcanvas/pkg/render/svg"
)

// FitView returns the viewport that frames the root node when opts.Fit is
// set, and the identity otherwise.
func FitView(frame settle.Frame, opts Options) viewport.State {
	if !opts.Fit {
		return viewport.Identity
	}
	rootBox, ok := frame.RootBox()
	if !ok {
		return viewport.Identity
	}
	return viewport.New(opts.Viewport).FitToFrame(rootBox, frame.Canvas)
}

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, frame settle.Frame, view viewport.State, opts Options) (map[string][]byte, error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := renderFormats(ctx, frame, view, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, frame settle.Frame, view viewport.State, opts Options) (map[string][]byte, error) {
	scene := render.FromFrame(frame)
	theme, _ := svg.ThemeByName(opts.Theme)

	var svgBytes []byte
	svgOut := func() []byte {
		if svgBytes == nil {
			svgOpts := []svg.Option{svg.WithTheme(theme), svg.WithMeasurer(measurerFor(opts))}
			if opts.Fit {
				svgOpts = append(svgOpts, svg.WithViewport(view))
			}
			svgBytes = svg.Render(scene, svgOpts...)
		}
		return svgBytes
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error
		switch render.Format(f) {
		case render.FormatSVG:
			data = svgOut()
		case render.FormatPNG:
			if render.HasConverter() {
				data, err = render.ToPNG(ctx, svgOut(), opts.Scale)
			} else {
				data, err = dot.RenderPNG(ctx, dot.ToDOT(scene, dot.Options{}))
			}
		case render.FormatPDF:
			data, err = render.ToPDF(ctx, svgOut())
		case render.FormatDOT:
			data = []byte(dot.ToDOT(scene, dot.Options{}))
		case render.FormatJSON:
			data, err = render.RenderJSON(scene)
		case render.FormatText:
			data = []byte(renderText(scene, view, opts.Fit))
		default:
			err = errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", f)
		}
		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", f)
		}
		artifacts[f] = data
	}
	return artifacts, nil
}

func renderText(scene render.Scene, view viewport.State, fit bool) string {
	if !fit {
		return grid.Fit(scene).String()
	}
	ext := scene.Extent()
	cols := int(math.Ceil(ext.Width / grid.DefaultCellWidth))
	rows := int(math.Ceil(ext.Height / grid.DefaultCellHeight))
	return grid.Rasterize(scene, view, cols, rows).String()
}

func measurerFor(opts Options) *svg.Measurer {
	return svg.NewMeasurer(opts.Estimator)
}
