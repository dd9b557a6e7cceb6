package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"

	"github.com/matzehuels/mindcanvas/pkg/errors"
)

// converter is the librsvg command line tool used for raster and PDF output.
const converter = "rsvg-convert"

// HasConverter reports whether rsvg-convert is on PATH.
func HasConverter() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

// ToPDF converts an SVG document to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, FormatPDF)
}

// ToPNG converts an SVG document to PNG. A scale of 2 doubles the pixel
// size; non-positive scales render at 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, FormatPNG, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, f Format, extra ...string) ([]byte, error) {
	if !HasConverter() {
		return nil, errors.New(errors.ErrCodeNotFound,
			"%s output needs %s (librsvg): brew install librsvg, or apt install librsvg2-bin", f, converter)
	}

	cmd := exec.CommandContext(ctx, converter, append([]string{"-f", string(f)}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", converter, bytes.TrimSpace(stderr.Bytes()))
	}
	return out.Bytes(), nil
}
