package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/mindcanvas/pkg/errors"
)

// Format is an output format name.
type Format string

// Supported output formats.
const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
	FormatText Format = "txt"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON, FormatText}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatSVG, nil
	}
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", s)
	}
	return f, nil
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }
