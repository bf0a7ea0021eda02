package trialplot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

type Format string

const (
	PNG  Format = "png"
	SVG  Format = "svg"
	PDF  Format = "pdf"
	HTML Format = "html"
)

var ErrUnknownFormat = errors.New("unknown figure format")

func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case SVG:
		return "image/svg+xml"
	case PDF:
		return "application/pdf"
	case HTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

type Renderer interface {
	Render(w io.Writer, fig Figure) error
	Format() Format
}

// NewRenderer picks the renderer for a format: gonum/plot for images and
// documents, echarts for HTML.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case PNG, SVG, PDF:
		return NewPlotRenderer(format), nil
	case HTML:
		return NewEChartsRenderer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// RenderedFigure is a figure encoded by a Renderer, ready to be displayed.
type RenderedFigure struct {
	Title  string
	Kind   ChartKind
	Format Format
	Data   []byte
}

func RenderFigure(r Renderer, fig Figure) (RenderedFigure, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, fig); err != nil {
		return RenderedFigure{}, fmt.Errorf("render %s %q: %w", fig.Kind, fig.Title, err)
	}

	return RenderedFigure{
		Title:  fig.Title,
		Kind:   fig.Kind,
		Format: r.Format(),
		Data:   buf.Bytes(),
	}, nil
}
