package trialplot

import (
	"fmt"
	"image/color"
	"io"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	maxBarWidth = 30 // points
	barFill     = 0.8
)

var (
	gridColor = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0x4d}
	dashes    = []vg.Length{vg.Points(6), vg.Points(3)}

	rgba = map[Color]color.Color{
		Blue:   color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		Orange: color.NRGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		Green:  color.NRGBA{R: 0x00, G: 0x80, B: 0x00, A: 0xff},
		Red:    color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
		Black:  color.Black,
	}
)

// PlotRenderer draws figures with gonum/plot. Categories sit at x = 0..n-1
// and are labelled with nominal ticks.
type PlotRenderer struct {
	format Format
	logger logrus.FieldLogger
}

func NewPlotRenderer(format Format) *PlotRenderer {
	return &PlotRenderer{
		format: format,
		logger: logrus.WithField("tag", "PlotRenderer"),
	}
}

func (r *PlotRenderer) Format() Format {
	return r.format
}

func (r *PlotRenderer) Render(w io.Writer, fig Figure) error {
	p, err := r.plot(fig)
	if err != nil {
		return err
	}

	width := vg.Length(fig.WidthInches) * vg.Inch
	height := vg.Length(fig.HeightInches) * vg.Inch

	writerTo, err := p.WriterTo(width, height, string(r.format))
	if err != nil {
		return err
	}

	n, err := writerTo.WriteTo(w)
	if err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"title":  fig.Title,
		"kind":   fig.Kind,
		"format": r.format,
		"bytes":  n,
	}).Debug("rendered figure")

	return nil
}

func (r *PlotRenderer) plot(fig Figure) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel

	if fig.Grid != NoAxes {
		grid := plotter.NewGrid()
		grid.Vertical.Color = nil
		grid.Horizontal.Color = nil
		if fig.Grid.Has(XAxis) {
			grid.Vertical.Color = gridColor
		}
		if fig.Grid.Has(YAxis) {
			grid.Horizontal.Color = gridColor
		}
		p.Add(grid)
	}

	for _, s := range fig.Lines {
		if err := addLineSeries(p, s, fig.Legend); err != nil {
			return nil, err
		}
	}

	if len(fig.Bars) > 0 {
		width := barWidth(fig, len(fig.Bars))
		for i, b := range fig.Bars {
			bars, err := plotter.NewBarChart(plotter.Values{b.Value}, width)
			if err != nil {
				return nil, fmt.Errorf("bar %d: %w", i, err)
			}
			bars.XMin = float64(i)
			bars.Color = rgba[b.Color]
			bars.LineStyle.Width = 0
			p.Add(bars)
		}
	}

	for _, ref := range fig.ReferenceLines {
		y := ref.Y
		fn := plotter.NewFunction(func(float64) float64 { return y })
		fn.LineStyle.Color = rgba[ref.Color]
		fn.LineStyle.Width = vg.Points(ref.Width)
		p.Add(fn)
	}

	// NominalX measures the first label, so it cannot run on an empty figure.
	if len(fig.Labels) > 0 {
		p.NominalX(fig.Labels...)
	}

	return p, nil
}

func addLineSeries(p *plot.Plot, s LineSeries, legend bool) error {
	lineStyle := draw.LineStyle{
		Color: rgba[s.Color],
		Width: vg.Points(s.Width),
	}
	if s.Dashed {
		lineStyle.Dashes = dashes
	}

	glyphStyle := draw.GlyphStyle{
		Color:  rgba[s.Color],
		Radius: vg.Points(3),
		Shape:  draw.CircleGlyph{},
	}

	thumbs := []plot.Thumbnailer{&plotter.Line{LineStyle: lineStyle}}
	if s.Markers {
		thumbs = append(thumbs, &plotter.Scatter{GlyphStyle: glyphStyle})
	}

	if len(s.Values) > 0 {
		xys := make(plotter.XYs, len(s.Values))
		for i, v := range s.Values {
			xys[i].X = float64(i)
			xys[i].Y = v
		}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}

		line.LineStyle = lineStyle
		p.Add(line)

		if s.Markers {
			points.GlyphStyle = glyphStyle
			p.Add(points)
		}
	}

	if legend {
		p.Legend.Add(s.Name, thumbs...)
	}

	return nil
}

// Bars share the horizontal space left after the axes, capped so a short
// dataset does not produce slabs.
func barWidth(fig Figure, n int) vg.Length {
	available := vg.Length(fig.WidthInches-1.5) * vg.Inch
	return Min(vg.Points(maxBarWidth), vg.Length(barFill)*available/vg.Length(n))
}
