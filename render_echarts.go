package trialplot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/plotter"
)

const pixelsPerInch = 96

var cssColors = map[Color]string{
	Blue:   "#1f77b4",
	Orange: "#ff7f0e",
	Green:  "green",
	Red:    "red",
	Black:  "black",
}

// EChartsRenderer writes a self contained HTML page per figure.
type EChartsRenderer struct {
	logger logrus.FieldLogger
}

func NewEChartsRenderer() *EChartsRenderer {
	return &EChartsRenderer{
		logger: logrus.WithField("tag", "EChartsRenderer"),
	}
}

func (r *EChartsRenderer) Format() Format {
	return HTML
}

func (r *EChartsRenderer) Render(w io.Writer, fig Figure) error {
	// go-echarts drops values it cannot encode as JSON and still writes a
	// page, so NaN and infinities are refused here the way gonum refuses them.
	if err := checkFinite(fig); err != nil {
		return err
	}

	var err error
	switch fig.Kind {
	case LineChart:
		err = r.line(fig).Render(w)
	case BarChart:
		err = r.bar(fig).Render(w)
	default:
		return fmt.Errorf("echarts: unsupported chart kind %v", fig.Kind)
	}

	if err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"title": fig.Title,
		"kind":  fig.Kind,
	}).Debug("rendered figure")

	return nil
}

func checkFinite(fig Figure) error {
	for _, s := range fig.Lines {
		if err := plotter.CheckFloats(s.Values...); err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
	}

	for i, b := range fig.Bars {
		if err := plotter.CheckFloats(b.Value); err != nil {
			return fmt.Errorf("bar %d: %w", i, err)
		}
	}

	return nil
}

func (r *EChartsRenderer) globalOptions(fig Figure) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fig.Title,
			Width:     fmt.Sprintf("%dpx", int(fig.WidthInches*pixelsPerInch)),
			Height:    fmt.Sprintf("%dpx", int(fig.HeightInches*pixelsPerInch)),
		}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(fig.Legend)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      fig.XLabel,
			SplitLine: gridLine(fig.Grid.Has(XAxis)),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      fig.YLabel,
			SplitLine: gridLine(fig.Grid.Has(YAxis)),
		}),
	}
}

func gridLine(show bool) *opts.SplitLine {
	return &opts.SplitLine{
		Show:      opts.Bool(show),
		LineStyle: &opts.LineStyle{Color: "rgba(176, 176, 176, 0.3)"},
	}
}

func (r *EChartsRenderer) line(fig Figure) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOptions(fig)...)
	line.SetXAxis(fig.Labels)

	for _, s := range fig.Lines {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: v}
		}

		style := opts.LineStyle{
			Color: cssColors[s.Color],
			Width: float32(s.Width),
		}
		if s.Dashed {
			style.Type = "dashed"
		}

		line.AddSeries(s.Name, data,
			charts.WithLineStyleOpts(style),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: cssColors[s.Color]}),
		)
	}

	return line
}

func (r *EChartsRenderer) bar(fig Figure) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(fig)...)
	bar.SetXAxis(fig.Labels)

	data := make([]opts.BarData, len(fig.Bars))
	for i, b := range fig.Bars {
		data[i] = opts.BarData{
			Value:     b.Value,
			ItemStyle: &opts.ItemStyle{Color: cssColors[b.Color]},
		}
	}

	seriesOpts := []charts.SeriesOpts{}
	for _, ref := range fig.ReferenceLines {
		seriesOpts = append(seriesOpts,
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
				Name:  fmt.Sprintf("y=%g", ref.Y),
				YAxis: ref.Y,
			}),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				Symbol:    []string{"none", "none"},
				LineStyle: &opts.LineStyle{Color: cssColors[ref.Color], Width: float32(ref.Width)},
			}),
		)
	}

	bar.AddSeries(fig.YLabel, data, seriesOpts...)

	return bar
}
