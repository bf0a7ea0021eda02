package trialplot

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ChartKind int

const (
	LineChart ChartKind = iota
	BarChart
)

func (k ChartKind) String() string {
	switch k {
	case LineChart:
		return "line"
	case BarChart:
		return "bar"
	default:
		return "unknown"
	}
}

// Axes is a bit set selecting which axes draw grid lines.
type Axes uint8

const (
	XAxis Axes = 1 << iota
	YAxis

	NoAxes   Axes = 0
	BothAxes      = XAxis | YAxis
)

func (a Axes) Has(axis Axes) bool {
	return a&axis != 0
}

// Color is a named color understood by every renderer.
type Color string

const (
	Blue   Color = "blue"
	Orange Color = "orange"
	Green  Color = "green"
	Red    Color = "red"
	Black  Color = "black"
)

const (
	ActualSeriesName   = "Actual"
	ExpectedSeriesName = "Expected (No Trial)"
	UpliftAxisLabel    = "Uplift"
	PeriodAxisLabel    = "Month"

	defaultLineWidth = 2.0
	defaultWidthIn   = 8.0
	defaultHeightIn  = 4.0
)

type LineSeries struct {
	Name    string
	Values  []float64
	Color   Color
	Dashed  bool
	Markers bool
	Width   float64 // points
}

type Bar struct {
	Value float64
	Color Color
}

// ReferenceLine is a horizontal line spanning the whole x range.
type ReferenceLine struct {
	Y     float64
	Color Color
	Width float64 // points
}

// Figure is a renderer independent description of a chart. Labels hold one
// category per dataset row, in row order, and every series or bar list is
// index aligned with it.
type Figure struct {
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string
	Labels []string

	Lines          []LineSeries
	Bars           []Bar
	ReferenceLines []ReferenceLine

	Grid   Axes
	Legend bool

	WidthInches  float64
	HeightInches float64
}

// AxisLabel turns a metric column name into an axis label: underscores
// become spaces and every word is title cased, so "net_sales" reads
// "Net Sales".
func AxisLabel(column string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(column, "_", " "))
}

// UpliftColor is green for a strictly positive uplift and red otherwise.
// Zero is red.
func UpliftColor(v float64) Color {
	if v > 0 {
		return Green
	}

	return Red
}

// NewActualVsExpectedFigure builds the line chart comparing the metric column
// with its expected (no trial) counterpart. The y label is derived from
// metric.
func NewActualVsExpectedFigure(df dataframe.DataFrame, metric, expected, title string) (Figure, error) {
	labels, err := periodLabels(df)
	if err != nil {
		return Figure{}, err
	}

	actualValues, err := metricValues(df, metric)
	if err != nil {
		return Figure{}, err
	}

	expectedValues, err := metricValues(df, expected)
	if err != nil {
		return Figure{}, err
	}

	logrus.WithFields(logrus.Fields{
		"tag":      "Figure",
		"metric":   metric,
		"expected": expected,
		"rows":     len(labels),
	}).Debug("built actual vs expected figure")

	return Figure{
		Kind:   LineChart,
		Title:  title,
		XLabel: PeriodAxisLabel,
		YLabel: AxisLabel(metric),
		Labels: labels,
		Lines: []LineSeries{
			{
				Name:    ActualSeriesName,
				Values:  actualValues,
				Color:   Blue,
				Markers: true,
				Width:   defaultLineWidth,
			},
			{
				Name:    ExpectedSeriesName,
				Values:  expectedValues,
				Color:   Orange,
				Dashed:  true,
				Markers: true,
				Width:   defaultLineWidth,
			},
		},
		Grid:         BothAxes,
		Legend:       true,
		WidthInches:  defaultWidthIn,
		HeightInches: defaultHeightIn,
	}, nil
}

// NewUpliftFigure builds the bar chart of a pre-computed uplift column with
// one sign colored bar per row and a reference line at zero.
func NewUpliftFigure(df dataframe.DataFrame, upliftColumn, title string) (Figure, error) {
	labels, err := periodLabels(df)
	if err != nil {
		return Figure{}, err
	}

	values, err := metricValues(df, upliftColumn)
	if err != nil {
		return Figure{}, err
	}

	bars := make([]Bar, len(values))
	for i, v := range values {
		bars[i] = Bar{Value: v, Color: UpliftColor(v)}
	}

	logrus.WithFields(logrus.Fields{
		"tag":    "Figure",
		"uplift": upliftColumn,
		"rows":   len(labels),
	}).Debug("built uplift figure")

	return Figure{
		Kind:   BarChart,
		Title:  title,
		XLabel: PeriodAxisLabel,
		YLabel: UpliftAxisLabel,
		Labels: labels,
		Bars:   bars,
		ReferenceLines: []ReferenceLine{
			{Y: 0, Color: Black, Width: 1},
		},
		Grid:         YAxis,
		WidthInches:  defaultWidthIn,
		HeightInches: defaultHeightIn,
	}, nil
}
