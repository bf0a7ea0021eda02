package trialplot

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisLabel(t *testing.T) {
	tests := map[string]string{
		"net_sales":    "Net Sales",
		"total_units":  "Total Units",
		"customers":    "Customers",
		"NET_SALES":    "Net Sales",
		"avg_txn_qty":  "Avg Txn Qty",
		"":             "",
		"2nd_qtr":      "2Nd Qtr",
		"o'neil_sales": "O'neil Sales", // apostrophes stay inside a word
	}

	for column, want := range tests {
		assert.Equal(t, want, AxisLabel(column), "column %q", column)
	}
}

func TestUpliftColor(t *testing.T) {
	assert.Equal(t, Green, UpliftColor(10))
	assert.Equal(t, Green, UpliftColor(0.0001))
	assert.Equal(t, Red, UpliftColor(0))
	assert.Equal(t, Red, UpliftColor(-5))
}

func TestNewActualVsExpectedFigure(t *testing.T) {
	t.Run("two rows", func(t *testing.T) {
		fig, err := NewActualVsExpectedFigure(trialDataset(t), "actual", "expected", "Store 77")
		require.NoError(t, err)

		assert.Equal(t, LineChart, fig.Kind)
		assert.Equal(t, "Store 77", fig.Title)
		assert.Equal(t, PeriodAxisLabel, fig.XLabel)
		assert.Equal(t, "Actual", fig.YLabel)
		assert.Equal(t, []string{"202401", "202402"}, fig.Labels)
		assert.Equal(t, BothAxes, fig.Grid)
		assert.True(t, fig.Legend)
		assert.Empty(t, fig.Bars)

		require.Len(t, fig.Lines, 2)
		actual, expected := fig.Lines[0], fig.Lines[1]

		assert.Equal(t, ActualSeriesName, actual.Name)
		assert.Equal(t, []float64{100, 95}, actual.Values)
		assert.False(t, actual.Dashed)
		assert.True(t, actual.Markers)

		assert.Equal(t, ExpectedSeriesName, expected.Name)
		assert.Equal(t, []float64{90, 100}, expected.Values)
		assert.True(t, expected.Dashed)
		assert.True(t, expected.Markers)

		assert.Equal(t, actual.Width, expected.Width)
	})

	t.Run("y label from metric column", func(t *testing.T) {
		df := dataframe.New(
			series.New([]int{202401}, series.Int, PeriodColumn),
			series.New([]float64{1}, series.Float, "total_units"),
			series.New([]float64{2}, series.Float, "expected_units"),
		)
		fig, err := NewActualVsExpectedFigure(df, "total_units", "expected_units", "")
		require.NoError(t, err)
		assert.Equal(t, "Total Units", fig.YLabel)
	})

	t.Run("one point per row in row order", func(t *testing.T) {
		df := dataframe.New(
			series.New([]int{202405, 202403, 202404, 202401}, series.Int, PeriodColumn),
			series.New([]float64{1, 2, 3, 4}, series.Float, "a"),
			series.New([]float64{4, 3, 2, 1}, series.Float, "e"),
		)
		fig, err := NewActualVsExpectedFigure(df, "a", "e", "t")
		require.NoError(t, err)

		assert.Equal(t, []string{"202405", "202403", "202404", "202401"}, fig.Labels)
		for _, line := range fig.Lines {
			assert.Len(t, line.Values, 4)
		}
		assert.Equal(t, []float64{1, 2, 3, 4}, fig.Lines[0].Values)
	})

	t.Run("empty dataset", func(t *testing.T) {
		df := dataframe.New(
			series.New([]int{}, series.Int, PeriodColumn),
			series.New([]float64{}, series.Float, "a"),
			series.New([]float64{}, series.Float, "e"),
		)
		fig, err := NewActualVsExpectedFigure(df, "a", "e", "empty")
		require.NoError(t, err)
		assert.Empty(t, fig.Labels)
		for _, line := range fig.Lines {
			assert.Empty(t, line.Values)
		}
	})

	t.Run("missing columns", func(t *testing.T) {
		for _, cols := range [][2]string{{"nope", "expected"}, {"actual", "nope"}} {
			_, err := NewActualVsExpectedFigure(trialDataset(t), cols[0], cols[1], "t")

			var columnErr *ColumnError
			require.ErrorAs(t, err, &columnErr)
			assert.Equal(t, "nope", columnErr.Column)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		df := trialDataset(t)
		first, err := NewActualVsExpectedFigure(df, "actual", "expected", "t")
		require.NoError(t, err)
		second, err := NewActualVsExpectedFigure(df, "actual", "expected", "t")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestNewUpliftFigure(t *testing.T) {
	t.Run("colors by sign with zero as red", func(t *testing.T) {
		fig, err := NewUpliftFigure(upliftDataset(t, []float64{10, -5, 0}), "uplift", "Uplift of store 77")
		require.NoError(t, err)

		assert.Equal(t, BarChart, fig.Kind)
		assert.Equal(t, "Uplift of store 77", fig.Title)
		assert.Equal(t, UpliftAxisLabel, fig.YLabel)
		assert.Equal(t, PeriodAxisLabel, fig.XLabel)
		assert.Equal(t, []string{"202401", "202402", "202403"}, fig.Labels)
		assert.Equal(t, []Bar{
			{Value: 10, Color: Green},
			{Value: -5, Color: Red},
			{Value: 0, Color: Red},
		}, fig.Bars)
	})

	t.Run("zero reference line and y grid only", func(t *testing.T) {
		fig, err := NewUpliftFigure(upliftDataset(t, []float64{1}), "uplift", "t")
		require.NoError(t, err)

		assert.Equal(t, []ReferenceLine{{Y: 0, Color: Black, Width: 1}}, fig.ReferenceLines)
		assert.True(t, fig.Grid.Has(YAxis))
		assert.False(t, fig.Grid.Has(XAxis))
		assert.False(t, fig.Legend)
		assert.Empty(t, fig.Lines)
	})

	t.Run("one bar per row", func(t *testing.T) {
		uplift := []float64{3, -1, 4, -1, 5, -9, 2, 6}
		fig, err := NewUpliftFigure(upliftDataset(t, uplift), "uplift", "t")
		require.NoError(t, err)

		require.Len(t, fig.Bars, len(uplift))
		for i, b := range fig.Bars {
			assert.Equal(t, uplift[i], b.Value)
		}
	})

	t.Run("empty dataset", func(t *testing.T) {
		fig, err := NewUpliftFigure(upliftDataset(t, []float64{}), "uplift", "t")
		require.NoError(t, err)
		assert.Empty(t, fig.Bars)
		assert.Empty(t, fig.Labels)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := NewUpliftFigure(upliftDataset(t, []float64{1}), "net_sales_uplift", "t")

		var columnErr *ColumnError
		require.ErrorAs(t, err, &columnErr)
		assert.Equal(t, "net_sales_uplift", columnErr.Column)
	})
}
