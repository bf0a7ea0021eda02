package trialplot

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trialDataset(t *testing.T) dataframe.DataFrame {
	t.Helper()

	df := dataframe.New(
		series.New([]int{202401, 202402}, series.Int, PeriodColumn),
		series.New([]float64{100, 95}, series.Float, "actual"),
		series.New([]float64{90, 100}, series.Float, "expected"),
	)
	require.NoError(t, df.Err)

	return df
}

func upliftDataset(t *testing.T, uplift []float64) dataframe.DataFrame {
	t.Helper()

	periods := make([]int, len(uplift))
	for i := range uplift {
		periods[i] = 202401 + i
	}

	df := dataframe.New(
		series.New(periods, series.Int, PeriodColumn),
		series.New(uplift, series.Float, "uplift"),
	)
	require.NoError(t, df.Err)

	return df
}

func TestPeriodLabels(t *testing.T) {
	t.Run("int periods become strings in row order", func(t *testing.T) {
		df := dataframe.New(
			series.New([]int{202403, 202401, 202402}, series.Int, PeriodColumn),
		)
		labels, err := periodLabels(df)
		require.NoError(t, err)
		assert.Equal(t, []string{"202403", "202401", "202402"}, labels)
	})

	t.Run("string periods kept as is", func(t *testing.T) {
		df := dataframe.New(
			series.New([]string{"202401", "202402"}, series.String, PeriodColumn),
		)
		labels, err := periodLabels(df)
		require.NoError(t, err)
		assert.Equal(t, []string{"202401", "202402"}, labels)
	})

	t.Run("missing period column", func(t *testing.T) {
		df := dataframe.New(series.New([]float64{1}, series.Float, "actual"))
		_, err := periodLabels(df)

		var columnErr *ColumnError
		require.ErrorAs(t, err, &columnErr)
		assert.Equal(t, PeriodColumn, columnErr.Column)
		assert.Contains(t, err.Error(), PeriodColumn)
	})
}

func TestMetricValues(t *testing.T) {
	t.Run("numeric column", func(t *testing.T) {
		values, err := metricValues(trialDataset(t), "actual")
		require.NoError(t, err)
		assert.Equal(t, []float64{100, 95}, values)
	})

	t.Run("non numeric cells become NaN", func(t *testing.T) {
		df := dataframe.New(series.New([]string{"12.5", "abc"}, series.String, "net_sales"))
		values, err := metricValues(df, "net_sales")
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, 12.5, values[0])
		assert.True(t, math.IsNaN(values[1]))
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := metricValues(trialDataset(t), "net_sales")

		var columnErr *ColumnError
		require.ErrorAs(t, err, &columnErr)
		assert.Equal(t, "net_sales", columnErr.Column)
		assert.Error(t, columnErr.Unwrap())
	})
}
