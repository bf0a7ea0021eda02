package trialplot

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// PeriodColumn holds the YYYYMM period identifier of every row.
const PeriodColumn = "YEARMONTH"

// ColumnError is returned when a column cannot be read from a dataset. Err is
// whatever the dataframe layer reported.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q: %v", e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

func column(df dataframe.DataFrame, name string) (series.Series, error) {
	s := df.Col(name)
	if s.Err != nil {
		return series.Series{}, &ColumnError{Column: name, Err: s.Err}
	}

	return s, nil
}

// Period labels in row order. Non-string columns go through their record
// representation, so an int 202401 becomes "202401".
func periodLabels(df dataframe.DataFrame) ([]string, error) {
	s, err := column(df, PeriodColumn)
	if err != nil {
		return nil, err
	}

	return s.Records(), nil
}

// Non-numeric cells come back as NaN and are rejected later by the renderer.
func metricValues(df dataframe.DataFrame, name string) ([]float64, error) {
	s, err := column(df, name)
	if err != nil {
		return nil, err
	}

	return s.Float(), nil
}
