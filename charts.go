package trialplot

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/sirupsen/logrus"
)

// Config selects how a Charter renders and where figures go.
type Config struct {
	Format Format

	// Either "file" or "viewer".
	Output string
	Dir    string

	Viewer ViewerConfig
}

func DefaultConfig() Config {
	return Config{
		Format: PNG,
		Output: "file",
		Dir:    ".",
		Viewer: ViewerConfig{
			Host:        "127.0.0.1",
			Port:        5274,
			HistorySize: 64,
			OpenBrowser: true,
		},
	}
}

// Charter turns datasets into displayed charts. Each call builds a fresh
// figure, so calls do not influence each other.
type Charter struct {
	renderer Renderer
	display  Display
	logger   logrus.FieldLogger
}

func NewCharter(renderer Renderer, display Display) *Charter {
	return &Charter{
		renderer: renderer,
		display:  display,
		logger:   logrus.WithField("tag", "Charter"),
	}
}

// Open builds the renderer and display described by config.
func Open(config Config) (*Charter, error) {
	renderer, err := NewRenderer(config.Format)
	if err != nil {
		return nil, err
	}

	var display Display
	switch config.Output {
	case "file":
		display, err = NewFileDisplay(config.Dir)
	case "viewer":
		viewer := config.Viewer
		viewer.Metadata.Format = config.Format
		viewer.Metadata.ContentType = config.Format.ContentType()
		display, err = NewViewerDisplay(viewer)
	default:
		return nil, fmt.Errorf("unknown output %q", config.Output)
	}
	if err != nil {
		return nil, err
	}

	return NewCharter(renderer, display), nil
}

func (c *Charter) Display() Display {
	return c.display
}

// ActualVsExpectedChart draws the metric column and the expected column as
// two lines over the dataset periods and displays the result.
func (c *Charter) ActualVsExpectedChart(ctx context.Context, df dataframe.DataFrame, metric, expected, title string) error {
	fig, err := NewActualVsExpectedFigure(df, metric, expected, title)
	if err != nil {
		return err
	}

	return c.show(ctx, fig)
}

// UpliftChart draws one bar per period for the uplift column and displays
// the result.
func (c *Charter) UpliftChart(ctx context.Context, df dataframe.DataFrame, upliftColumn, title string) error {
	fig, err := NewUpliftFigure(df, upliftColumn, title)
	if err != nil {
		return err
	}

	return c.show(ctx, fig)
}

func (c *Charter) show(ctx context.Context, fig Figure) error {
	rendered, err := RenderFigure(c.renderer, fig)
	if err != nil {
		return err
	}

	if err := c.display.Show(ctx, rendered); err != nil {
		return fmt.Errorf("display %q: %w", fig.Title, err)
	}

	c.logger.WithFields(logrus.Fields{
		"title":  fig.Title,
		"kind":   fig.Kind,
		"points": len(fig.Labels),
	}).Debug("displayed chart")

	return nil
}

func (c *Charter) Close(ctx context.Context) error {
	return c.display.Close(ctx)
}
