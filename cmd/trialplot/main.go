package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/cactusdynamics/trialplot"
	"github.com/go-gota/gota/dataframe"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

type options struct {
	Input string `short:"i" long:"input" description:"CSV file with a YEARMONTH column, stdin when omitted"`

	Metric      string `short:"m" long:"metric" description:"actual metric column" default:"net_sales"`
	Expected    string `short:"e" long:"expected" description:"expected (no trial) column; skip the line chart when empty" default:"expected_net_sales"`
	Uplift      string `short:"u" long:"uplift" description:"uplift column; skip the bar chart when empty" default:"uplift"`
	Title       string `short:"t" long:"title" description:"title of the actual vs expected chart" default:"Actual vs Expected"`
	UpliftTitle string `long:"uplift-title" description:"title of the uplift chart" default:"Uplift"`

	Output string `short:"o" long:"output" description:"where figures go" choice:"file" choice:"viewer" default:"file"`
	Dir    string `short:"d" long:"dir" description:"output directory for --output=file" default:"."`
	Format string `short:"f" long:"format" description:"figure format" choice:"png" choice:"svg" choice:"pdf" choice:"html" default:"png"`

	Host      string `long:"host" description:"viewer host" default:"127.0.0.1" env:"TRIALPLOT_HOST"`
	Port      int    `short:"p" long:"port" description:"viewer port, 0 picks a free one" default:"5274" env:"TRIALPLOT_PORT"`
	History   int    `long:"history" description:"figures replayed to a newly opened viewer" default:"64"`
	NoBrowser bool   `long:"no-browser" description:"do not open a browser for --output=viewer"`

	LogLevel string `long:"log-level" description:"log level" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info" env:"TRIALPLOT_LOG_LEVEL"`
}

func (o options) config() trialplot.Config {
	config := trialplot.DefaultConfig()
	config.Format = trialplot.Format(o.Format)
	config.Output = o.Output
	config.Dir = o.Dir
	config.Viewer.Host = o.Host
	config.Viewer.Port = o.Port
	config.Viewer.HistorySize = o.History
	config.Viewer.OpenBrowser = !o.NoBrowser
	config.Viewer.Metadata.Title = o.Title
	return config
}

func readDataset(path string) (dataframe.DataFrame, error) {
	var input io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		defer f.Close()
		input = f
	}

	df := dataframe.ReadCSV(input)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read CSV: %w", df.Err)
	}

	return df, nil
}

func run(ctx context.Context, opts options) error {
	df, err := readDataset(opts.Input)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"rows":    df.Nrow(),
		"columns": df.Names(),
	}).Info("loaded dataset")

	charter, err := trialplot.Open(opts.config())
	if err != nil {
		return err
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := charter.Close(closeCtx); err != nil {
			logrus.WithError(err).Warn("failed to close display")
		}
	}()

	if opts.Expected != "" {
		if err := charter.ActualVsExpectedChart(ctx, df, opts.Metric, opts.Expected, opts.Title); err != nil {
			return err
		}
	}

	if opts.Uplift != "" {
		if err := charter.UpliftChart(ctx, df, opts.Uplift, opts.UpliftTitle); err != nil {
			return err
		}
	}

	if viewer, ok := charter.Display().(*trialplot.ViewerDisplay); ok {
		logrus.Infof("serving figures at %s, press Ctrl-C to stop", viewer.URL())
		<-ctx.Done()
	}

	return nil
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logrus.WithError(err).Error("trialplot failed")
		stop()
		os.Exit(1)
	}
}
