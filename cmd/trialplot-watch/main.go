package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cactusdynamics/trialplot"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Config holds the configuration for the watcher
type Config struct {
	ServerURL string
	Dir       string
	Logger    logrus.FieldLogger
}

// Watcher saves every figure a trialplot viewer publishes into a directory
type Watcher struct {
	config Config
	saved  []string
}

func NewWatcher(config Config) *Watcher {
	return &Watcher{config: config}
}

// Saved lists the files written so far, in arrival order
func (w *Watcher) Saved() []string {
	return w.saved
}

// Connect reads figures until the viewer ends the stream or the context is done
func (w *Watcher) Connect(ctx context.Context) error {
	u, err := url.Parse(w.config.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	if err := os.MkdirAll(w.config.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	w.config.Logger.WithField("url", u.String()).Info("connecting to websocket")

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var msg trialplot.FigureMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				w.config.Logger.Info("connection closed normally")
				return nil
			}
			return fmt.Errorf("read figure: %w", err)
		}

		if err := w.processMessage(msg); err != nil {
			if err == io.EOF {
				w.config.Logger.Info("display closed")
				return nil
			}
			return err
		}
	}
}

func (w *Watcher) processMessage(msg trialplot.FigureMessage) error {
	if msg.End {
		return io.EOF
	}

	name := fmt.Sprintf("%03d.%s", msg.ID, msg.Format)
	path := filepath.Join(w.config.Dir, name)
	if err := os.WriteFile(path, msg.Data, 0o644); err != nil {
		return fmt.Errorf("write figure %d: %w", msg.ID, err)
	}

	w.saved = append(w.saved, path)
	w.config.Logger.WithFields(logrus.Fields{
		"id":    msg.ID,
		"title": msg.Title,
		"path":  path,
	}).Info("saved figure")

	return nil
}

type options struct {
	URL string `short:"u" long:"url" description:"URL of the trialplot viewer" default:"http://localhost:5274" env:"TRIALPLOT_URL"`
	Dir string `short:"d" long:"dir" description:"directory figures are saved to" default:"."`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	watcher := NewWatcher(Config{
		ServerURL: opts.URL,
		Dir:       opts.Dir,
		Logger:    logrus.WithField("tag", "Watcher"),
	})

	if err := watcher.Connect(context.Background()); err != nil {
		logrus.WithError(err).Error("watch failed")
		os.Exit(1)
	}
}
