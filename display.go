package trialplot

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Display shows rendered figures. Show is called once per chart, in order.
type Display interface {
	Show(ctx context.Context, fig RenderedFigure) error
	Close(ctx context.Context) error
}

// FileDisplay writes every figure to dir as <seq>-<slug>.<format>.
type FileDisplay struct {
	dir string

	mutex sync.Mutex
	seq   int

	logger logrus.FieldLogger
}

func NewFileDisplay(dir string) (*FileDisplay, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &FileDisplay{
		dir:    dir,
		logger: logrus.WithField("tag", "FileDisplay"),
	}, nil
}

func (d *FileDisplay) Show(ctx context.Context, fig RenderedFigure) error {
	d.mutex.Lock()
	d.seq++
	seq := d.seq
	d.mutex.Unlock()

	path := filepath.Join(d.dir, fmt.Sprintf("%03d-%s.%s", seq, slug(fig.Title), fig.Format))
	if err := os.WriteFile(path, fig.Data, 0o644); err != nil {
		return fmt.Errorf("write figure: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"path":  path,
		"bytes": len(fig.Data),
	}).Info("wrote figure")

	return nil
}

func (d *FileDisplay) Close(ctx context.Context) error {
	return nil
}

var nonSlugChars = regexp.MustCompile("[^a-z0-9]+")

func slug(title string) string {
	s := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "figure"
	}

	return s
}

type ViewerConfig struct {
	Host        string
	Port        int
	HistorySize int
	OpenBrowser bool
	Metadata    Metadata
}

// ViewerDisplay serves figures to browser tabs over a websocket. Tabs opened
// late still receive the last HistorySize figures.
type ViewerDisplay struct {
	broadcaster *FigureBroadcaster
	server      *HttpServer
	url         string
	logger      logrus.FieldLogger
}

func NewViewerDisplay(config ViewerConfig) (*ViewerDisplay, error) {
	// A replay longer than the websocket channel buffer would stall on a
	// viewer that stops reading mid replay.
	historySize := Min(config.HistorySize, channelBufferSize)
	broadcaster := NewFigureBroadcaster(historySize)

	metadata := config.Metadata
	metadata.HistorySize = historySize

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	server := NewHttpServer(broadcaster, addr, metadata)

	url, err := server.Start()
	if err != nil {
		return nil, err
	}

	if config.OpenBrowser {
		openBrowser(url)
	}

	return &ViewerDisplay{
		broadcaster: broadcaster,
		server:      server,
		url:         url,
		logger:      logrus.WithField("tag", "ViewerDisplay"),
	}, nil
}

func (d *ViewerDisplay) URL() string {
	return d.url
}

func (d *ViewerDisplay) Show(ctx context.Context, fig RenderedFigure) error {
	msg, err := d.broadcaster.Publish(ctx, fig)
	if err != nil {
		return err
	}

	d.logger.Infof("figure %d available at %s/figures/%d", msg.ID, d.url, msg.ID)
	return nil
}

// Close ends every viewer stream and stops the server.
func (d *ViewerDisplay) Close(ctx context.Context) error {
	d.broadcaster.Close()
	return d.server.Shutdown(ctx)
}
