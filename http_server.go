package trialplot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const channelBufferSize = 1024

type HttpServer struct {
	broadcaster *FigureBroadcaster
	addr        string
	metadata    Metadata
	mux         *http.ServeMux
	server      *http.Server
	logger      logrus.FieldLogger
}

func NewHttpServer(broadcaster *FigureBroadcaster, addr string, metadata Metadata) *HttpServer {
	s := &HttpServer{
		broadcaster: broadcaster,
		addr:        addr,
		metadata:    metadata,
		mux:         http.NewServeMux(),
		logger:      logrus.WithField("tag", "HttpServer"),
	}

	subFS, err := fs.Sub(webuiFiles, "webui")
	if err != nil {
		panic(err)
	}

	s.mux.Handle("/", http.FileServer(http.FS(subFS)))
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/metadata", s.handleMetadata)
	s.mux.HandleFunc("/figures/", s.handleFigure)

	s.server = &http.Server{Handler: s.mux}

	return s
}

func setCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "content-type")
	w.Header().Set("Access-Control-Allow-Methods", "*")
}

func (s *HttpServer) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.WithError(err).Warn("failed to accept new websocket connection")
		return
	}

	ctx := req.Context()
	ctx = c.CloseRead(ctx) // Viewers only listen.

	channel := make(chan FigureMessage, channelBufferSize)
	wg := sync.WaitGroup{}
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			select {
			case msg := <-channel:
				err := wsjson.Write(ctx, c, msg)
				if err != nil {
					s.logger.WithError(err).Warn("websocket write failed and closed")
					return
				}

				if msg.End {
					c.Close(websocket.StatusNormalClosure, "display closed")
					return
				}
			case <-ctx.Done():
				s.logger.Info("client closed connection or context canceled")
				c.Close(websocket.StatusNormalClosure, "")
				return
			}
		}
	}()

	// The channel is drained by the goroutine above, so registering (which
	// replays the history) cannot block on a long history.
	if err := s.broadcaster.RegisterChannel(ctx, channel); err != nil {
		// The writer goroutine stops on the same canceled context.
		wg.Wait()
		return
	}

	wg.Wait()
	s.broadcaster.DeregisterChannel(ctx, channel)
}

func (s *HttpServer) handleMetadata(w http.ResponseWriter, req *http.Request) {
	setCorsHeaders(w)
	w.Header().Add("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(s.metadata)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
	}
}

// Serves the encoded figure at /figures/{id}.
func (s *HttpServer) handleFigure(w http.ResponseWriter, req *http.Request) {
	setCorsHeaders(w)

	id, err := strconv.Atoi(strings.TrimPrefix(req.URL.Path, "/figures/"))
	if err != nil {
		http.Error(w, "invalid figure id", http.StatusBadRequest)
		return
	}

	msg, ok := s.broadcaster.Lookup(id)
	if !ok {
		http.Error(w, fmt.Sprintf("figure %d not found", id), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", msg.ContentType)
	w.Write(msg.Data)
}

// Start listens on the configured address and serves in the background. It
// returns the base URL, which carries the real port when addr asked for port 0.
func (s *HttpServer) Start() (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	url := fmt.Sprintf("http://%s", listener.Addr().String())
	s.logger.Infof("starting HTTP server at %s", url)

	go func() {
		err := s.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server stopped")
		}
	}()

	return url, nil
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
