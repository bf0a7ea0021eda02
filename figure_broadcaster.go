package trialplot

import (
	"context"
	"errors"
	"runtime/trace"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrDisplayClosed = errors.New("display closed")

// FigureMessage is what viewers receive for every displayed figure. The last
// message on a stream has End set and carries no figure.
type FigureMessage struct {
	ID          int
	Title       string
	Kind        string
	Format      Format
	ContentType string
	Data        []byte

	End bool `json:",omitempty"`
}

type FigureBroadcaster struct {
	mutex sync.Mutex

	closed bool
	nextID int

	// Channels from open websockets. They should be buffered, as a blocked
	// channel blocks every Publish.
	channelsForLiveUpdate []chan<- FigureMessage

	// The most recent figures, replayed to a channel when it registers.
	history *ThreadUnsafeRing[FigureMessage]

	logger logrus.FieldLogger
}

func NewFigureBroadcaster(historySize int) *FigureBroadcaster {
	if historySize < 1 {
		historySize = 1
	}

	return &FigureBroadcaster{
		nextID:                1,
		channelsForLiveUpdate: make([]chan<- FigureMessage, 0),
		history:               NewRing[FigureMessage](historySize),
		logger:                logrus.WithField("tag", "FigureBroadcaster"),
	}
}

// Publish assigns the next id to fig, stores it in the history and sends it
// to every registered channel.
func (b *FigureBroadcaster) Publish(ctx context.Context, fig RenderedFigure) (FigureMessage, error) {
	traceCtx, task := trace.NewTask(ctx, "Publish")
	defer task.End()

	trace.WithRegion(traceCtx, "Lock", b.mutex.Lock)
	defer b.mutex.Unlock()

	if b.closed {
		return FigureMessage{}, ErrDisplayClosed
	}

	msg := FigureMessage{
		ID:          b.nextID,
		Title:       fig.Title,
		Kind:        fig.Kind.String(),
		Format:      fig.Format,
		ContentType: fig.Format.ContentType(),
		Data:        fig.Data,
	}
	b.nextID++

	trace.WithRegion(traceCtx, "Cache", func() {
		b.history.Push(msg)
	})

	trace.WithRegion(traceCtx, "Broadcast", func() {
		b.broadcast(msg)
	})

	b.logger.WithFields(logrus.Fields{
		"id":       msg.ID,
		"title":    msg.Title,
		"bytes":    len(msg.Data),
		"channels": len(b.channelsForLiveUpdate),
	}).Info("published figure")

	return msg, nil
}

// Register a new channel. Called from the HTTP server when a websocket
// connects. The history is pushed to c before it starts receiving live
// figures, under the same lock, so a viewer never misses a figure published
// in between. If the broadcaster is already closed, c receives the history
// followed by the end message.
//
// When ctx is done before the replay finishes, c is not registered and
// ctx.Err() is returned, so a viewer that went away cannot hold the lock.
func (b *FigureBroadcaster) RegisterChannel(ctx context.Context, c chan<- FigureMessage) error {
	traceCtx, task := trace.NewTask(ctx, "RegisterChannel")
	defer task.End()

	trace.WithRegion(traceCtx, "Lock", b.mutex.Lock)
	defer b.mutex.Unlock()

	var err error
	trace.WithRegion(traceCtx, "pushHistoryToChannel", func() {
		for _, msg := range b.history.ReadAllOrdered() {
			if err = send(ctx, c, msg); err != nil {
				return
			}
		}
	})
	if err != nil {
		b.logger.WithError(err).Warn("history replay aborted")
		return err
	}

	if b.closed {
		return send(ctx, c, FigureMessage{End: true})
	}

	b.channelsForLiveUpdate = append(b.channelsForLiveUpdate, c)

	b.logger.WithField("channels", len(b.channelsForLiveUpdate)).Info("registered channel")
	return nil
}

func send(ctx context.Context, c chan<- FigureMessage, msg FigureMessage) error {
	select {
	case c <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deregister a channel. The channel must not be closed before this returns.
func (b *FigureBroadcaster) DeregisterChannel(ctx context.Context, c chan<- FigureMessage) {
	traceCtx, task := trace.NewTask(ctx, "DeregisterChannel")
	defer task.End()

	trace.WithRegion(traceCtx, "Lock", b.mutex.Lock)
	defer b.mutex.Unlock()

	b.channelsForLiveUpdate = Filter(b.channelsForLiveUpdate, func(channel chan<- FigureMessage) bool {
		return channel != c
	})

	b.logger.WithField("channels", len(b.channelsForLiveUpdate)).Info("deregistered channel")
}

// Lookup returns a figure still held in the history.
func (b *FigureBroadcaster) Lookup(id int) (FigureMessage, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return Find(b.history.ReadAllOrdered(), func(msg FigureMessage) bool {
		return msg.ID == id
	})
}

// Figures returns the history, oldest first.
func (b *FigureBroadcaster) Figures() []FigureMessage {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.history.ReadAllOrdered()
}

// Close sends the end message to every registered channel. Later calls to
// Publish fail with ErrDisplayClosed. Closing twice is a no-op.
func (b *FigureBroadcaster) Close() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	b.broadcast(FigureMessage{End: true})

	b.logger.WithField("published", b.nextID-1).Info("figure broadcaster closed")
}

func (b *FigureBroadcaster) broadcast(msg FigureMessage) {
	for _, c := range b.channelsForLiveUpdate {
		c <- msg
	}
}
