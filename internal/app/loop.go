package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/RoomCounter/internal/core"
	"github.com/dkeye/RoomCounter/internal/domain"
	"github.com/dkeye/RoomCounter/internal/metrics"
	"github.com/rs/zerolog/log"
)

var ErrLoopStopped = errors.New("event loop stopped")

// Lifecycle kinds reported by the transport. They never appear on the wire.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

// Event is one unit of work for the loop.
type Event struct {
	Kind string
	SID  core.SessionID
	Join domain.JoinRequest
}

type handlerFunc func(Event) error

type task struct {
	ev   Event
	fn   func()
	done chan struct{}
}

// Loop serializes every registry and session mutation onto one goroutine.
// Each event is handled to completion before the next one starts.
type Loop struct {
	orch     *Orchestrator
	handlers map[string]handlerFunc
	tasks    chan task
	stopped  chan struct{}
}

func NewLoop(o *Orchestrator, buffer int) *Loop {
	l := &Loop{
		orch:    o,
		tasks:   make(chan task, buffer),
		stopped: make(chan struct{}),
	}
	l.handlers = map[string]handlerFunc{
		EventConnect: func(ev Event) error {
			o.OnConnect(ev.SID)
			return nil
		},
		EventDisconnect: func(ev Event) error {
			o.OnDisconnect(ev.SID)
			return nil
		},
		core.EventJoin: func(ev Event) error {
			return o.Join(ev.SID, ev.Join)
		},
		core.EventIncrement: func(ev Event) error {
			return o.Increment(ev.SID)
		},
		core.EventLeave: func(ev Event) error {
			return o.Leave(ev.SID)
		},
	}
	return l
}

// Run handles events until ctx is done. It must be called once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	log.Info().Str("module", "app.loop").Msg("event loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.loop").Msg("event loop stopped")
			return
		case t := <-l.tasks:
			if t.fn != nil {
				t.fn()
				close(t.done)
				continue
			}
			l.dispatch(t.ev)
		}
	}
}

func (l *Loop) dispatch(ev Event) {
	h, ok := l.handlers[ev.Kind]
	if !ok {
		metrics.EventsDropped.WithLabelValues(metrics.ReasonUnknownEvent).Inc()
		log.Warn().Str("module", "app.loop").Str("sid", string(ev.SID)).Str("event", ev.Kind).Msg("no handler for event")
		return
	}
	metrics.Events.WithLabelValues(ev.Kind).Inc()
	if err := h(ev); err != nil {
		metrics.EventsDropped.WithLabelValues(dropReason(err)).Inc()
		log.Warn().Err(err).Str("module", "app.loop").Str("sid", string(ev.SID)).Str("event", ev.Kind).Msg("event dropped")
	}
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrNotJoined):
		return metrics.ReasonNotJoined
	case errors.Is(err, ErrUnknownSession):
		return metrics.ReasonUnknownSession
	case errors.Is(err, domain.ErrRoomIDEmpty),
		errors.Is(err, domain.ErrUserIDEmpty),
		errors.Is(err, domain.ErrUserNameEmpty):
		return metrics.ReasonMalformed
	default:
		return metrics.ReasonError
	}
}

// Submit queues ev without waiting for it to be handled.
func (l *Loop) Submit(ctx context.Context, ev Event) error {
	return l.enqueue(ctx, task{ev: ev})
}

// Do runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan struct{})}
	if err := l.enqueue(ctx, t); err != nil {
		return err
	}
	select {
	case <-t.done:
		return nil
	case <-l.stopped:
		// the loop may have finished fn right before stopping
		select {
		case <-t.done:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) enqueue(ctx context.Context, t task) error {
	select {
	case <-l.stopped:
		return ErrLoopStopped
	default:
	}
	select {
	case l.tasks <- t:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return fmt.Errorf("enqueue %s: %w", t.ev.Kind, ctx.Err())
	}
}

// ListRooms and RoomSnapshot hand results back over a buffered channel;
// a query abandoned by its caller may still run later on the loop.
func (l *Loop) ListRooms(ctx context.Context) ([]core.RoomInfo, error) {
	out := make(chan []core.RoomInfo, 1)
	if err := l.Do(ctx, func() { out <- l.orch.ListRooms() }); err != nil {
		return nil, err
	}
	return <-out, nil
}

type snapshotResult struct {
	snap core.RoomSnapshot
	ok   bool
}

func (l *Loop) RoomSnapshot(ctx context.Context, id domain.RoomID) (core.RoomSnapshot, bool, error) {
	out := make(chan snapshotResult, 1)
	err := l.Do(ctx, func() {
		snap, ok := l.orch.RoomSnapshot(id)
		out <- snapshotResult{snap: snap, ok: ok}
	})
	if err != nil {
		return core.RoomSnapshot{}, false, err
	}
	r := <-out
	return r.snap, r.ok, nil
}
