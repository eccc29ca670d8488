// Package app runs the player: the control loop, the host line protocol,
// the media watcher and the wiring from configuration.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/llehouerou/sdjuke/internal/player"
)

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("player loop stopped")

// DefaultIdleTick is how often the loop ticks the player while it is idle.
const DefaultIdleTick = 50 * time.Millisecond

type request struct {
	fn   func(player.Interface)
	done chan struct{}
}

// Loop owns a player. Run ticks it on one goroutine; every other goroutine
// reaches the player through Do.
type Loop struct {
	log      *slog.Logger
	p        player.Interface
	idleTick time.Duration

	reqs    chan request
	stopped chan struct{}
	status  atomic.Pointer[player.Status]
}

// NewLoop creates a loop over p. A non-positive idleTick uses DefaultIdleTick.
func NewLoop(p player.Interface, idleTick time.Duration) *Loop {
	if idleTick <= 0 {
		idleTick = DefaultIdleTick
	}
	l := &Loop{
		log:      slog.Default().With("component", "loop"),
		p:        p,
		idleTick: idleTick,
		reqs:     make(chan request),
		stopped:  make(chan struct{}),
	}
	l.publish()
	return l
}

// Run drives the player until ctx is done. While playing it ticks back to
// back and takes at most one request between ticks; while idle it waits for
// a request or the idle ticker.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)

	ticker := time.NewTicker(l.idleTick)
	defer ticker.Stop()

	l.log.Debug("loop started", "idle_tick", l.idleTick)
	for {
		if l.p.IsPlaying() {
			select {
			case <-ctx.Done():
				return nil
			case r := <-l.reqs:
				l.handle(r)
			default:
				l.p.Tick()
				l.publish()
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case r := <-l.reqs:
			l.handle(r)
		case <-ticker.C:
			l.p.Tick()
			l.publish()
		}
	}
}

// handle runs r and publishes before releasing the caller, so a Status
// read after Do sees the request's effect.
func (l *Loop) handle(r request) {
	defer close(r.done)
	r.fn(l.p)
	l.publish()
}

// Do runs fn on the loop goroutine and waits until it returns.
func (l *Loop) Do(fn func(player.Interface)) error {
	r := request{fn: fn, done: make(chan struct{})}
	select {
	case l.reqs <- r:
	case <-l.stopped:
		return ErrStopped
	}
	<-r.done
	return nil
}

// Status returns the snapshot published after the last loop step.
func (l *Loop) Status() player.Status {
	return *l.status.Load()
}

func (l *Loop) publish() {
	st := l.p.Status()
	l.status.Store(&st)
}
