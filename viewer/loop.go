// Package viewer hosts the event loop that stands in for the GUI thread and
// the view glue that wires rendering, OCR, playback, and highlighting
// together. Workers communicate with the loop exclusively through queued
// closures; nothing loop-owned is touched from another goroutine.
package viewer

import (
	"errors"
	"sync"
)

// ErrLoopClosed is returned by cross-thread requests after the loop shut down.
var ErrLoopClosed = errors.New("viewer: event loop closed")

// Loop is a single-goroutine message pump. Everything the loop owns (the
// speech engine, view state mutation, notification fan-out) executes inside
// Run, in posting order.
type Loop struct {
	msgs chan func()
	quit chan struct{}
	once sync.Once
}

// NewLoop creates a loop with a buffered queue.
func NewLoop() *Loop {
	return &Loop{
		msgs: make(chan func(), 128),
		quit: make(chan struct{}),
	}
}

// Run pumps messages until Close. It is the loop goroutine; callers
// typically run it from main or a dedicated goroutine.
func (l *Loop) Run() {
	for {
		select {
		case fn := <-l.msgs:
			fn()
		case <-l.quit:
			// Drain what was queued before the close, then stop.
			for {
				select {
				case fn := <-l.msgs:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Post enqueues fn for execution on the loop goroutine. It reports false
// once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.msgs <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Call runs fn on the loop goroutine and waits for it to finish. It must
// not be invoked from the loop goroutine itself.
func (l *Loop) Call(fn func()) bool {
	done := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(done)
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-l.quit:
		// The loop drains its queue on close, so give fn one more chance
		// to have run before reporting failure.
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// Close stops the loop after the queue drains. Safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
}
