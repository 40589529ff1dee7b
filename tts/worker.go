package tts

import (
	"time"

	"github.com/google/uuid"

	"github.com/wudi/readaloud/observability"
	"github.com/wudi/readaloud/segment"
)

// Worker consumes a segment sequence one utterance at a time. It runs off
// the event loop and never touches the speech engine directly: Speak and
// Reset are cross-thread requests the loop services with its own engine.
//
// The stop signal is checked at every segment boundary, never mid-utterance;
// an utterance in flight runs to completion before a stop takes effect.
type Worker struct {
	// State is the shared playback state machine.
	State *State
	// Speak requests one utterance from the loop-owned engine and blocks
	// until the engine signals completion. This is the worker's only
	// blocking point.
	Speak func(text string) error
	// Reset asks the loop to reinitialize the engine; invoked on the stop
	// path before the state machine returns to Idle. Optional.
	Reset func() error
	// Notify delivers ordered notifications toward the event loop.
	Notify func(Notification)
	// Log records skipped segments and session summaries. Optional.
	Log observability.Logger
}

func (w *Worker) log() observability.Logger {
	if w.Log != nil {
		return w.Log
	}
	return observability.NopLogger{}
}

// Run reads the sequence to completion, or until a stop is observed at a
// segment boundary. It returns the start rejection, if any: starting over an
// empty sequence or while another session is active changes nothing and
// emits nothing. The sequence is owned by the worker for the duration of
// the session and never mutated.
func (w *Worker) Run(page int, seq segment.Sequence) error {
	sid, err := w.State.Start(len(seq))
	if err != nil {
		return err
	}
	w.run(sid, page, seq)
	return nil
}

// Start claims the state machine and runs the session on its own goroutine.
// The claim happens before Start returns, so back-to-back Starts can never
// both succeed; the loser is rejected here, not inside the goroutine.
// Everything after a successful start is reported through notifications.
func (w *Worker) Start(page int, seq segment.Sequence) error {
	sid, err := w.State.Start(len(seq))
	if err != nil {
		return err
	}
	go w.run(sid, page, seq)
	return nil
}

func (w *Worker) run(sid uuid.UUID, page int, seq segment.Sequence) {
	start := time.Now()
	log := w.log().With(observability.String("session", sid.String()), observability.Int("page", page))

	for i, seg := range seq {
		if w.State.Stopping() {
			w.endStopped(sid, page)
			log.Info("session stopped", observability.Int("spoken", i))
			return
		}

		w.Notify(Notification{Kind: SegmentStarted, Session: sid, Page: page, Index: i, Segment: seg})
		if err := w.Speak(seg.Text); err != nil {
			// A segment the engine cannot speak is skipped, not fatal;
			// the session moves on to the next one.
			log.Warn("segment skipped", observability.Int("index", i), observability.Error("cause", err))
		}
		w.Notify(Notification{Kind: SegmentFinished, Session: sid, Page: page, Index: i})

		if w.State.Stopping() {
			w.endStopped(sid, page)
			log.Info("session stopped", observability.Int("spoken", i+1))
			return
		}
		w.State.Advance()
	}

	w.Notify(Notification{Kind: SessionEnded, Session: sid, Page: page})
	log.Info("session complete",
		observability.Int("segments", len(seq)),
		observability.Float64("seconds", time.Since(start).Seconds()),
	)
}

// endStopped resets the engine, drains the state machine back to Idle, and
// emits the terminal notification. The engine reset happens before Drain so
// the machine never reads Idle with a half-stopped engine.
func (w *Worker) endStopped(sid uuid.UUID, page int) {
	if w.Reset != nil {
		if err := w.Reset(); err != nil {
			w.log().Error("engine reset failed", observability.Error("cause", err))
		}
	}
	w.State.Drain()
	w.Notify(Notification{Kind: SessionEnded, Session: sid, Page: page, Stopped: true})
}
