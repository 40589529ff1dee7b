package tts

import (
	"errors"
	"testing"

	"github.com/wudi/readaloud/coords"
	"github.com/wudi/readaloud/segment"
)

func testSeq(n int) segment.Sequence {
	seq := make(segment.Sequence, 0, n)
	for i := 0; i < n; i++ {
		seq = append(seq, segment.Segment{
			Bounds:     coords.Rect{X: 10, Y: float64(20 * i), Width: 100, Height: 12},
			Text:       string(rune('a' + i)),
			Confidence: 0.9,
		})
	}
	return seq
}

type recorder struct {
	notifications []Notification
}

func (r *recorder) notify(n Notification) { r.notifications = append(r.notifications, n) }

func TestWorkerRunSpeaksAllSegmentsInOrder(t *testing.T) {
	rec := &recorder{}
	var spoken []string
	w := &Worker{
		State:  NewState(),
		Speak:  func(text string) error { spoken = append(spoken, text); return nil },
		Notify: rec.notify,
	}

	if err := w.Run(4, testSeq(3)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(spoken) != 3 || spoken[0] != "a" || spoken[1] != "b" || spoken[2] != "c" {
		t.Fatalf("unexpected utterances: %v", spoken)
	}

	kinds := []Kind{
		SegmentStarted, SegmentFinished,
		SegmentStarted, SegmentFinished,
		SegmentStarted, SegmentFinished,
		SessionEnded,
	}
	if len(rec.notifications) != len(kinds) {
		t.Fatalf("got %d notifications, want %d", len(rec.notifications), len(kinds))
	}
	sid := rec.notifications[0].Session
	idx := 0
	for i, n := range rec.notifications {
		if n.Kind != kinds[i] {
			t.Fatalf("notification %d = %v, want %v", i, n.Kind, kinds[i])
		}
		if n.Session != sid || n.Page != 4 {
			t.Fatalf("notification %d has wrong tags: %+v", i, n)
		}
		if n.Kind == SegmentStarted {
			if n.Index != idx {
				t.Fatalf("started index = %d, want %d", n.Index, idx)
			}
			if !n.Segment.Bounds.IsValid() {
				t.Fatalf("started notification missing segment: %+v", n)
			}
		}
		if n.Kind == SegmentFinished {
			if n.Index != idx {
				t.Fatalf("finished index = %d, want %d", n.Index, idx)
			}
			idx++
		}
	}
	if rec.notifications[len(rec.notifications)-1].Stopped {
		t.Fatal("completed session must not be marked stopped")
	}
	if st := w.State.Snapshot(); st.Phase != Idle {
		t.Fatalf("state after session = %v, want idle", st.Phase)
	}
}

func TestWorkerStopAtSegmentBoundary(t *testing.T) {
	// Stop lands after segment 0 finishes; segment 1 must never be
	// dispatched and the machine must reach Idle with session-ended emitted.
	rec := &recorder{}
	var resets int
	w := &Worker{
		State: NewState(),
		Reset: func() error { resets++; return nil },
	}
	w.Notify = rec.notify
	var spoken []string
	w.Speak = func(text string) error {
		spoken = append(spoken, text)
		if len(spoken) == 1 {
			w.State.Stop()
		}
		return nil
	}

	if err := w.Run(0, testSeq(3)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(spoken) != 1 {
		t.Fatalf("utterances after stop: %v", spoken)
	}
	kinds := []Kind{SegmentStarted, SegmentFinished, SessionEnded}
	if len(rec.notifications) != len(kinds) {
		t.Fatalf("got %d notifications, want %d", len(rec.notifications), len(kinds))
	}
	last := rec.notifications[len(rec.notifications)-1]
	if last.Kind != SessionEnded || !last.Stopped {
		t.Fatalf("expected stopped session-ended, got %+v", last)
	}
	if resets != 1 {
		t.Fatalf("engine resets = %d, want 1 on the stop path", resets)
	}
	if st := w.State.Snapshot(); st.Phase != Idle {
		t.Fatalf("state after stop = %v, want idle", st.Phase)
	}
}

func TestWorkerSpeechFailureSkipsSegment(t *testing.T) {
	rec := &recorder{}
	var spoken []string
	w := &Worker{
		State: NewState(),
		Speak: func(text string) error {
			spoken = append(spoken, text)
			if text == "b" {
				return errors.New("engine refused")
			}
			return nil
		},
		Notify: rec.notify,
	}

	if err := w.Run(0, testSeq(3)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(spoken) != 3 {
		t.Fatalf("session aborted instead of skipping: %v", spoken)
	}
	if last := rec.notifications[len(rec.notifications)-1]; last.Kind != SessionEnded || last.Stopped {
		t.Fatalf("expected clean session-ended, got %+v", last)
	}
}

func TestWorkerRunRejectsEmptySequence(t *testing.T) {
	rec := &recorder{}
	w := &Worker{
		State:  NewState(),
		Speak:  func(string) error { t.Fatal("nothing should be spoken"); return nil },
		Notify: rec.notify,
	}
	if err := w.Run(0, nil); err != ErrEmptySequence {
		t.Fatalf("error = %v, want ErrEmptySequence", err)
	}
	if len(rec.notifications) != 0 {
		t.Fatalf("rejected start must emit nothing, got %v", rec.notifications)
	}
}

func TestWorkerRunRejectsConcurrentSession(t *testing.T) {
	rec := &recorder{}
	w := &Worker{State: NewState(), Notify: rec.notify}

	release := make(chan struct{})
	started := make(chan struct{})
	w.Speak = func(string) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(0, testSeq(1)) }()
	<-started

	w2 := &Worker{
		State:  w.State,
		Speak:  func(string) error { t.Error("second session must not speak"); return nil },
		Notify: func(Notification) { t.Error("second session must not notify") },
	}
	if err := w2.Run(0, testSeq(2)); err != ErrSessionActive {
		t.Fatalf("error = %v, want ErrSessionActive", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first session error = %v", err)
	}
}

func TestWorkerStartClaimsStateBeforeReturning(t *testing.T) {
	// The second of two back-to-back Starts must lose synchronously, even
	// though the first session's goroutine has not spoken anything yet.
	release := make(chan struct{})
	ended := make(chan struct{})
	w := &Worker{
		State: NewState(),
		Speak: func(string) error { <-release; return nil },
		Notify: func(n Notification) {
			if n.Kind == SessionEnded {
				close(ended)
			}
		},
	}

	if err := w.Start(0, testSeq(1)); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if err := w.Start(0, testSeq(1)); err != ErrSessionActive {
		t.Fatalf("second Start() error = %v, want ErrSessionActive", err)
	}

	close(release)
	<-ended
	if st := w.State.Snapshot(); st.Phase != Idle {
		t.Fatalf("state = %v, want idle", st.Phase)
	}
}

func TestWorkerStopDuringLastSegment(t *testing.T) {
	rec := &recorder{}
	w := &Worker{State: NewState(), Notify: rec.notify}
	w.Speak = func(text string) error {
		w.State.Stop() // arrives mid-utterance of the only segment
		return nil
	}

	if err := w.Run(0, testSeq(1)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	last := rec.notifications[len(rec.notifications)-1]
	if last.Kind != SessionEnded || !last.Stopped {
		t.Fatalf("expected stopped session-ended, got %+v", last)
	}
	if st := w.State.Snapshot(); st.Phase != Idle {
		t.Fatalf("state = %v, want idle", st.Phase)
	}
}
