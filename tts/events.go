package tts

import (
	"github.com/google/uuid"

	"github.com/wudi/readaloud/segment"
)

// Kind discriminates worker notifications.
type Kind int

const (
	// SegmentStarted fires just before a segment's utterance is requested.
	SegmentStarted Kind = iota + 1
	// SegmentFinished fires once the utterance for a segment has completed
	// (or was skipped after a speech failure).
	SegmentFinished
	// SessionEnded is the terminal notification of a session, whether it
	// ran to completion or was stopped.
	SessionEnded
)

func (k Kind) String() string {
	switch k {
	case SegmentStarted:
		return "segment-started"
	case SegmentFinished:
		return "segment-finished"
	case SessionEnded:
		return "session-ended"
	default:
		return "unknown"
	}
}

// Notification is the typed cross-thread message the worker emits. Within a
// session, notifications arrive strictly in segment order and do not
// overlap. Consumers must discard notifications whose Session does not match
// the active one; an old session's trailing messages can race a new
// session's start.
type Notification struct {
	Kind    Kind
	Session uuid.UUID
	// Page is the page the session is reading, for stale-page guards.
	Page int
	// Index is the segment index for started/finished notifications.
	Index int
	// Segment carries the spoken segment on SegmentStarted.
	Segment segment.Segment
	// Stopped marks a SessionEnded caused by a stop rather than completion.
	Stopped bool
}
