// Package speech defines the speech engine collaborator. Engines are not
// generally safe to drive from multiple goroutines, so the viewer event loop
// owns the engine exclusively; workers request utterances through the loop
// and never call an Engine directly.
package speech

// Engine is the text-to-speech contract.
//
// Lifecycle contract: Stop halts the in-flight utterance, and a stopped read
// session must be followed by Reinitialize before the engine is used again.
// Repeated stop/start cycles are known to leave engines in inconsistent
// driver states; a full reset on every stop is part of the contract, not an
// optimization.
type Engine interface {
	// Speak queues one utterance and returns immediately. done is invoked
	// exactly once, from an unspecified goroutine, when the utterance
	// completes or fails.
	Speak(text string, done func(error))
	// Stop halts the current utterance, if any. Its done callback still fires.
	Stop()
	// Reinitialize fully resets the engine after a stop.
	Reinitialize() error
	// Close releases engine resources.
	Close() error
}

// Null is an Engine that completes every utterance immediately and silently.
// It backs muted sessions and tests.
type Null struct{}

func (Null) Speak(text string, done func(error)) { done(nil) }
func (Null) Stop()                               {}
func (Null) Reinitialize() error                 { return nil }
func (Null) Close() error                        { return nil }
