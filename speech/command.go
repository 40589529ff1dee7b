package speech

import (
	"fmt"
	"os/exec"
	"strconv"
	"sync"
)

// DefaultBinary is the espeak-ng command line synthesizer.
const DefaultBinary = "espeak-ng"

// Command drives a command line synthesizer (espeak-ng by default): one
// process per utterance, completion signaled when the process exits.
type Command struct {
	binary string
	voice  string
	rate   int

	mu  sync.Mutex
	cur *exec.Cmd
}

// CommandOption configures a Command engine.
type CommandOption func(*Command)

// WithBinary overrides the synthesizer binary.
func WithBinary(bin string) CommandOption {
	return func(c *Command) { c.binary = bin }
}

// WithVoice selects a voice (espeak-ng -v).
func WithVoice(voice string) CommandOption {
	return func(c *Command) { c.voice = voice }
}

// WithRate sets words per minute (espeak-ng -s).
func WithRate(wpm int) CommandOption {
	return func(c *Command) { c.rate = wpm }
}

// NewCommand constructs a command-backed engine.
func NewCommand(opts ...CommandOption) *Command {
	c := &Command{binary: DefaultBinary}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks that the synthesizer binary is reachable.
func (c *Command) Validate() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("speech binary %s: %w", c.binary, err)
	}
	return nil
}

func (c *Command) args(text string) []string {
	var args []string
	if c.voice != "" {
		args = append(args, "-v", c.voice)
	}
	if c.rate > 0 {
		args = append(args, "-s", strconv.Itoa(c.rate))
	}
	return append(args, text)
}

// Speak starts one synthesizer process for the utterance. done fires from
// the process-wait goroutine when it exits. The process is started and
// registered under the lock so a concurrent Stop either runs before the
// utterance exists or sees it and kills it; there is no window in between.
func (c *Command) Speak(text string, done func(error)) {
	cmd := exec.Command(c.binary, c.args(text)...)
	c.mu.Lock()
	if err := cmd.Start(); err != nil {
		c.mu.Unlock()
		done(fmt.Errorf("start %s: %w", c.binary, err))
		return
	}
	c.cur = cmd
	c.mu.Unlock()

	go func() {
		err := cmd.Wait()
		c.mu.Lock()
		if c.cur == cmd {
			c.cur = nil
		}
		c.mu.Unlock()
		if err != nil {
			err = fmt.Errorf("%s: %w", c.binary, err)
		}
		done(err)
	}()
}

// Stop kills the in-flight utterance, if any. The utterance's done callback
// still fires, carrying the kill error.
func (c *Command) Stop() {
	c.mu.Lock()
	cmd := c.cur
	c.cur = nil
	c.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// Reinitialize resets the engine. For a process-per-utterance engine there
// is no persistent driver state beyond a possibly lingering process.
func (c *Command) Reinitialize() error {
	c.Stop()
	return nil
}

// Close releases the engine.
func (c *Command) Close() error {
	c.Stop()
	return nil
}
