package dictation

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Command runs an external recognizer and reads results from its standard
// output, one per line:
//
//	interim: partial words
//	final: the confirmed sentence
//
// Lines without a prefix are final results.
type Command struct {
	name      string
	args      []string
	available bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ Provider = (*Command)(nil)

// NewCommand resolves name in PATH once. An empty or missing command yields
// a provider that reports itself unavailable.
func NewCommand(name string, args ...string) *Command {
	c := &Command{name: name, args: args}
	if name != "" {
		if _, err := exec.LookPath(name); err == nil {
			c.available = true
		}
	}
	return c
}

func (c *Command) Available() bool { return c.available }

func (c *Command) Start(ctx context.Context) (<-chan Event, error) {
	if !c.available {
		return nil, ErrUnavailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	cctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cctx, c.name, c.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("recognizer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting recognizer %s: %w", c.name, err)
	}
	c.cancel = cancel

	events := make(chan Event)
	go func() {
		defer close(events)

		send := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-cctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			ev, ok := ParseLine(scanner.Text())
			if !ok {
				continue
			}
			if !send(ev) {
				break
			}
		}

		err := cmd.Wait()
		if err != nil && cctx.Err() == nil {
			send(Event{Err: fmt.Errorf("recognizer exited: %w", err)})
		}
	}()

	return events, nil
}

func (c *Command) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

// ParseLine turns one recognizer output line into an event. Blank lines are
// skipped.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}

	if rest, ok := cutPrefixFold(line, "interim:"); ok {
		return Event{Transcript: strings.TrimSpace(rest)}, true
	}
	if rest, ok := cutPrefixFold(line, "final:"); ok {
		return Event{Transcript: strings.TrimSpace(rest), Final: true}, true
	}
	return Event{Transcript: line, Final: true}, true
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
