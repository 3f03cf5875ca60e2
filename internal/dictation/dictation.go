// Package dictation models the optional speech-to-text capability. A
// Provider is either available or not; front ends ask once and only offer
// the dictation control when it is.
package dictation

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrUnavailable  = errors.New("dictation unavailable")
	ErrNotRecording = errors.New("dictation not started")
	ErrBacklog      = errors.New("dictation backlog full")
)

// Event is one delivery from the recognizer. Interim results are for display
// only; Final results are committed to the answer. Err reports a recognizer
// failure and ends the stream.
type Event struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
	Err        error  `json:"-"`
}

type Provider interface {
	Available() bool
	// Start begins recognition. The returned channel is closed when the
	// provider stops.
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

// Unavailable is the provider of runtimes without a recognizer.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Start(context.Context) (<-chan Event, error) { return nil, ErrUnavailable }

func (Unavailable) Stop() error { return nil }

const relayBuffer = 64

// Relay is a provider whose recognizer runs elsewhere (a browser's speech
// API) and whose results are pushed in from outside.
type Relay struct {
	mu     sync.Mutex
	events chan Event
}

var _ Provider = (*Relay)(nil)

func NewRelay() *Relay {
	return &Relay{}
}

func (r *Relay) Available() bool { return true }

func (r *Relay) Start(ctx context.Context) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.events == nil {
		r.events = make(chan Event, relayBuffer)
	}
	return r.events, nil
}

// Push delivers one result. It never blocks.
func (r *Relay) Push(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.events == nil {
		return ErrNotRecording
	}

	select {
	case r.events <- ev:
		return nil
	default:
		return ErrBacklog
	}
}

func (r *Relay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.events != nil {
		close(r.events)
		r.events = nil
	}
	return nil
}
