package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hperssn/genesis/internal/dictation"
	"github.com/hperssn/genesis/internal/document"
	"github.com/hperssn/genesis/internal/domain"
	"github.com/hperssn/genesis/internal/kvstore"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotCompleted    = errors.New("questionnaire not completed")
)

const noticeBuffer = 16

// StoreFactory opens the local store of one client.
type StoreFactory func(userID string) (kvstore.Store, error)

// FileStores returns a StoreFactory keeping each client's store in its own
// directory under root.
func FileStores(root string) StoreFactory {
	return func(userID string) (kvstore.Store, error) {
		return kvstore.NewFile(kvstore.Namespace(root, userID))
	}
}

type Options struct {
	Stores    StoreFactory
	Publisher *document.Publisher
	Logger    *zap.Logger
	// TTL is how long an idle session is kept. Zero means one hour.
	TTL time.Duration
	// CleanupInterval is how often idle sessions are looked for. Zero means
	// five minutes.
	CleanupInterval time.Duration
	Now             func() time.Time
}

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	ID        string        `json:"id"`
	Completed bool          `json:"completed"`
	View      domain.View   `json:"view"`
	Document  *DocumentInfo `json:"document,omitempty"`
}

type DocumentInfo struct {
	Filename    string    `json:"filename"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type sessionEntry struct {
	mu       sync.Mutex
	walker   *Walker
	relay    *dictation.Relay
	doc      *document.Document
	lastSeen time.Time

	noticeMu sync.Mutex
	notices  chan domain.Notice
	closed   bool
}

// Notify queues a notice for the session's event stream, dropping it when
// nobody is listening or the session is gone.
func (e *sessionEntry) Notify(n domain.Notice) {
	if n.IsZero() {
		return
	}

	e.noticeMu.Lock()
	defer e.noticeMu.Unlock()

	if e.closed {
		return
	}
	select {
	case e.notices <- n:
	default:
	}
}

// remove stops dictation and ends the notice stream. Callers hold e.mu.
func (e *sessionEntry) remove() {
	e.walker.StopDictation()

	e.noticeMu.Lock()
	defer e.noticeMu.Unlock()

	if !e.closed {
		e.closed = true
		close(e.notices)
	}
}

func (e *sessionEntry) snapshot() Snapshot {
	s := e.walker.Session()
	snap := Snapshot{
		ID:        s.ID,
		Completed: s.Completed,
		View:      e.walker.Render(),
	}
	if e.doc != nil {
		snap.Document = &DocumentInfo{Filename: e.doc.Filename, GeneratedAt: e.doc.GeneratedAt}
	}
	return snap
}

// SessionManager holds one walker per session and serializes the actions
// of each session.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry

	stores    StoreFactory
	publisher *document.Publisher
	log       *zap.Logger
	ttl       time.Duration
	interval  time.Duration
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSessionManager(opts Options) *SessionManager {
	if opts.Stores == nil {
		opts.Stores = func(string) (kvstore.Store, error) { return kvstore.NewMemory(), nil }
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &SessionManager{
		sessions:  make(map[string]*sessionEntry),
		stores:    opts.Stores,
		publisher: opts.Publisher,
		log:       opts.Logger,
		ttl:       opts.TTL,
		interval:  opts.CleanupInterval,
		now:       opts.Now,
		ctx:       ctx,
		cancel:    cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Close stops background work. Sessions are dropped.
func (m *SessionManager) Close() {
	m.cancel()

	m.mu.Lock()
	for id, e := range m.sessions {
		e.mu.Lock()
		e.remove()
		e.mu.Unlock()
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *SessionManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupIdleSessions()
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *SessionManager) cleanupIdleSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)

	for id, e := range m.sessions {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		if idle {
			e.remove()
		}
		e.mu.Unlock()

		if idle {
			delete(m.sessions, id)
			m.log.Debug("evicted idle session", zap.String("session", id))
		}
	}
}

// StartSession creates a session for userID, restoring any answers saved in
// that user's local store. withDictation reports whether the client has a
// speech recognizer whose results it will relay.
func (m *SessionManager) StartSession(userID string, withDictation bool) (Snapshot, error) {
	store, err := m.stores(userID)
	if err != nil {
		return Snapshot{}, err
	}

	var (
		provider dictation.Provider = dictation.Unavailable{}
		relay    *dictation.Relay
	)
	if withDictation {
		relay = dictation.NewRelay()
		provider = relay
	}

	s := domain.NewSession("", userID)
	w := NewWalker(s, domain.Questions(), store, provider, m.log)
	w.LoadSaved()

	e := &sessionEntry{
		walker:   w,
		relay:    relay,
		notices:  make(chan domain.Notice, noticeBuffer),
		lastSeen: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = e
	m.mu.Unlock()

	m.log.Info("session started", zap.String("session", s.ID), zap.String("user", userID))

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(), nil
}

func (m *SessionManager) entry(id string) (*sessionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// do runs fn with the session locked and returns the resulting snapshot.
func (m *SessionManager) do(id string, fn func(e *sessionEntry) error) (Snapshot, error) {
	e, err := m.entry(id)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastSeen = m.now()
	if err := fn(e); err != nil {
		return e.snapshot(), err
	}
	return e.snapshot(), nil
}

func (m *SessionManager) GetSession(id string) (Snapshot, error) {
	return m.do(id, func(*sessionEntry) error { return nil })
}

func (m *SessionManager) SaveAnswer(id string, position int, text string) (Snapshot, error) {
	return m.do(id, func(e *sessionEntry) error {
		if e.walker.Session().Completed {
			return ErrCompleted
		}
		return e.walker.SaveAnswer(position, text)
	})
}

// Next advances the session. Completing the questionnaire assembles the
// document and starts its submission without waiting for it.
func (m *SessionManager) Next(id string, input string) (Snapshot, error) {
	return m.do(id, func(e *sessionEntry) error {
		t, err := e.walker.Next(input)
		if err != nil || t != Completed {
			return err
		}

		s := e.walker.Session()
		doc := document.New(e.walker.Questions(), s.Answers, m.now())
		e.doc = &doc

		if m.publisher != nil {
			m.publisher.Publish(m.ctx, doc, s.Answers, e)
		}
		return nil
	})
}

func (m *SessionManager) Previous(id string, input string) (Snapshot, error) {
	return m.do(id, func(e *sessionEntry) error {
		return e.walker.Previous(input)
	})
}

// Restart starts the session over when confirmed.
func (m *SessionManager) Restart(id string, confirmed bool) (Snapshot, bool, error) {
	var restarted bool
	snap, err := m.do(id, func(e *sessionEntry) error {
		var err error
		restarted, err = e.walker.Restart(confirmed)
		if restarted {
			e.doc = nil
		}
		return err
	})
	return snap, restarted, err
}

// ToggleDictation starts or stops dictation for the session. While
// recording, relayed results are applied in order under the session lock.
func (m *SessionManager) ToggleDictation(id string) (Snapshot, error) {
	return m.do(id, func(e *sessionEntry) error {
		notice, events, err := e.walker.ToggleDictation(m.ctx)
		e.Notify(notice)
		if err != nil {
			return err
		}
		if events != nil {
			m.wg.Add(1)
			go m.pumpDictation(e, events)
		}
		return nil
	})
}

func (m *SessionManager) pumpDictation(e *sessionEntry, events <-chan dictation.Event) {
	defer m.wg.Done()

	for ev := range events {
		e.mu.Lock()
		e.lastSeen = m.now()
		notice := e.walker.HandleDictation(ev)
		e.mu.Unlock()

		e.Notify(notice)
	}
}

// PushDictation relays one recognizer result from the client.
func (m *SessionManager) PushDictation(id string, ev dictation.Event) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}
	if e.relay == nil {
		return dictation.ErrUnavailable
	}
	return e.relay.Push(ev)
}

// Document returns the document generated when the session completed.
func (m *SessionManager) Document(id string) (document.Document, error) {
	e, err := m.entry(id)
	if err != nil {
		return document.Document{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return document.Document{}, ErrNotCompleted
	}
	return *e.doc, nil
}

// Notices streams transient notices for the session. The channel is closed
// when the session is stopped or evicted.
func (m *SessionManager) Notices(id string) (<-chan domain.Notice, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	return e.notices, nil
}

func (m *SessionManager) StopSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	e.remove()
	e.mu.Unlock()

	delete(m.sessions, id)
	return nil
}
