package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hperssn/genesis/internal/dictation"
	"github.com/hperssn/genesis/internal/domain"
	"github.com/hperssn/genesis/internal/kvstore"
)

var (
	ErrCompleted       = errors.New("questionnaire already completed")
	ErrInvalidPosition = domain.ErrInvalidPosition
)

const (
	MsgListening      = "Listening... Speak now"
	MsgDictationError = "Voice recognition error. Please try again."
)

// Transition is the outcome of Next.
type Transition int

const (
	Advanced Transition = iota
	Completed
)

// Walker steps one session through the questionnaire. It owns the position
// and the answer set and writes the answers to the local store after every
// change. A Walker is not safe for concurrent use; callers serialize the
// actions of a session.
type Walker struct {
	questions []domain.Question
	session   *domain.Session
	store     kvstore.Store
	log       *zap.Logger

	dictation  dictation.Provider
	canDictate bool
	recording  bool
	interim    string
}

func NewWalker(s *domain.Session, questions []domain.Question, store kvstore.Store, provider dictation.Provider, log *zap.Logger) *Walker {
	if s == nil {
		s = domain.NewSession("", "")
	}
	if s.Answers == nil {
		s.Answers = domain.AnswerSet{}
	}
	if provider == nil {
		provider = dictation.Unavailable{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Walker{
		questions:  questions,
		session:    s,
		store:      store,
		log:        log.With(zap.String("session", s.ID)),
		dictation:  provider,
		canDictate: provider.Available(),
	}
}

// LoadSaved adopts the answer set found in the local store. Missing or
// malformed data leaves the walker with an empty set; it never fails.
func (w *Walker) LoadSaved() {
	w.session.Answers = domain.AnswerSet{}

	raw, err := w.store.Get(kvstore.AnswersKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			w.log.Debug("ignoring unreadable local store", zap.Error(err))
		}
		return
	}

	answers, err := domain.DecodeAnswerSet([]byte(raw), len(w.questions))
	if err != nil {
		w.log.Debug("ignoring malformed saved answers", zap.Error(err))
		return
	}

	w.session.Answers = answers
	w.log.Debug("restored saved answers", zap.Int("count", len(answers)))
}

func (w *Walker) Render() domain.View {
	v, err := domain.Render(w.questions, w.session.Position, w.session.Answers)
	if err != nil {
		w.log.Error("rendering question", zap.Error(err))
		return domain.View{}
	}

	v.Dictation = w.canDictate
	v.Recording = w.recording
	v.Interim = w.interim
	return v
}

// SaveAnswer records text for position and persists the whole answer set.
// The in-memory answer is kept even when the store write fails.
func (w *Walker) SaveAnswer(position int, text string) error {
	if position < 0 || position >= len(w.questions) {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}

	w.session.Answers[position] = text
	return w.persist()
}

func (w *Walker) persist() error {
	data, err := w.session.Answers.Encode()
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}
	if err := w.store.Set(kvstore.AnswersKey, string(data)); err != nil {
		return fmt.Errorf("saving answers: %w", err)
	}
	return nil
}

// Next saves input for the current question and moves forward. On the last
// question it completes the questionnaire instead.
func (w *Walker) Next(input string) (Transition, error) {
	if w.session.Completed {
		return Completed, ErrCompleted
	}

	w.saveCurrent(input)

	if w.session.Position < len(w.questions)-1 {
		w.session.Position++
		return Advanced, nil
	}

	w.StopDictation()
	w.session.Completed = true
	w.log.Info("questionnaire completed", zap.Int("answers", len(w.session.Answers)))
	return Completed, nil
}

// Previous saves input for the current question and moves back. It does not
// move before the first question.
func (w *Walker) Previous(input string) error {
	if w.session.Completed {
		return ErrCompleted
	}

	w.saveCurrent(input)

	if w.session.Position > 0 {
		w.session.Position--
	}
	return nil
}

func (w *Walker) saveCurrent(input string) {
	if err := w.SaveAnswer(w.session.Position, input); err != nil {
		w.log.Warn("answer kept in memory only", zap.Int("position", w.session.Position), zap.Error(err))
	}
}

// Restart clears the answers in memory and in the local store and starts
// over at the first question. It does nothing unless confirmed.
func (w *Walker) Restart(confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}

	w.StopDictation()
	w.session.Position = 0
	w.session.Answers = domain.AnswerSet{}
	w.session.Completed = false
	w.session.StartedAt = time.Now()

	if err := w.store.Delete(kvstore.AnswersKey); err != nil {
		return true, fmt.Errorf("clearing saved answers: %w", err)
	}
	return true, nil
}

func (w *Walker) DictationAvailable() bool {
	return w.canDictate
}

// ToggleDictation starts or stops dictation. When it starts, the returned
// channel delivers results until the provider stops; every event must be
// passed to HandleDictation. Without a provider it does nothing.
func (w *Walker) ToggleDictation(ctx context.Context) (domain.Notice, <-chan dictation.Event, error) {
	if !w.canDictate || w.session.Completed {
		return domain.Notice{}, nil, nil
	}

	if w.recording {
		w.StopDictation()
		return domain.Notice{}, nil, nil
	}

	events, err := w.dictation.Start(ctx)
	if err != nil {
		w.log.Warn("dictation failed to start", zap.Error(err))
		return domain.Notice{Level: domain.NoticeError, Message: MsgDictationError}, nil, err
	}

	w.recording = true
	w.interim = ""
	return domain.Notice{Level: domain.NoticeInfo, Message: MsgListening}, events, nil
}

// HandleDictation applies one recognizer event. Final transcripts are
// appended to the current answer and saved; interim ones are only shown.
// An error event stops dictation.
func (w *Walker) HandleDictation(ev dictation.Event) domain.Notice {
	if !w.recording {
		return domain.Notice{}
	}

	if ev.Err != nil {
		w.log.Warn("dictation error", zap.Error(ev.Err))
		w.StopDictation()
		return domain.Notice{Level: domain.NoticeError, Message: MsgDictationError}
	}

	if !ev.Final {
		w.interim = ev.Transcript
		return domain.Notice{}
	}

	w.interim = ""
	if ev.Transcript == "" {
		return domain.Notice{}
	}

	current := w.session.Answers[w.session.Position]
	if err := w.SaveAnswer(w.session.Position, current+ev.Transcript+" "); err != nil {
		w.log.Warn("dictated text kept in memory only", zap.Error(err))
	}
	return domain.Notice{}
}

// StopDictation ends recording. Safe to call when not recording.
func (w *Walker) StopDictation() {
	if !w.recording {
		return
	}
	if err := w.dictation.Stop(); err != nil {
		w.log.Debug("stopping dictation", zap.Error(err))
	}
	w.recording = false
	w.interim = ""
}

func (w *Walker) Recording() bool {
	return w.recording
}

func (w *Walker) Questions() []domain.Question {
	return w.questions
}

// Session returns a copy of the session state.
func (w *Walker) Session() domain.Session {
	s := *w.session
	s.Answers = w.session.Answers.Clone()
	return s
}
