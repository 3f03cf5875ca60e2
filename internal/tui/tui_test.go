package tui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/genesis/internal/dictation"
	"github.com/hperssn/genesis/internal/document"
	"github.com/hperssn/genesis/internal/domain"
	"github.com/hperssn/genesis/internal/kvstore"
	"github.com/hperssn/genesis/internal/runner"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

type recorder struct {
	payloads chan document.Payload
}

func (r *recorder) Submit(_ context.Context, p document.Payload) (document.Receipt, error) {
	r.payloads <- p
	return document.Receipt{Filename: "PRD_x.md"}, nil
}

func newOptions(t *testing.T, store kvstore.Store, provider dictation.Provider) (Options, *recorder) {
	t.Helper()
	if store == nil {
		store = kvstore.NewMemory()
	}

	rec := &recorder{payloads: make(chan document.Payload, 1)}
	pub := document.NewPublisher(rec, nil)
	t.Cleanup(pub.Wait)

	w := runner.NewWalker(domain.NewSession("test", "tester"), domain.Questions(), store, provider, nil)
	w.LoadSaved()

	return Options{
		Walker:    w,
		Publisher: pub,
		OutputDir: t.TempDir(),
		Now:       func() time.Time { return fixedNow },
	}, rec
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestModelTypingSavesAnswer(t *testing.T) {
	store := kvstore.NewMemory()
	opts, _ := newOptions(t, store, nil)
	m := NewModel(context.Background(), opts)

	typeText(m, "hi")

	assert.Equal(t, "hi", opts.Walker.Render().Answer)
	saved, err := store.Get(kvstore.AnswersKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"0":"hi"}`, saved)
}

func TestModelNavigation(t *testing.T) {
	opts, _ := newOptions(t, nil, nil)
	m := NewModel(context.Background(), opts)

	typeText(m, "first")
	m.Update(keyMsg(tea.KeyCtrlN))
	assert.Equal(t, 1, opts.Walker.Render().Position)
	assert.Equal(t, "", m.input.Value())

	typeText(m, "second")
	m.Update(keyMsg(tea.KeyCtrlLeft))
	assert.Equal(t, 0, opts.Walker.Render().Position)
	assert.Equal(t, "first", m.input.Value())

	m.Update(keyMsg(tea.KeyCtrlRight))
	assert.Equal(t, "second", m.input.Value())

	assert.Contains(t, m.View(), "Question 2 of 40")
}

func TestModelCompletes(t *testing.T) {
	opts, rec := newOptions(t, nil, nil)
	m := NewModel(context.Background(), opts)

	typeText(m, "A CLI tool for X")
	for i := 0; i < domain.QuestionCount; i++ {
		m.Update(keyMsg(tea.KeyCtrlN))
	}

	res, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, "PRD-2025-01-02T03-04-05.md", res.Document.Filename)
	assert.Contains(t, res.Document.Markdown, "**Answer:** A CLI tool for X")

	written, err := os.ReadFile(filepath.Join(opts.OutputDir, res.Document.Filename))
	require.NoError(t, err)
	assert.Equal(t, res.Document.Markdown, string(written))

	opts.Publisher.Wait()
	p := <-rec.payloads
	assert.Equal(t, res.Document.Markdown, p.Markdown)

	select {
	case n := <-m.notices:
		assert.Equal(t, document.MsgSaved, n.Message)
	default:
		t.Fatal("expected a save notice")
	}

	assert.Contains(t, m.View(), "PRD Generated!")

	// Navigation keys no longer move anything.
	m.Update(keyMsg(tea.KeyCtrlN))
	assert.True(t, opts.Walker.Session().Completed)
}

func TestModelRestart(t *testing.T) {
	opts, _ := newOptions(t, nil, nil)
	m := NewModel(context.Background(), opts)

	typeText(m, "keep")
	m.Update(keyMsg(tea.KeyCtrlN))

	m.Update(keyMsg(tea.KeyCtrlR))
	assert.Contains(t, m.View(), confirmRestart)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.NotContains(t, m.View(), confirmRestart)
	assert.Equal(t, 1, opts.Walker.Render().Position)
	assert.Equal(t, "", m.input.Value(), "declining must not type into the answer")

	m.Update(keyMsg(tea.KeyCtrlR))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})

	v := opts.Walker.Render()
	assert.Equal(t, 0, v.Position)
	assert.Equal(t, "", v.Answer)
	assert.Equal(t, "", m.input.Value())
}

func TestModelDictation(t *testing.T) {
	relay := dictation.NewRelay()
	opts, _ := newOptions(t, nil, relay)
	m := NewModel(context.Background(), opts)

	_, cmd := m.Update(keyMsg(tea.KeyCtrlAt))
	require.NotNil(t, cmd)
	assert.Equal(t, runner.MsgListening, m.notice.Message)
	assert.True(t, opts.Walker.Recording())

	require.NoError(t, relay.Push(dictation.Event{Transcript: "hel", Final: false}))
	_, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "hel")

	require.NoError(t, relay.Push(dictation.Event{Transcript: "hello", Final: true}))
	_, cmd = m.Update(cmd())
	assert.Equal(t, "hello ", m.input.Value())

	require.NoError(t, relay.Push(dictation.Event{Err: assert.AnError}))
	_, cmd = m.Update(cmd())
	assert.Nil(t, cmd)
	assert.False(t, opts.Walker.Recording())
	assert.Equal(t, runner.MsgDictationError, m.notice.Message)
}

func TestModelDictationUnavailable(t *testing.T) {
	opts, _ := newOptions(t, nil, nil)
	m := NewModel(context.Background(), opts)

	_, cmd := m.Update(keyMsg(tea.KeyCtrlAt))
	assert.Nil(t, cmd)
	assert.True(t, m.notice.IsZero())
}

func TestModelQuit(t *testing.T) {
	opts, _ := newOptions(t, nil, nil)
	m := NewModel(context.Background(), opts)

	_, cmd := m.Update(keyMsg(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, ok := m.Result()
	assert.False(t, ok)
}

func TestLineModeCompletes(t *testing.T) {
	opts, rec := newOptions(t, nil, nil)

	input := "answer one\n" + strings.Repeat("\n", domain.QuestionCount-1)
	var out bytes.Buffer

	res, ok, err := LineMode(context.Background(), strings.NewReader(input), &out, opts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, res.Document.Markdown, "### 1. The One-Liner\n*In 10 words or less, what does this thing DO?*\n\n**Answer:** answer one")
	assert.FileExists(t, res.Path)

	opts.Publisher.Wait()
	<-rec.payloads
	assert.Contains(t, out.String(), "Question 40 of 40")
	assert.Contains(t, out.String(), document.MsgSaved)
}

func TestLineModeCommands(t *testing.T) {
	opts, _ := newOptions(t, nil, nil)

	input := strings.Join([]string{
		"one",
		"two",
		":prev",
		"",
		":restart",
		"n",
		":quit",
	}, "\n") + "\n"
	var out bytes.Buffer

	_, ok, err := LineMode(context.Background(), strings.NewReader(input), &out, opts)
	require.NoError(t, err)
	assert.False(t, ok)

	s := opts.Walker.Session()
	assert.Equal(t, 2, s.Position)
	assert.Equal(t, domain.AnswerSet{0: "one", 1: "two", 2: ""}, s.Answers)

	opts2, _ := newOptions(t, nil, nil)
	_, _, err = LineMode(context.Background(), strings.NewReader("one\n:restart\ny\n:quit\n"), &out, opts2)
	require.NoError(t, err)
	assert.Equal(t, 0, opts2.Walker.Session().Position)
	assert.Empty(t, opts2.Walker.Session().Answers)
}

func TestLineModeEndOfInput(t *testing.T) {
	opts, _ := newOptions(t, nil, nil)

	_, ok, err := LineMode(context.Background(), strings.NewReader("only one\n"), &bytes.Buffer{}, opts)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "only one", opts.Walker.Session().Answers[0])
}
