package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hperssn/genesis/internal/dictation"
	"github.com/hperssn/genesis/internal/domain"
	"github.com/hperssn/genesis/internal/runner"
)

const (
	confirmRestart = "Start a new project? Current answers will be saved. (y/n)"
	placeholder    = "Type your answer or use voice input..."
	defaultWidth   = 80
)

type dictationMsg struct {
	source <-chan dictation.Event
	ev     dictation.Event
	ok     bool
}

type noticeMsg domain.Notice

func waitDictation(ch <-chan dictation.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return dictationMsg{source: ch, ev: ev, ok: ok}
	}
}

func waitNotice(ch <-chan domain.Notice) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-ch)
	}
}

// Model is the full-screen walker.
type Model struct {
	ctx    context.Context
	opts   Options
	walker *runner.Walker
	keys   KeyMap

	input    textarea.Model
	help     help.Model
	progress progress.Model
	preview  viewport.Model

	notices   chan domain.Notice
	dictation <-chan dictation.Event

	confirming bool
	notice     domain.Notice
	result     *Result
	width      int
}

func NewModel(ctx context.Context, opts Options) *Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(defaultWidth - 8)
	ta.SetHeight(6)
	ta.Focus()

	m := &Model{
		ctx:      ctx,
		opts:     opts,
		walker:   opts.Walker,
		keys:     DefaultKeyMap(),
		input:    ta,
		help:     help.New(),
		progress: progress.New(progress.WithSolidFill(string(accent)), progress.WithoutPercentage()),
		preview:  viewport.New(defaultWidth, 20),
		notices:  make(chan domain.Notice, 8),
		width:    defaultWidth,
	}
	m.progress.Width = defaultWidth - 8
	m.loadAnswer()
	return m
}

// Result reports the finished walk, if the questionnaire was completed.
func (m *Model) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Notify queues a notice from another goroutine.
func (m *Model) Notify(n domain.Notice) {
	select {
	case m.notices <- n:
	default:
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitNotice(m.notices))
}

func (m *Model) loadAnswer() {
	m.input.SetValue(m.walker.Render().Answer)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case noticeMsg:
		m.notice = domain.Notice(msg)
		return m, waitNotice(m.notices)

	case dictationMsg:
		return m, m.handleDictation(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.result != nil {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.input.SetWidth(max(width-8, 20))
	m.progress.Width = max(width-8, 10)
	m.help.Width = width
	m.preview.Width = width
	m.preview.Height = max(height-8, 5)
	if m.result != nil {
		m.preview.SetContent(m.renderDocument())
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirming = false
			m.restart()
		case key.Matches(msg, m.keys.Decline):
			m.confirming = false
			m.notice = domain.Notice{}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.walker.StopDictation()
		m.dictation = nil
		return m, tea.Quit

	case key.Matches(msg, m.keys.Restart):
		m.confirming = true
		return m, nil
	}

	if m.result != nil {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		return m, m.next()

	case key.Matches(msg, m.keys.Previous):
		if err := m.walker.Previous(m.input.Value()); err != nil {
			m.notice = domain.Notice{Level: domain.NoticeError, Message: err.Error()}
		}
		m.loadAnswer()
		return m, nil

	case key.Matches(msg, m.keys.Dictation):
		return m, m.toggleDictation()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.saveInput()
	return m, cmd
}

// saveInput stores the text as typed.
func (m *Model) saveInput() {
	v := m.walker.Render()
	if m.input.Value() == v.Answer {
		return
	}
	if err := m.walker.SaveAnswer(v.Position, m.input.Value()); err != nil {
		m.notice = domain.Notice{Level: domain.NoticeError, Message: err.Error()}
	}
}

func (m *Model) next() tea.Cmd {
	t, err := m.walker.Next(m.input.Value())
	if err != nil {
		m.notice = domain.Notice{Level: domain.NoticeError, Message: err.Error()}
		return nil
	}
	if t == runner.Advanced {
		m.loadAnswer()
		return nil
	}

	m.dictation = nil
	res, err := finish(m.ctx, m.opts, m)
	m.result = &res
	if err != nil {
		m.notice = domain.Notice{Level: domain.NoticeError, Message: err.Error()}
	}
	m.preview.SetContent(m.renderDocument())
	m.preview.GotoTop()
	return nil
}

func (m *Model) restart() {
	restarted, err := m.walker.Restart(true)
	if err != nil {
		m.notice = domain.Notice{Level: domain.NoticeError, Message: err.Error()}
	}
	if restarted {
		m.result = nil
		m.dictation = nil
		m.notice = domain.Notice{}
		m.loadAnswer()
	}
}

func (m *Model) toggleDictation() tea.Cmd {
	if !m.walker.DictationAvailable() {
		return nil
	}
	m.saveInput()

	notice, events, _ := m.walker.ToggleDictation(m.ctx)
	m.notice = notice
	m.dictation = events
	if events == nil {
		return nil
	}
	return waitDictation(events)
}

func (m *Model) handleDictation(msg dictationMsg) tea.Cmd {
	// Results of a recording that has since been stopped.
	if msg.source != m.dictation {
		return nil
	}
	if !msg.ok {
		m.dictation = nil
		m.walker.StopDictation()
		return nil
	}

	if n := m.walker.HandleDictation(msg.ev); !n.IsZero() {
		m.notice = n
	}
	m.loadAnswer()
	m.input.CursorEnd()

	if !m.walker.Recording() {
		m.dictation = nil
		return nil
	}
	return waitDictation(m.dictation)
}

func (m *Model) renderDocument() string {
	if m.result == nil {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(m.width-4, 20)),
	)
	if err != nil {
		return m.result.Document.Markdown
	}
	out, err := r.Render(m.result.Document.Markdown)
	if err != nil {
		return m.result.Document.Markdown
	}
	return out
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Rapid Prototype Genesis™"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("From Vision to Lovable Prototype in One Day"))
	b.WriteString("\n\n")

	if m.result != nil {
		b.WriteString(m.completedView())
	} else {
		b.WriteString(m.questionView())
	}

	b.WriteString("\n")
	switch {
	case m.confirming:
		b.WriteString(errorStyle.Render(confirmRestart))
	case m.notice.Level == domain.NoticeError:
		b.WriteString(errorStyle.Render(m.notice.Message))
	case !m.notice.IsZero():
		b.WriteString(infoStyle.Render(m.notice.Message))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m *Model) questionView() string {
	v := m.walker.Render()

	var b strings.Builder
	b.WriteString(m.progress.ViewAs(v.Progress / 100))
	b.WriteString("\n\n")

	lines := []string{
		sectionStyle.Render(strings.ToUpper(v.Section)),
		counterStyle.Render(v.Counter),
		questionStyle.Render(v.Text),
		hintStyle.Render(v.Hint),
	}
	if v.Timer != "" {
		lines = append(lines, timerStyle.Render("⏱ "+v.Timer))
	}
	lines = append(lines, "", m.input.View())

	status := ""
	if v.Recording {
		status = recordStyle.Render("● recording")
		if v.Interim != "" {
			status += " " + interimStyle.Render(v.Interim)
		}
	}
	lines = append(lines, status, counterStyle.Render(fmt.Sprintf("ctrl+→: %s", v.PrimaryAction)))

	b.WriteString(frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return b.String()
}

func (m *Model) completedView() string {
	var b strings.Builder
	b.WriteString(successStyle.Render("✓ PRD Generated!"))
	b.WriteString("\n")
	if m.result.Path != "" {
		b.WriteString(subtitleStyle.Render("Saved to " + m.result.Path))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.preview.View())
	return b.String()
}

// Run drives the full-screen walker until the user quits.
func Run(ctx context.Context, opts Options) (Result, bool, error) {
	m := NewModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return Result{}, false, err
	}
	res, ok := final.(*Model).Result()
	return res, ok, nil
}
