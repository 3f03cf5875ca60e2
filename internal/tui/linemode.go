package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/hperssn/genesis/internal/domain"
	"github.com/hperssn/genesis/internal/runner"
)

// Commands understood by the line-mode walker. Any other line is the answer
// to the current question; an empty line keeps the stored answer.
const (
	cmdPrevious = ":prev"
	cmdRestart  = ":restart"
	cmdQuit     = ":quit"
)

var (
	sectionColor = color.New(color.FgGreen, color.Bold)
	counterColor = color.New(color.Faint)
	hintColor    = color.New(color.Italic)
	timerColor   = color.New(color.FgRed)
	errorColor   = color.New(color.FgRed)
	okColor      = color.New(color.FgGreen)
)

// LineMode walks the questionnaire one line at a time, for input that is not
// a terminal. Notices from the submission are written to out as they arrive.
func LineMode(ctx context.Context, in io.Reader, out io.Writer, opts Options) (Result, bool, error) {
	w := opts.Walker
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	read := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimRight(scanner.Text(), "\r"), true
	}

	fmt.Fprintf(out, "Rapid Prototype Genesis™\n")
	fmt.Fprintf(out, "Answer each question on one line. %s goes back, %s starts over, %s stops.\n\n",
		cmdPrevious, cmdRestart, cmdQuit)

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, false, err
		}

		v := w.Render()
		printQuestion(out, v)

		line, ok := read()
		if !ok {
			return Result{}, false, scanner.Err()
		}

		switch strings.TrimSpace(line) {
		case cmdQuit:
			return Result{}, false, nil

		case cmdPrevious:
			if err := w.Previous(v.Answer); err != nil {
				return Result{}, false, err
			}
			continue

		case cmdRestart:
			fmt.Fprint(out, "Start a new project? Current answers will be saved. [y/N] ")
			reply, _ := read()
			confirmed := strings.EqualFold(strings.TrimSpace(reply), "y")
			if _, err := w.Restart(confirmed); err != nil {
				errorColor.Fprintln(out, err)
			}
			continue
		}

		input := line
		if input == "" {
			input = v.Answer
		}

		t, err := w.Next(input)
		if err != nil {
			return Result{}, false, err
		}
		if t == runner.Completed {
			break
		}
	}

	// Notices arrive from the submission goroutine.
	var mu sync.Mutex
	notifier := domain.NotifyFunc(func(n domain.Notice) {
		mu.Lock()
		defer mu.Unlock()
		if n.Level == domain.NoticeError {
			errorColor.Fprintln(out, n.Message)
			return
		}
		okColor.Fprintln(out, n.Message)
	})

	res, err := finish(ctx, opts, notifier)
	if err != nil {
		return res, true, err
	}

	mu.Lock()
	defer mu.Unlock()
	okColor.Fprintln(out, "PRD Generated!")
	if res.Path != "" {
		fmt.Fprintf(out, "Saved to %s\n", res.Path)
	}
	return res, true, nil
}

func printQuestion(out io.Writer, v domain.View) {
	fmt.Fprintln(out)
	sectionColor.Fprintln(out, strings.ToUpper(v.Section))
	counterColor.Fprintln(out, v.Counter)
	fmt.Fprintln(out, v.Text)
	hintColor.Fprintln(out, v.Hint)
	if v.Timer != "" {
		timerColor.Fprintf(out, "⏱ %s\n", v.Timer)
	}
	if v.Answer != "" {
		counterColor.Fprintf(out, "[%s]\n", v.Answer)
	}
	fmt.Fprint(out, "> ")
}
