package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidPosition = errors.New("invalid question position")

const (
	ActionNext     = "Next →"
	ActionGenerate = "Generate PRD"
)

// View is everything a front end needs to show the current question.
type View struct {
	Position      int     `json:"position"`
	Section       string  `json:"section"`
	Number        int     `json:"number"`
	Total         int     `json:"total"`
	Counter       string  `json:"counter"`
	Text          string  `json:"text"`
	Hint          string  `json:"hint"`
	Timer         string  `json:"timer,omitempty"`
	Answer        string  `json:"answer"`
	Progress      float64 `json:"progress"`
	CanGoBack     bool    `json:"canGoBack"`
	PrimaryAction string  `json:"primaryAction"`

	// Set by the walker, not by Render.
	Dictation bool   `json:"dictation"`
	Recording bool   `json:"recording"`
	Interim   string `json:"interim,omitempty"`
}

// Render builds the view of the question at position, pre-filled with the
// stored answer for that index or empty when there is none.
func Render(questions []Question, position int, answers AnswerSet) (View, error) {
	if position < 0 || position >= len(questions) {
		return View{}, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}

	q := questions[position]
	total := len(questions)

	action := ActionNext
	if position == total-1 {
		action = ActionGenerate
	}

	answer, _ := answers.Get(position)

	return View{
		Position:      position,
		Section:       q.Section,
		Number:        q.Number,
		Total:         total,
		Counter:       fmt.Sprintf("Question %d of %d", q.Number, total),
		Text:          q.Text,
		Hint:          q.Hint,
		Timer:         q.Timer,
		Answer:        answer,
		Progress:      float64(position+1) / float64(total) * 100,
		CanGoBack:     position > 0,
		PrimaryAction: action,
	}, nil
}
