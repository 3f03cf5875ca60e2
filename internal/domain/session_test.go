package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQuestionsSequence(t *testing.T) {
	qs := Questions()

	if len(qs) != QuestionCount {
		t.Fatalf("len(Questions()) = %d, want %d", len(qs), QuestionCount)
	}

	seen := map[string]bool{}
	prev := ""
	for i, q := range qs {
		if q.Number != i+1 {
			t.Errorf("question %d has number %d, want %d", i, q.Number, i+1)
		}
		if q.Section != prev {
			if seen[q.Section] {
				t.Errorf("section %q appears in more than one contiguous run", q.Section)
			}
			seen[q.Section] = true
			prev = q.Section
		}
		if q.Text == "" || q.Hint == "" {
			t.Errorf("question %d is missing text or hint", q.Number)
		}
	}

	if qs[0].Timer == "" {
		t.Errorf("first question should carry a timer")
	}
	for _, q := range qs[1:] {
		if q.Timer != "" {
			t.Errorf("question %d should not carry a timer", q.Number)
		}
	}
}

func TestQuestionsReturnsCopy(t *testing.T) {
	qs := Questions()
	qs[0].Text = "changed"

	if Questions()[0].Text == "changed" {
		t.Fatalf("Questions() must not expose the shared sequence")
	}
}

func TestRenderReproducesStoredAnswer(t *testing.T) {
	qs := Questions()
	answers := AnswerSet{0: "A CLI tool for X", 17: "two daemons", 39: "unplug it"}

	for pos := range qs {
		v, err := Render(qs, pos, answers)
		if err != nil {
			t.Fatalf("Render(%d): %v", pos, err)
		}
		want := answers[pos]
		if v.Answer != want {
			t.Errorf("Render(%d).Answer = %q, want %q", pos, v.Answer, want)
		}
		if v.Number != pos+1 || v.Section != qs[pos].Section {
			t.Errorf("Render(%d) shows question %d in %q", pos, v.Number, v.Section)
		}
	}
}

func TestRenderLabels(t *testing.T) {
	qs := Questions()

	tests := []struct {
		name     string
		position int
		counter  string
		action   string
		back     bool
		timer    bool
	}{
		{name: "first", position: 0, counter: "Question 1 of 40", action: ActionNext, back: false, timer: true},
		{name: "middle", position: 20, counter: "Question 21 of 40", action: ActionNext, back: true},
		{name: "last", position: 39, counter: "Question 40 of 40", action: ActionGenerate, back: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Render(qs, tt.position, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Counter != tt.counter {
				t.Errorf("counter = %q, want %q", v.Counter, tt.counter)
			}
			if v.PrimaryAction != tt.action {
				t.Errorf("primary action = %q, want %q", v.PrimaryAction, tt.action)
			}
			if v.CanGoBack != tt.back {
				t.Errorf("canGoBack = %v, want %v", v.CanGoBack, tt.back)
			}
			if (v.Timer != "") != tt.timer {
				t.Errorf("timer = %q", v.Timer)
			}
			if v.Answer != "" {
				t.Errorf("answer = %q, want empty", v.Answer)
			}
		})
	}
}

func TestRenderOutOfRange(t *testing.T) {
	qs := Questions()

	for _, pos := range []int{-1, len(qs)} {
		if _, err := Render(qs, pos, nil); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("Render(%d) err = %v, want ErrInvalidPosition", pos, err)
		}
	}
}

func TestDecodeAnswerSet(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    AnswerSet
		wantErr bool
	}{
		{name: "object", data: `{"0":"hello","12":"world"}`, want: AnswerSet{0: "hello", 12: "world"}},
		{name: "out of range keys dropped", data: `{"0":"a","40":"b","-1":"c","x":"d"}`, want: AnswerSet{0: "a"}},
		{name: "empty object", data: `{}`, want: AnswerSet{}},
		{name: "not json", data: `not json at all`, wantErr: true},
		{name: "array", data: `["a","b"]`, wantErr: true},
		{name: "non string value", data: `{"0":5}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAnswerSet([]byte(tt.data), QuestionCount)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("answers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnswerSetEncodeDeterministic(t *testing.T) {
	a := AnswerSet{}
	for i := 0; i < QuestionCount; i++ {
		a[i] = "answer"
	}

	first, err := a.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := a.Clone().Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("encoding is not stable:\n%s\n%s", first, again)
		}
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession("", "dev-user")

	if s.ID == "" {
		t.Fatalf("expected generated session id")
	}
	if s.Position != 0 || s.Completed || len(s.Answers) != 0 {
		t.Fatalf("new session should start empty at position 0, got %+v", s)
	}

	named := NewSession("fixed", "dev-user")
	if named.ID != "fixed" {
		t.Fatalf("session id = %q, want fixed", named.ID)
	}
}
