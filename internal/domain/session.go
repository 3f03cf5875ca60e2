package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the state one user owns while walking the questionnaire.
type Session struct {
	ID        string
	UserID    string
	Position  int
	Answers   AnswerSet
	StartedAt time.Time
	Completed bool
}

func NewSession(id string, userID string) *Session {
	if id == "" {
		id = uuid.New().String()
	}

	return &Session{
		ID:        id,
		UserID:    userID,
		Position:  0,
		Answers:   AnswerSet{},
		StartedAt: time.Now(),
		Completed: false,
	}
}
