package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hperssn/genesis/internal/dictation"
	"github.com/hperssn/genesis/internal/document"
	"github.com/hperssn/genesis/internal/runner"
)

func (s *server) startSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dictation bool `json:"dictation"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := s.manager.StartSession(GetUserID(r), req.Dictation)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}
	respondJSON(w, snap, http.StatusCreated)
}

func (s *server) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}
	respondJSON(w, snap, http.StatusOK)
}

func (s *server) stopSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.StopSession(chi.URLParam(r, "id")); err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type answerRequest struct {
	Position *int   `json:"position"`
	Text     string `json:"text"`
}

func (s *server) saveAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		current, err := s.manager.GetSession(id)
		if err != nil {
			respondError(w, err.Error(), statusFor(err))
			return
		}
		position = current.View.Position
	}

	snap, err := s.manager.SaveAnswer(id, position, req.Text)
	respondSnapshot(w, snap, err)
}

// navigationInput is the answer text sent along with next and previous. A
// missing body keeps the stored answer.
func navigationInput(r *http.Request, stored string) (string, error) {
	var req struct {
		Text *string `json:"text"`
	}
	if err := decodeOptional(r, &req); err != nil {
		return "", err
	}
	if req.Text == nil {
		return stored, nil
	}
	return *req.Text, nil
}

func (s *server) next(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, s.manager.Next)
}

func (s *server) previous(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, s.manager.Previous)
}

func (s *server) navigate(w http.ResponseWriter, r *http.Request, move func(id, input string) (runner.Snapshot, error)) {
	id := chi.URLParam(r, "id")

	current, err := s.manager.GetSession(id)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	input, err := navigationInput(r, current.View.Answer)
	if err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := move(id, input)
	respondSnapshot(w, snap, err)
}

func (s *server) restart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, restarted, err := s.manager.Restart(chi.URLParam(r, "id"), req.Confirm)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	resp := struct {
		runner.Snapshot
		Restarted bool `json:"restarted"`
	}{snap, restarted}
	respondJSON(w, resp, http.StatusOK)
}

func (s *server) toggleDictation(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.ToggleDictation(chi.URLParam(r, "id"))
	respondSnapshot(w, snap, err)
}

type dictationRequest struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
	Error      string `json:"error"`
}

func (s *server) pushDictation(w http.ResponseWriter, r *http.Request) {
	var req dictationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ev := dictation.Event{Transcript: req.Transcript, Final: req.Final}
	if req.Error != "" {
		ev.Err = fmt.Errorf("recognizer: %s", req.Error)
	}

	if err := s.manager.PushDictation(chi.URLParam(r, "id"), ev); err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) downloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.manager.Document(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := document.RenderHTML(doc.Markdown)
		if err != nil {
			respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, html)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	io.WriteString(w, doc.Markdown)
}

// decodeOptional decodes a JSON body into v, accepting an empty body.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func respondSnapshot(w http.ResponseWriter, snap runner.Snapshot, err error) {
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}
	respondJSON(w, snap, http.StatusOK)
}

// statusFor maps domain errors to response codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, runner.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, runner.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.Is(err, runner.ErrCompleted),
		errors.Is(err, runner.ErrNotCompleted),
		errors.Is(err, dictation.ErrUnavailable),
		errors.Is(err, dictation.ErrNotRecording):
		return http.StatusConflict
	case errors.Is(err, dictation.ErrBacklog):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
