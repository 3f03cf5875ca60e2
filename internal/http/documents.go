package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hperssn/genesis/internal/document"
	"github.com/hperssn/genesis/internal/storage"
)

const msgSaved = "PRD saved successfully"

type saveResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// savePRD stores a submitted document and its raw answers.
func (s *server) savePRD(w http.ResponseWriter, r *http.Request) {
	var p document.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSON(w, saveResponse{Error: "invalid request body: " + err.Error()}, http.StatusBadRequest)
		return
	}

	sub := storage.Submitter{Repo: s.repo, Now: s.now}
	receipt, err := sub.Submit(r.Context(), p)
	if err != nil {
		s.log.Error("failed to save document", zap.Error(err))
		respondJSON(w, saveResponse{Error: err.Error()}, http.StatusInternalServerError)
		return
	}

	s.log.Info("document saved", zap.String("filename", receipt.Filename))
	respondJSON(w, saveResponse{
		Success:  true,
		Message:  msgSaved,
		Filename: receipt.Filename,
	}, http.StatusOK)
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	count, err := s.repo.CountDocuments(r.Context())
	if err != nil {
		s.log.Error("failed to count documents", zap.Error(err))
		respondError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		PRDCount  int    `json:"prd_count"`
	}{
		Status:    "healthy",
		Timestamp: s.now().Format("2006-01-02T15:04:05.000000"),
		PRDCount:  count,
	}, http.StatusOK)
}

func (s *server) listDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	docs, err := s.repo.ListDocuments(r.Context(), limit)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []storage.DocumentRecord{}
	}
	respondJSON(w, docs, http.StatusOK)
}

func (s *server) getDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := s.repo.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrDocumentNotFound) {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, rec, http.StatusOK)
}
