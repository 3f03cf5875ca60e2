package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hperssn/genesis/internal/runner"
)

// StreamSessionNotices sends the session's transient notices (save results,
// dictation state) as server-sent events until the client goes away or the
// session ends.
func StreamSessionNotices(manager *runner.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		notices, err := manager.Notices(id)
		if err != nil {
			respondError(w, err.Error(), statusFor(err))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			respondError(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case notice, ok := <-notices:
				if !ok {
					return
				}
				data, _ := json.Marshal(notice)
				w.Write([]byte("event: notice\ndata: "))
				w.Write(data)
				w.Write([]byte("\n\n"))

				flusher.Flush()

			case <-r.Context().Done():
				return
			}
		}
	}
}
