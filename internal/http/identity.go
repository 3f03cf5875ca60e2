package httpapi

import (
	"context"
	"net/http"
)

type contextKey string

const UserIDKey contextKey = "userId"

// AnonymousUser owns the store of callers that identify themselves in no way.
const AnonymousUser = "anonymous"

// IdentifyUser resolves who is calling. The identity only selects the
// caller's local answers store; nothing is refused without one.
func IdentifyUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Traefik BasicAuth sets this header
		userID := r.Header.Get("X-Auth-User")

		if userID == "" {
			userID = r.Header.Get("X-Forwarded-User")
		}
		if userID == "" {
			userID = r.Header.Get("Remote-User")
		}
		// The page keeps a random client id of its own
		if userID == "" {
			userID = r.URL.Query().Get("client")
		}
		if userID == "" {
			userID = AnonymousUser
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return AnonymousUser
	}
	return userID
}
