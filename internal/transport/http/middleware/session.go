package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

type sessionChecker interface {
	Active(ctx context.Context, sessionID string) (bool, error)
}

// RequireActiveSession rejects bearers whose session was logged out. It must
// run after Auth.
func RequireActiveSession(sessions sessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			active, err := sessions.Active(r.Context(), claims.SessionID)
			if err != nil {
				slog.Error("session lookup failed", "session_id", claims.SessionID, "err", err)
				writeJSONError(w, r, http.StatusServiceUnavailable, "session store unavailable")
				return
			}
			if !active {
				writeJSONError(w, r, http.StatusUnauthorized, "session ended")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
