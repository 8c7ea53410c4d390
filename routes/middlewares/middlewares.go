package middlewares

import (
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/survey-publisher/handoff"
	"github.com/mbolis/survey-publisher/httpx"
	"github.com/mbolis/survey-publisher/log"
)

// RequestLog logs one line per request with its status, size and duration.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		entry := log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     m.Code,
			"bytes":      m.Written,
			"duration":   m.Duration,
			"request_id": middleware.GetReqID(r.Context()),
		})
		if m.Code >= 500 {
			entry.Warn("request")
		} else {
			entry.Info("request")
		}
	})
}

// BearerToken keeps the bearer token of the incoming request as the token
// forwarded to the survey backend.
func BearerToken(h *handoff.SessionHandoff) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if ok && token != "" {
				current, err := h.AuthToken(r.Context())
				if err != nil {
					httpx.LogInternalError(w, "auth.get_token", err)
					return
				}
				if current != token {
					err = h.SetAuthToken(r.Context(), token)
					if err != nil {
						httpx.LogInternalError(w, "auth.set_token", err)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicCORS lets survey documents opened from anywhere, file:// included,
// post their answers.
func PublicCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
