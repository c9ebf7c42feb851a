package httphandler

import (
	"log/slog"
	"net/http"
	"time"
)

// ServeJSON sets the JSON content type on every response.
func ServeJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

func LogRequests(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info(
			"request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	}
	return http.HandlerFunc(hf)
}
