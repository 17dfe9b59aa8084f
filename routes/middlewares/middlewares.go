package middlewares

import (
	"context"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gofrs/uuid"

	"github.com/mbolis/boxer-intake/httpx"
	"github.com/mbolis/boxer-intake/log"
)

const coachRealm = `Basic realm="Coach Area"`

// CoachAuth lets a request through only with the shared coach credential in
// an HTTP Basic Authorization header; otherwise it answers a 401 challenge.
func CoachAuth(verifier *httpx.CoachVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !verifier.Verify(user, pass) {
				log.LogWith(requestFields(r), log.DebugLevel, "auth.coach: rejected")
				w.Header().Set("WWW-Authenticate", coachRealm)
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger tags every request with an id (echoed as X-Request-Id),
// exposes it to handlers through httpx.LogFieldsKey, and logs one line per
// request with status, size and duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fields := log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}
		if id, err := uuid.NewV4(); err == nil {
			fields["request_id"] = id.String()
			w.Header().Set("X-Request-Id", id.String())
		}
		r = r.WithContext(context.WithValue(r.Context(), httpx.LogFieldsKey, fields))

		m := httpsnoop.CaptureMetrics(next, w, r)

		entry := log.WithFields(fields).WithFields(log.Fields{
			"status":   m.Code,
			"bytes":    m.Written,
			"duration": m.Duration.String(),
			"remote":   r.RemoteAddr,
		})
		if m.Code >= http.StatusInternalServerError {
			entry.Warn("request")
		} else {
			entry.Info("request")
		}
	})
}

func requestFields(r *http.Request) log.Fields {
	if f, ok := r.Context().Value(httpx.LogFieldsKey).(log.Fields); ok {
		return f
	}
	return log.Fields{}
}
