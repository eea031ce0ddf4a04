package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/yarin-claude-code/stocks/internal/api/handlers"
	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/viewstate"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
)

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware counts requests per route template
func metricsMiddleware(rec *metrics.Recorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tmpl, err := cur.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			rec.RecordHTTP(route, strconv.Itoa(sr.status))
		})
	}
}

// sessionMiddleware places the signed-in user and the view session on the
// request context. The view session cookie is (re)issued whenever a new
// view session had to be created.
func sessionMiddleware(sessions *viewstate.Manager, secure bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user *auth.Session
			if c, err := r.Cookie(handlers.TokenCookie); err == nil {
				user = auth.FromToken(c.Value)
				if user.Expired(time.Now()) {
					user = nil
				}
			}

			var id string
			if c, err := r.Cookie(handlers.ViewSessionCookie); err == nil {
				id = c.Value
			}

			s := sessions.GetOrCreate(id, user)
			s.Touch()
			if s.ID != id {
				http.SetCookie(w, &http.Cookie{
					Name:     handlers.ViewSessionCookie,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := auth.WithSession(r.Context(), user)
			ctx = viewstate.WithSession(ctx, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireUser rejects anonymous requests: pages redirect to the login
// page, JSON endpoints answer 401
func requireUser(jsonAPI bool) func(http.HandlerFunc) http.Handler {
	return func(next http.HandlerFunc) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.FromContext(r.Context()) == nil {
				if jsonAPI {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next(w, r)
		})
	}
}
