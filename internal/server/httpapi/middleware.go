package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ctxKey string

const (
	userIDKey    ctxKey = "userID"
	requestIDKey ctxKey = "requestID"
)

const requestIDHeader = "X-Request-ID"

// UserIDFrom returns the authenticated user id stored by the auth middleware.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// sessionToken reads the access token from a Bearer header or, failing that,
// the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(common.SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// authenticate rejects requests without a valid session before any handler
// or store is reached.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := s.users.UserIDFromToken(token)
		if err != nil {
			s.logger.Debug(r.Context(), "rejected session", "error", err, "request_id", requestIDFrom(r.Context()))
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

// requireModule hides a route group when the caller has switched module off.
// A hidden route answers exactly like an unmapped one.
func (s *HTTPServer) requireModule(module string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.gate.IsExempt(module) {
				snap, err := s.settings.Snapshot(r.Context(), UserIDFrom(r.Context()))
				if err != nil {
					s.writeError(w, r, err, nil)
					return
				}
				if !s.gate.IsModuleEnabled(snap, module) {
					s.metrics.GateDenied(module)
					s.notFound(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func recorderFor(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

// requestLog tags the request with an id and writes one access log line.
func (s *HTTPServer) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)

		rec := recorderFor(w)
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start).String(),
			"request_id", id,
		)
	})
}

// instrument records request metrics labelled by route template.
func (s *HTTPServer) instrument(router *mux.Router, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		var match mux.RouteMatch
		if router.Match(r, &match) && match.Route != nil {
			if tpl, err := match.Route.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		rec := recorderFor(w)
		start := time.Now()
		s.metrics.RequestStarted()
		defer func() {
			if p := recover(); p != nil {
				s.metrics.RequestFinished(r.Method, route, http.StatusInternalServerError, time.Since(start))
				panic(p)
			}
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			s.metrics.RequestFinished(r.Method, route, status, time.Since(start))
		}()
		next.ServeHTTP(rec, r)
	})
}

type recoveryLogger struct{ s *HTTPServer }

func (l recoveryLogger) Println(v ...interface{}) {
	l.s.logger.Error(context.Background(), "panic recovered", "panic", fmt.Sprint(v...))
}
