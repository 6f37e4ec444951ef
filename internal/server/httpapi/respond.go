package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

// messages overrides the client-facing text for specific sentinel errors.
type messages map[error]string

var statusBySentinel = []struct {
	err    error
	status int
	msg    string
}{
	{common.ErrorNotFound, http.StatusNotFound, "Not found"},
	{common.ErrorForbidden, http.StatusForbidden, "Forbidden"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "Unauthorized"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "Unauthorized"},
	{common.ErrRefreshTokenExpired, http.StatusUnauthorized, "Refresh token expired"},
	{common.ErrorConflict, http.StatusConflict, "Already exists"},
	{common.ErrorValidation, http.StatusBadRequest, ""},
}

// writeError maps err onto a status code and a message that never carries
// internals. Unknown errors are logged and answered with 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error, msgs messages) {
	for _, m := range statusBySentinel {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.msg
		if override, ok := msgs[m.err]; ok {
			msg = override
		} else if m.err == common.ErrorValidation {
			msg = err.Error()
		}
		writeMessage(w, m.status, msg)
		return
	}

	s.logger.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()))
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

// notFound is shared by unmapped routes and switched-off modules so the two
// cannot be told apart.
func (s *HTTPServer) notFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not found")
}

type gatedPrefix struct {
	path   string
	module string
}

func (s *HTTPServer) gatedModule(path string) (string, bool) {
	for _, g := range s.gated {
		if path == g.path || strings.HasPrefix(path, g.path+"/") {
			return g.module, true
		}
	}
	return "", false
}

// methodNotAllowed answers a path that exists under another method. mux
// reports the mismatch before any subrouter middleware runs, so paths behind
// a module are sent through the session and module checks first: for a user
// with the module off the path must look unmapped.
func (s *HTTPServer) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.gatedModule(r.URL.Path); ok {
		s.gatedMethodNotAllowed.ServeHTTP(w, r)
		return
	}
	writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (s *HTTPServer) gatedMismatch(w http.ResponseWriter, r *http.Request) {
	module, _ := s.gatedModule(r.URL.Path)
	s.requireModule(module)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})).ServeHTTP(w, r)
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and reports false when the request is unusable.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, dst any, invalidMsg string) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, invalidMsg)
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			body := errorBody{Message: invalidMsg}
			for _, fe := range verrs {
				body.Errors = append(body.Errors, fieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
			writeJSON(w, http.StatusBadRequest, body)
			return false
		}
		writeMessage(w, http.StatusBadRequest, invalidMsg)
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}
