package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const apiPrefix = "/api"

// gatedSubrouter mounts a route group under /api that only exists for users
// with module enabled.
func (s *HTTPServer) gatedSubrouter(parent *mux.Router, prefix, module string) *mux.Router {
	s.gated = append(s.gated, gatedPrefix{path: apiPrefix + prefix, module: module})
	sub := parent.PathPrefix(prefix).Subrouter()
	sub.Use(s.requireModule(module))
	return sub
}

func (s *HTTPServer) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(apiPrefix).Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/current-date", s.currentDate).Methods(http.MethodGet)

	api.Handle("/auth/register", s.limiter.middleware(http.HandlerFunc(s.register))).Methods(http.MethodPost)
	api.Handle("/auth/login", s.limiter.middleware(http.HandlerFunc(s.login))).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.refresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(s.authenticate)

	private.HandleFunc("/auth/user", s.currentUser).Methods(http.MethodGet)

	private.HandleFunc("/modules", s.listModules).Methods(http.MethodGet)
	private.HandleFunc("/modules/{name}/access", s.moduleAccess).Methods(http.MethodGet)

	private.HandleFunc("/user/settings", s.listSettings).Methods(http.MethodGet)
	private.HandleFunc("/user/settings", s.createSetting).Methods(http.MethodPost)
	private.HandleFunc("/user/settings/{moduleName}", s.getSetting).Methods(http.MethodGet)
	private.HandleFunc("/user/settings/{id}", s.updateSetting).Methods(http.MethodPatch)
	private.HandleFunc("/user/settings/{id}", s.deleteSetting).Methods(http.MethodDelete)

	habits := s.gatedSubrouter(private, "/habits", common.ModuleHabits)
	habits.HandleFunc("", s.listHabits).Methods(http.MethodGet)
	habits.HandleFunc("", s.createHabit).Methods(http.MethodPost)
	habits.HandleFunc("/{id}", s.getHabit).Methods(http.MethodGet)
	habits.HandleFunc("/{id}", s.updateHabit).Methods(http.MethodPut)
	habits.HandleFunc("/{id}", s.deleteHabit).Methods(http.MethodDelete)
	habits.HandleFunc("/{id}/entries", s.listHabitEntries).Methods(http.MethodGet)

	entries := s.gatedSubrouter(private, "/habit-entries", common.ModuleHabits)
	entries.HandleFunc("", s.listEntries).Methods(http.MethodGet)
	entries.HandleFunc("", s.createEntry).Methods(http.MethodPost)
	entries.HandleFunc("/{id}", s.deleteEntry).Methods(http.MethodDelete)

	s.gatedMethodNotAllowed = s.authenticate(http.HandlerFunc(s.gatedMismatch))

	var h http.Handler = r
	h = s.instrument(r, h)
	h = s.requestLog(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(s.allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
		handlers.AllowCredentials(),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s}))(h)
	return h
}
