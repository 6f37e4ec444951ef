package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/logging"
	"github.com/dmitrijs2005/lifekeeper/internal/server/catalog"
	"github.com/dmitrijs2005/lifekeeper/internal/server/config"
	"github.com/dmitrijs2005/lifekeeper/internal/server/gate"
	"github.com/dmitrijs2005/lifekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/services"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom: secret internals" }

// --- users ---

type stubUsers struct {
	tokens      map[string]string // access token -> user id
	registerErr error
	loginErr    error
	logoutCalls []string
}

func (u *stubUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, *services.TokenPair, error) {
	if u.registerErr != nil {
		return nil, nil, u.registerErr
	}
	return &models.User{ID: "new-user", UserName: in.Username}, &services.TokenPair{AccessToken: "tok-new-user", RefreshToken: "r"}, nil
}

func (u *stubUsers) Login(_ context.Context, username, _ string) (*models.User, *services.TokenPair, error) {
	if u.loginErr != nil {
		return nil, nil, u.loginErr
	}
	return &models.User{ID: "u1", UserName: username}, &services.TokenPair{AccessToken: "tok-u1", RefreshToken: "r1"}, nil
}

func (u *stubUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	if token != "r1" {
		return nil, common.ErrorUnauthorized
	}
	return &services.TokenPair{AccessToken: "tok-u1", RefreshToken: "r2"}, nil
}

func (u *stubUsers) Logout(_ context.Context, token string) error {
	u.logoutCalls = append(u.logoutCalls, token)
	return nil
}

func (u *stubUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, UserName: "alice"}, nil
}

func (u *stubUsers) UserIDFromToken(token string) (string, error) {
	id, ok := u.tokens[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return id, nil
}

func (u *stubUsers) AccessTokenTTL() time.Duration { return time.Hour }

// --- settings ---

type stubSettings struct {
	records     map[string][]models.UserSetting
	snapshotErr error
	createErr   error
	snapshots   int
	created     []services.CreateSettingInput
}

func (s *stubSettings) Modules() []models.Module { return catalog.New(catalog.Defaults()).List() }

func (s *stubSettings) List(_ context.Context, userID string) ([]models.UserSetting, error) {
	return s.records[userID], nil
}

func (s *stubSettings) GetByModule(_ context.Context, userID, module string) (*models.UserSetting, error) {
	for _, r := range s.records[userID] {
		if r.ModuleName == module {
			return &r, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *stubSettings) Create(_ context.Context, userID string, in services.CreateSettingInput) (*models.UserSetting, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, in)
	us := models.UserSetting{ID: "s-new", UserID: userID, ModuleName: in.ModuleID, Enabled: in.Enabled == nil || *in.Enabled}
	s.records[userID] = append(s.records[userID], us)
	return &us, nil
}

func (s *stubSettings) Update(_ context.Context, userID, id string, p models.UserSettingPatch) (*models.UserSetting, error) {
	for i, r := range s.records[userID] {
		if r.ID == id {
			if p.Enabled != nil {
				s.records[userID][i].Enabled = *p.Enabled
			}
			out := s.records[userID][i]
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *stubSettings) Delete(_ context.Context, userID, id string) error {
	for i, r := range s.records[userID] {
		if r.ID == id {
			s.records[userID] = append(s.records[userID][:i], s.records[userID][i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (s *stubSettings) Snapshot(_ context.Context, userID string) (gate.Snapshot, error) {
	s.snapshots++
	if s.snapshotErr != nil {
		return gate.Pending(), s.snapshotErr
	}
	return gate.Loaded(s.records[userID]), nil
}

// --- habits ---

type stubHabits struct {
	habits      []models.Habit
	completeErr error
	listErr     error
	panicList   bool
	deleteOK    bool
	gotDate     *time.Time
	completed   []services.CompleteHabitInput
}

func (h *stubHabits) Location() *time.Location { return time.UTC }

func (h *stubHabits) ListHabits(context.Context, string) ([]models.Habit, error) {
	if h.panicList {
		panic("list exploded")
	}
	if h.listErr != nil {
		return nil, h.listErr
	}
	return h.habits, nil
}

func (h *stubHabits) GetHabit(_ context.Context, userID, id string) (*models.Habit, error) {
	for _, x := range h.habits {
		if x.ID == id && x.UserID == userID {
			return &x, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (h *stubHabits) CreateHabit(_ context.Context, userID string, in services.CreateHabitInput) (*models.Habit, error) {
	return &models.Habit{ID: "h-new", UserID: userID, Title: in.Title, Frequency: in.Frequency}, nil
}

func (h *stubHabits) UpdateHabit(ctx context.Context, userID, id string, _ services.UpdateHabitInput) (*models.Habit, error) {
	return h.GetHabit(ctx, userID, id)
}

func (h *stubHabits) DeleteHabit(ctx context.Context, userID, id string) error {
	_, err := h.GetHabit(ctx, userID, id)
	return err
}

func (h *stubHabits) ListEntriesForHabit(ctx context.Context, userID, id string) ([]models.HabitEntry, error) {
	if _, err := h.GetHabit(ctx, userID, id); err != nil {
		return nil, err
	}
	return []models.HabitEntry{}, nil
}

func (h *stubHabits) ListEntriesForUser(_ context.Context, _ string, date *time.Time) ([]models.HabitEntry, error) {
	h.gotDate = date
	return []models.HabitEntry{}, nil
}

func (h *stubHabits) CompleteHabit(_ context.Context, userID string, in services.CompleteHabitInput) (*models.HabitEntry, error) {
	if h.completeErr != nil {
		return nil, h.completeErr
	}
	h.completed = append(h.completed, in)
	return &models.HabitEntry{ID: "e-new", HabitID: in.HabitID, UserID: userID, Completed: true}, nil
}

func (h *stubHabits) DeleteHabitEntry(context.Context, string, string) (bool, error) {
	return h.deleteOK, nil
}

// --- harness ---

type harness struct {
	srv      *HTTPServer
	users    *stubUsers
	settings *stubSettings
	habits   *stubHabits
	metrics  *metrics.Metrics
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	h := &harness{
		users: &stubUsers{tokens: map[string]string{"tok-u1": "u1", "tok-u2": "u2"}},
		settings: &stubSettings{records: map[string][]models.UserSetting{
			"u1": {{ID: "s1", UserID: "u1", ModuleName: "habits", Enabled: true}},
			"u2": {{ID: "s2", UserID: "u2", ModuleName: "habits", Enabled: false}},
		}},
		habits:  &stubHabits{habits: []models.Habit{{ID: "h1", UserID: "u1", Title: "Read", Frequency: "daily"}}},
		metrics: metrics.New(),
	}
	cfg := &config.Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		LoginRateLimit: 100,
		LoginRateBurst: 100,
	}
	for _, o := range opts {
		o(cfg)
	}
	h.srv = NewHTTPServer(cfg, logging.Nop(), h.users, h.settings, h.habits, gate.New(), h.metrics)
	return h
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}
