package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/dbx"
	"github.com/dmitrijs2005/lifekeeper/internal/server/catalog"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/habitentries"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/habits"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/modules"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/settings"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memStore backs every fake repository. Writes are not transactional; tests
// assert commit/rollback through sqlmock and state through the store.
type memStore struct {
	users    map[string]*models.User
	tokens   map[string]*models.RefreshToken
	modules  []models.Module
	settings map[string]*models.UserSetting
	habits   map[string]*models.Habit
	entries  map[string]*models.HabitEntry

	// fail maps "repo.Method" to the error that call returns.
	fail map[string]error
	// calls counts invocations per "repo.Method".
	calls map[string]int
	// afterHabitGet runs once a habit has been read, to let a test land a
	// concurrent write between a service's read and its update.
	afterHabitGet func()
	// afterTokenFind plays the same role for refresh token rotation.
	afterTokenFind func()
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		tokens:   map[string]*models.RefreshToken{},
		modules:  catalog.Defaults(),
		settings: map[string]*models.UserSetting{},
		habits:   map[string]*models.Habit{},
		entries:  map[string]*models.HabitEntry{},
		fail:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (s *memStore) hit(op string) error {
	s.calls[op]++
	return s.fail[op]
}

func (s *memStore) addHabit(userID string, streak, best int) *models.Habit {
	h := &models.Habit{
		ID: uuid.NewString(), UserID: userID, Title: "h", Frequency: "daily",
		Streak: streak, BestStreak: best, CreatedAt: time.Now(),
	}
	s.habits[h.ID] = h
	return h
}

func (s *memStore) addEntry(habitID, userID string, at time.Time) *models.HabitEntry {
	e := &models.HabitEntry{ID: uuid.NewString(), HabitID: habitID, UserID: userID, Completed: true, CompletedAt: at}
	s.entries[e.ID] = e
	return e
}

func (s *memStore) addSetting(userID, module string, enabled bool) *models.UserSetting {
	us := &models.UserSetting{
		ID: uuid.NewString(), UserID: userID, ModuleName: module, Enabled: enabled,
		Settings: []byte(`{}`), CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.settings[us.ID] = us
	return us
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return fakeUsers{m.s} }

func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return fakeTokens{m.s} }

func (m *fakeRepoManager) Modules(dbx.DBTX) modules.Repository { return fakeModules{m.s} }

func (m *fakeRepoManager) Settings(dbx.DBTX) settings.Repository { return fakeSettings{m.s} }

func (m *fakeRepoManager) Habits(dbx.DBTX) habits.Repository { return fakeHabits{m.s} }

func (m *fakeRepoManager) HabitEntries(dbx.DBTX) habitentries.Repository { return fakeEntries{m.s} }

// --- users ---

type fakeUsers struct{ s *memStore }

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if err := f.s.hit("users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range f.s.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrorConflict
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	f.s.users[c.ID] = &c
	return &c, nil
}

func (f fakeUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	if err := f.s.hit("users.GetUserByLogin"); err != nil {
		return nil, err
	}
	for _, u := range f.s.users {
		if u.UserName == login {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if err := f.s.hit("users.GetUserByID"); err != nil {
		return nil, err
	}
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

// --- refresh tokens ---

type fakeTokens struct{ s *memStore }

func (f fakeTokens) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	if err := f.s.hit("tokens.Create"); err != nil {
		return err
	}
	f.s.tokens[token] = &models.RefreshToken{ID: uuid.NewString(), UserID: userID, Token: token, Expires: expiresAt}
	return nil
}

func (f fakeTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if err := f.s.hit("tokens.Find"); err != nil {
		return nil, err
	}
	t, ok := f.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	if f.s.afterTokenFind != nil {
		f.s.afterTokenFind()
	}
	return &c, nil
}

func (f fakeTokens) Delete(_ context.Context, token string) (bool, error) {
	if err := f.s.hit("tokens.Delete"); err != nil {
		return false, err
	}
	_, ok := f.s.tokens[token]
	delete(f.s.tokens, token)
	return ok, nil
}

func (f fakeTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if err := f.s.hit("tokens.DeleteExpired"); err != nil {
		return 0, err
	}
	var n int64
	for k, t := range f.s.tokens {
		if t.Expires.Before(now) {
			delete(f.s.tokens, k)
			n++
		}
	}
	return n, nil
}

// --- modules ---

type fakeModules struct{ s *memStore }

func (f fakeModules) List(context.Context) ([]models.Module, error) {
	return append([]models.Module(nil), f.s.modules...), nil
}

func (f fakeModules) Get(_ context.Context, name string) (*models.Module, error) {
	for _, m := range f.s.modules {
		if m.Name == name {
			c := m
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeModules) Insert(_ context.Context, m models.Module) (bool, error) {
	if _, err := f.Get(context.Background(), m.Name); err == nil {
		return false, nil
	}
	f.s.modules = append(f.s.modules, m)
	return true, nil
}

// --- settings ---

type fakeSettings struct{ s *memStore }

func (f fakeSettings) ListByUser(_ context.Context, userID string) ([]models.UserSetting, error) {
	if err := f.s.hit("settings.ListByUser"); err != nil {
		return nil, err
	}
	out := []models.UserSetting{}
	for _, us := range f.s.settings {
		if us.UserID == userID {
			out = append(out, *us)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ModuleName < out[j].ModuleName
	})
	return out, nil
}

func (f fakeSettings) GetByModule(_ context.Context, userID, moduleName string) (*models.UserSetting, error) {
	for _, us := range f.s.settings {
		if us.UserID == userID && us.ModuleName == moduleName {
			c := *us
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeSettings) GetByID(_ context.Context, userID, id string) (*models.UserSetting, error) {
	if err := f.s.hit("settings.GetByID"); err != nil {
		return nil, err
	}
	us, ok := f.s.settings[id]
	if !ok || us.UserID != userID {
		return nil, common.ErrorNotFound
	}
	c := *us
	return &c, nil
}

func (f fakeSettings) Create(ctx context.Context, us *models.UserSetting) (*models.UserSetting, error) {
	if err := f.s.hit("settings.Create"); err != nil {
		return nil, err
	}
	if _, err := f.GetByModule(ctx, us.UserID, us.ModuleName); err == nil {
		return nil, common.ErrorConflict
	}
	c := *us
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	f.s.settings[c.ID] = &c
	out := c
	return &out, nil
}

func (f fakeSettings) Update(_ context.Context, userID, id string, p models.UserSettingPatch) (*models.UserSetting, error) {
	if err := f.s.hit("settings.Update"); err != nil {
		return nil, err
	}
	us, ok := f.s.settings[id]
	if !ok || us.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if p.Enabled != nil {
		us.Enabled = *p.Enabled
	}
	if p.DisplayOrder != nil {
		us.DisplayOrder = *p.DisplayOrder
	}
	if p.Settings != nil {
		us.Settings = p.Settings
	}
	us.UpdatedAt = time.Now()
	c := *us
	return &c, nil
}

func (f fakeSettings) Delete(_ context.Context, userID, id string) error {
	if err := f.s.hit("settings.Delete"); err != nil {
		return err
	}
	us, ok := f.s.settings[id]
	if !ok || us.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.s.settings, id)
	return nil
}

func (f fakeSettings) InitializeForUser(ctx context.Context, userID string) (int64, error) {
	if err := f.s.hit("settings.InitializeForUser"); err != nil {
		return 0, err
	}
	var n int64
	for _, m := range f.s.modules {
		if _, err := f.GetByModule(ctx, userID, m.Name); err == nil {
			continue
		}
		us := &models.UserSetting{
			ID: uuid.NewString(), UserID: userID, ModuleName: m.Name, Enabled: true,
			DisplayOrder: m.DisplayOrder, Settings: m.DefaultSettings,
		}
		f.s.settings[us.ID] = us
		n++
	}
	return n, nil
}

// --- habits ---

type fakeHabits struct{ s *memStore }

func (f fakeHabits) ListByUser(_ context.Context, userID string) ([]models.Habit, error) {
	if err := f.s.hit("habits.ListByUser"); err != nil {
		return nil, err
	}
	out := []models.Habit{}
	for _, h := range f.s.habits {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeHabits) Get(_ context.Context, id string) (*models.Habit, error) {
	if err := f.s.hit("habits.Get"); err != nil {
		return nil, err
	}
	h, ok := f.s.habits[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *h
	if f.s.afterHabitGet != nil {
		f.s.afterHabitGet()
	}
	return &c, nil
}

func (f fakeHabits) Create(_ context.Context, h *models.Habit) (*models.Habit, error) {
	if err := f.s.hit("habits.Create"); err != nil {
		return nil, err
	}
	c := *h
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.BestStreak = max(c.BestStreak, c.Streak)
	f.s.habits[c.ID] = &c
	out := c
	return &out, nil
}

func (f fakeHabits) Update(_ context.Context, id string, p models.HabitPatch) (*models.Habit, error) {
	if err := f.s.hit("habits.Update"); err != nil {
		return nil, err
	}
	h, ok := f.s.habits[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Description != nil {
		h.Description = p.Description
	}
	if p.Frequency != nil {
		h.Frequency = *p.Frequency
	}
	if p.TimeOfDay != nil {
		h.TimeOfDay = p.TimeOfDay
	}
	best := h.BestStreak
	if p.BestStreak != nil {
		best = *p.BestStreak
	}
	if p.Streak != nil {
		h.Streak = *p.Streak
	}
	h.BestStreak = max(best, h.Streak)
	out := *h
	return &out, nil
}

func (f fakeHabits) Delete(_ context.Context, id string) error {
	if err := f.s.hit("habits.Delete"); err != nil {
		return err
	}
	if _, ok := f.s.habits[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.habits, id)
	for k, e := range f.s.entries {
		if e.HabitID == id {
			delete(f.s.entries, k)
		}
	}
	return nil
}

func (f fakeHabits) IncrementStreak(_ context.Context, id string) (*models.Habit, error) {
	if err := f.s.hit("habits.IncrementStreak"); err != nil {
		return nil, err
	}
	h, ok := f.s.habits[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	h.Streak++
	h.BestStreak = max(h.BestStreak, h.Streak)
	c := *h
	return &c, nil
}

func (f fakeHabits) DecrementStreak(_ context.Context, id string) error {
	if err := f.s.hit("habits.DecrementStreak"); err != nil {
		return err
	}
	if h, ok := f.s.habits[id]; ok && h.Streak > 0 {
		h.Streak--
	}
	return nil
}

// --- habit entries ---

type fakeEntries struct{ s *memStore }

func (f fakeEntries) Create(_ context.Context, e *models.HabitEntry) (*models.HabitEntry, error) {
	if err := f.s.hit("entries.Create"); err != nil {
		return nil, err
	}
	c := *e
	c.ID = uuid.NewString()
	f.s.entries[c.ID] = &c
	out := c
	return &out, nil
}

func (f fakeEntries) Get(_ context.Context, id string) (*models.HabitEntry, error) {
	if err := f.s.hit("entries.Get"); err != nil {
		return nil, err
	}
	e, ok := f.s.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f fakeEntries) Delete(_ context.Context, id string) error {
	if err := f.s.hit("entries.Delete"); err != nil {
		return err
	}
	if _, ok := f.s.entries[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.entries, id)
	return nil
}

func (f fakeEntries) list(keep func(*models.HabitEntry) bool) []models.HabitEntry {
	out := []models.HabitEntry{}
	for _, e := range f.s.entries {
		if keep(e) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out
}

func (f fakeEntries) ListByUser(_ context.Context, userID string) ([]models.HabitEntry, error) {
	if err := f.s.hit("entries.ListByUser"); err != nil {
		return nil, err
	}
	return f.list(func(e *models.HabitEntry) bool { return e.UserID == userID }), nil
}

func (f fakeEntries) ListByUserBetween(_ context.Context, userID string, from, to time.Time) ([]models.HabitEntry, error) {
	if err := f.s.hit("entries.ListByUserBetween"); err != nil {
		return nil, err
	}
	return f.list(func(e *models.HabitEntry) bool {
		return e.UserID == userID && !e.CompletedAt.Before(from) && !e.CompletedAt.After(to)
	}), nil
}

func (f fakeEntries) ListByHabit(_ context.Context, habitID string) ([]models.HabitEntry, error) {
	if err := f.s.hit("entries.ListByHabit"); err != nil {
		return nil, err
	}
	return f.list(func(e *models.HabitEntry) bool { return e.HabitID == habitID }), nil
}
