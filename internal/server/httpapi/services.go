package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/server/gate"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/services"
)

// Users is the identity side of the API, implemented by services.UserService.
type Users interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, username, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UserIDFromToken(token string) (string, error)
	AccessTokenTTL() time.Duration
}

// Settings is implemented by services.SettingsService.
type Settings interface {
	Modules() []models.Module
	List(ctx context.Context, userID string) ([]models.UserSetting, error)
	GetByModule(ctx context.Context, userID, moduleName string) (*models.UserSetting, error)
	Create(ctx context.Context, userID string, in services.CreateSettingInput) (*models.UserSetting, error)
	Update(ctx context.Context, userID, id string, patch models.UserSettingPatch) (*models.UserSetting, error)
	Delete(ctx context.Context, userID, id string) error
	Snapshot(ctx context.Context, userID string) (gate.Snapshot, error)
}

// Habits is implemented by services.HabitService.
type Habits interface {
	Location() *time.Location
	ListHabits(ctx context.Context, userID string) ([]models.Habit, error)
	GetHabit(ctx context.Context, userID, id string) (*models.Habit, error)
	CreateHabit(ctx context.Context, userID string, in services.CreateHabitInput) (*models.Habit, error)
	UpdateHabit(ctx context.Context, userID, id string, in services.UpdateHabitInput) (*models.Habit, error)
	DeleteHabit(ctx context.Context, userID, id string) error
	ListEntriesForHabit(ctx context.Context, userID, habitID string) ([]models.HabitEntry, error)
	ListEntriesForUser(ctx context.Context, userID string, date *time.Time) ([]models.HabitEntry, error)
	CompleteHabit(ctx context.Context, userID string, in services.CompleteHabitInput) (*models.HabitEntry, error)
	DeleteHabitEntry(ctx context.Context, userID, entryID string) (bool, error)
}

var (
	_ Users    = (*services.UserService)(nil)
	_ Settings = (*services.SettingsService)(nil)
	_ Habits   = (*services.HabitService)(nil)
)
