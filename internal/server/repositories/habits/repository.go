// Package habits persists habit definitions and their streak counters.
package habits

import (
	"context"

	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

type Repository interface {
	// ListByUser returns the user's habits, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Habit, error)
	// Get loads a habit by id regardless of owner; callers check ownership.
	Get(ctx context.Context, id string) (*models.Habit, error)
	Create(ctx context.Context, h *models.Habit) (*models.Habit, error)
	// Update writes only the fields set in p; columns it leaves nil keep
	// whatever value they hold at write time.
	Update(ctx context.Context, id string, p models.HabitPatch) (*models.Habit, error)
	Delete(ctx context.Context, id string) error

	// IncrementStreak adds one to the streak and lifts best_streak to match
	// in a single statement.
	IncrementStreak(ctx context.Context, id string) (*models.Habit, error)
	// DecrementStreak subtracts one from a positive streak; zero stays zero.
	DecrementStreak(ctx context.Context, id string) error
}
