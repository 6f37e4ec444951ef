// Package habitentries persists habit completion records.
package habitentries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.HabitEntry) (*models.HabitEntry, error)
	Get(ctx context.Context, id string) (*models.HabitEntry, error)
	Delete(ctx context.Context, id string) error

	ListByUser(ctx context.Context, userID string) ([]models.HabitEntry, error)
	// ListByUserBetween returns entries with from <= completed_at <= to.
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]models.HabitEntry, error)
	ListByHabit(ctx context.Context, habitID string) ([]models.HabitEntry, error)
}
