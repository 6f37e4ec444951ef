package models

import "time"

type Habit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Frequency   string    `json:"frequency"`
	TimeOfDay   *string   `json:"timeOfDay"`
	Streak      int       `json:"streak"`
	BestStreak  int       `json:"bestStreak"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HabitPatch carries the optional fields of a habit edit. Nil means "leave
// the stored value alone".
type HabitPatch struct {
	Title       *string
	Description *string
	Frequency   *string
	TimeOfDay   *string
	Streak      *int
	BestStreak  *int
}

// HabitEntry records one completion of a habit.
type HabitEntry struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habitId"`
	UserID      string    `json:"userId"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completedAt"`
	Notes       *string   `json:"notes"`
}
