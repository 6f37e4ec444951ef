package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/dbx"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lifekeeper/internal/timex"
	"github.com/google/uuid"
)

type CreateHabitInput struct {
	Title       string
	Description *string
	Frequency   string
	TimeOfDay   *string
	Streak      *int
	BestStreak  *int
}

// UpdateHabitInput changes only the fields that are set.
type UpdateHabitInput struct {
	Title       *string
	Description *string
	Frequency   *string
	TimeOfDay   *string
	Streak      *int
	BestStreak  *int
}

type CompleteHabitInput struct {
	HabitID     string
	Notes       *string
	CompletedAt *time.Time
}

// HabitService keeps the habit ledger: habit definitions, their completion
// entries, and the streak counters those entries move.
//
// Streaks are counters, not a function of history: completing adds one,
// deleting an entry takes one away (never below zero), and best streak only
// ever rises.
type HabitService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	loc         *time.Location
	now         func() time.Time
}

// NewHabitService builds the service. loc decides calendar days for the date
// filter; nil means time.Local.
func NewHabitService(db *sql.DB, m repomanager.RepositoryManager, loc *time.Location) *HabitService {
	if loc == nil {
		loc = time.Local
	}
	return &HabitService{db: db, repomanager: m, loc: loc, now: time.Now}
}

func (s *HabitService) Location() *time.Location { return s.loc }

func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	out, err := s.repomanager.Habits(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing habits: %w", err)
	}
	return out, nil
}

// GetHabit returns the user's habit. Someone else's habit is reported as
// common.ErrorNotFound.
func (s *HabitService) GetHabit(ctx context.Context, userID, id string) (*models.Habit, error) {
	return s.ownedHabit(ctx, s.db, userID, id)
}

func (s *HabitService) CreateHabit(ctx context.Context, userID string, in CreateHabitInput) (*models.Habit, error) {
	h := &models.Habit{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Frequency:   strings.TrimSpace(in.Frequency),
		TimeOfDay:   in.TimeOfDay,
	}
	if in.Streak != nil {
		h.Streak = *in.Streak
	}
	if in.BestStreak != nil {
		h.BestStreak = *in.BestStreak
	}
	if err := validateHabit(h); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Habits(s.db).Create(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("error creating habit: %w", err)
	}
	return created, nil
}

// UpdateHabit applies the set fields of in. Counters the caller leaves unset
// are not written, so a concurrent completion is never rolled back by an edit.
func (s *HabitService) UpdateHabit(ctx context.Context, userID, id string, in UpdateHabitInput) (*models.Habit, error) {
	if _, err := s.ownedHabit(ctx, s.db, userID, id); err != nil {
		return nil, err
	}

	patch := models.HabitPatch{
		Title:       trimmed(in.Title),
		Description: in.Description,
		Frequency:   trimmed(in.Frequency),
		TimeOfDay:   in.TimeOfDay,
		Streak:      in.Streak,
		BestStreak:  in.BestStreak,
	}
	if err := validateHabitPatch(patch); err != nil {
		return nil, err
	}

	updated, err := s.repomanager.Habits(s.db).Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("error updating habit: %w", err)
	}
	return updated, nil
}

// DeleteHabit removes the habit and, through the schema, its entries.
func (s *HabitService) DeleteHabit(ctx context.Context, userID, id string) error {
	if _, err := s.ownedHabit(ctx, s.db, userID, id); err != nil {
		return err
	}
	if err := s.repomanager.Habits(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting habit: %w", err)
	}
	return nil
}

func (s *HabitService) ListEntriesForHabit(ctx context.Context, userID, habitID string) ([]models.HabitEntry, error) {
	if _, err := s.ownedHabit(ctx, s.db, userID, habitID); err != nil {
		return nil, err
	}
	out, err := s.repomanager.HabitEntries(s.db).ListByHabit(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return out, nil
}

// ListEntriesForUser returns the user's entries, newest first. With date set
// only entries inside that calendar day (in the service location, both ends
// inclusive) are returned.
func (s *HabitService) ListEntriesForUser(ctx context.Context, userID string, date *time.Time) ([]models.HabitEntry, error) {
	repo := s.repomanager.HabitEntries(s.db)

	var (
		out []models.HabitEntry
		err error
	)
	if date != nil {
		from, to := timex.DayBounds(*date, s.loc)
		out, err = repo.ListByUserBetween(ctx, userID, from, to)
	} else {
		out, err = repo.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return out, nil
}

// CompleteHabit records a completion and bumps the streak in one
// transaction. A habit that is missing or owned by someone else yields
// common.ErrorForbidden and nothing is written.
func (s *HabitService) CompleteHabit(ctx context.Context, userID string, in CompleteHabitInput) (*models.HabitEntry, error) {
	if !validID(in.HabitID) {
		return nil, common.ErrorForbidden
	}

	completedAt := s.now()
	if in.CompletedAt != nil {
		completedAt = *in.CompletedAt
	}

	var entry *models.HabitEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		habitsRepo := s.repomanager.Habits(tx)

		h, err := habitsRepo.Get(ctx, in.HabitID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorForbidden
			}
			return fmt.Errorf("error loading habit: %w", err)
		}
		if h.UserID != userID {
			return common.ErrorForbidden
		}

		e, err := s.repomanager.HabitEntries(tx).Create(ctx, &models.HabitEntry{
			HabitID:     h.ID,
			UserID:      userID,
			Completed:   true,
			CompletedAt: completedAt,
			Notes:       in.Notes,
		})
		if err != nil {
			return fmt.Errorf("error creating entry: %w", err)
		}

		if _, err := habitsRepo.IncrementStreak(ctx, h.ID); err != nil {
			return fmt.Errorf("error updating streak: %w", err)
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteHabitEntry removes one of the user's entries and takes one off its
// habit's streak, in one transaction. It reports false, with nothing changed,
// when the entry is missing or belongs to someone else. Best streak is left
// alone.
func (s *HabitService) DeleteHabitEntry(ctx context.Context, userID, entryID string) (bool, error) {
	if !validID(entryID) {
		return false, nil
	}

	deleted := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		entriesRepo := s.repomanager.HabitEntries(tx)

		e, err := entriesRepo.Get(ctx, entryID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return fmt.Errorf("error loading entry: %w", err)
		}
		if e.UserID != userID {
			return nil
		}

		if err := entriesRepo.Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("error deleting entry: %w", err)
		}
		if err := s.repomanager.Habits(tx).DecrementStreak(ctx, e.HabitID); err != nil {
			return fmt.Errorf("error updating streak: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *HabitService) ownedHabit(ctx context.Context, db dbx.DBTX, userID, id string) (*models.Habit, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	h, err := s.repomanager.Habits(db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading habit: %w", err)
	}
	if h.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return h, nil
}

func validateHabit(h *models.Habit) error {
	switch {
	case h.Title == "":
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	case h.Frequency == "":
		return fmt.Errorf("%w: frequency is required", common.ErrorValidation)
	case h.Streak < 0 || h.BestStreak < 0:
		return fmt.Errorf("%w: streaks cannot be negative", common.ErrorValidation)
	}
	return nil
}

func validateHabitPatch(p models.HabitPatch) error {
	switch {
	case p.Title != nil && *p.Title == "":
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	case p.Frequency != nil && *p.Frequency == "":
		return fmt.Errorf("%w: frequency is required", common.ErrorValidation)
	case p.Streak != nil && *p.Streak < 0, p.BestStreak != nil && *p.BestStreak < 0:
		return fmt.Errorf("%w: streaks cannot be negative", common.ErrorValidation)
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}
