package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/dbx"
	"github.com/dmitrijs2005/lifekeeper/internal/server/auth"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/repomanager"
)

const (
	DemoUsername = "demo"
	DemoPassword = "password"
)

func strPtr(s string) *string { return &s }

// demoHabits is the sample ledger a demo account starts with.
func demoHabits() []models.Habit {
	return []models.Habit{
		{Title: "Morning meditation", Description: strPtr("10 minutes of mindfulness"), Frequency: "daily", TimeOfDay: strPtr("morning"), Streak: 5, BestStreak: 12},
		{Title: "Read 30 minutes", Description: strPtr("Read a book before bed"), Frequency: "daily", TimeOfDay: strPtr("evening"), Streak: 3, BestStreak: 21},
		{Title: "Exercise", Description: strPtr("Workout or a long walk"), Frequency: "weekdays", TimeOfDay: strPtr("morning"), Streak: 2, BestStreak: 9},
		{Title: "Journal writing", Description: strPtr("Write down three things that went well"), Frequency: "daily", TimeOfDay: strPtr("evening"), Streak: 0, BestStreak: 4},
		{Title: "Drink 8 glasses of water", Frequency: "daily", TimeOfDay: strPtr("anytime"), Streak: 7, BestStreak: 7},
		{Title: "Weekly review", Description: strPtr("Review goals and plan the week"), Frequency: "weekly", TimeOfDay: strPtr("afternoon"), Streak: 1, BestStreak: 6},
	}
}

// SeedDemo creates the demo account with its settings and sample habits. It
// reports false without touching anything when the account already exists.
func SeedDemo(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager) (bool, error) {
	_, err := m.Users(db).GetUserByLogin(ctx, DemoUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, fmt.Errorf("error looking up demo user: %w", err)
	}

	hash, salt := auth.HashPassword(DemoPassword)
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := m.Users(tx).Create(ctx, &models.User{
			UserName:     DemoUsername,
			Name:         strPtr("Demo User"),
			Email:        strPtr("demo@example.com"),
			PasswordHash: hash,
			Salt:         salt,
		})
		if err != nil {
			return fmt.Errorf("error creating demo user: %w", err)
		}
		if _, err := m.Settings(tx).InitializeForUser(ctx, u.ID); err != nil {
			return fmt.Errorf("error initializing demo settings: %w", err)
		}
		habitsRepo := m.Habits(tx)
		for _, h := range demoHabits() {
			h.UserID = u.ID
			if _, err := habitsRepo.Create(ctx, &h); err != nil {
				return fmt.Errorf("error creating demo habit %q: %w", h.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
