package habits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/dbx"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `id, user_id, title, description, frequency, time_of_day, streak, best_streak, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (*models.Habit, error) {
	h := &models.Habit{}
	err := s.Scan(&h.ID, &h.UserID, &h.Title, &h.Description, &h.Frequency, &h.TimeOfDay, &h.Streak, &h.BestStreak, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Habit, error) {
	h, err := scanHabit(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return h, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Habit, error) {
	query := `
		SELECT ` + columns + `
		FROM habits
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Habit, error) {
	query := `
		SELECT ` + columns + `
		FROM habits
		WHERE id = $1
	`
	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) Create(ctx context.Context, h *models.Habit) (*models.Habit, error) {
	query := `
		INSERT INTO habits (user_id, title, description, frequency, time_of_day, streak, best_streak)
		VALUES ($1, $2, $3, $4, $5, $6, GREATEST($7::int, $6::int))
		RETURNING ` + columns

	return r.queryOne(ctx, query,
		h.UserID, h.Title, h.Description, h.Frequency, h.TimeOfDay, h.Streak, h.BestStreak)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, p models.HabitPatch) (*models.Habit, error) {
	query := `
		UPDATE habits
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    frequency = COALESCE($4, frequency),
		    time_of_day = COALESCE($5, time_of_day),
		    streak = COALESCE($6::int, streak),
		    best_streak = GREATEST(COALESCE($7::int, best_streak), COALESCE($6::int, streak))
		WHERE id = $1
		RETURNING ` + columns

	return r.queryOne(ctx, query,
		id, p.Title, p.Description, p.Frequency, p.TimeOfDay, p.Streak, p.BestStreak)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM habits
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) IncrementStreak(ctx context.Context, id string) (*models.Habit, error) {
	query := `
		UPDATE habits
		SET streak = streak + 1,
		    best_streak = GREATEST(best_streak, streak + 1)
		WHERE id = $1
		RETURNING ` + columns

	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) DecrementStreak(ctx context.Context, id string) error {
	query := `
		UPDATE habits
		SET streak = streak - 1
		WHERE id = $1 AND streak > 0
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
