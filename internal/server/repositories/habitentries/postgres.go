package habitentries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const columns = `id, habit_id, user_id, completed, completed_at, notes`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.HabitEntry, error) {
	e := &models.HabitEntry{}
	if err := s.Scan(&e.ID, &e.HabitID, &e.UserID, &e.Completed, &e.CompletedAt, &e.Notes); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.HabitEntry) (*models.HabitEntry, error) {
	query := `
		INSERT INTO habit_entries (habit_id, user_id, completed, completed_at, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + columns

	created, err := scanEntry(r.db.QueryRowContext(ctx, query, e.HabitID, e.UserID, e.Completed, e.CompletedAt, e.Notes))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.HabitEntry, error) {
	query := `
		SELECT ` + columns + `
		FROM habit_entries
		WHERE id = $1
	`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM habit_entries
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

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.HabitEntry, error) {
	query := `
		SELECT ` + columns + `
		FROM habit_entries
		WHERE user_id = $1
		ORDER BY completed_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]models.HabitEntry, error) {
	query := `
		SELECT ` + columns + `
		FROM habit_entries
		WHERE user_id = $1 AND completed_at >= $2 AND completed_at <= $3
		ORDER BY completed_at DESC
	`
	return r.list(ctx, query, userID, from, to)
}

func (r *PostgresRepository) ListByHabit(ctx context.Context, habitID string) ([]models.HabitEntry, error) {
	query := `
		SELECT ` + columns + `
		FROM habit_entries
		WHERE habit_id = $1
		ORDER BY completed_at DESC
	`
	return r.list(ctx, query, habitID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.HabitEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.HabitEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
