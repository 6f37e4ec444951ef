package settings

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

const columns = `id, user_id, module_name, enabled, display_order, settings, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSetting(s scanner) (*models.UserSetting, error) {
	var (
		us  models.UserSetting
		raw []byte
	)
	err := s.Scan(&us.ID, &us.UserID, &us.ModuleName, &us.Enabled, &us.DisplayOrder, &raw, &us.CreatedAt, &us.UpdatedAt)
	if err != nil {
		return nil, err
	}
	us.Settings = raw
	return &us, nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.UserSetting, error) {
	us, err := scanSetting(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return us, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.UserSetting, error) {
	query := `
		SELECT ` + columns + `
		FROM user_settings
		WHERE user_id = $1
		ORDER BY display_order, module_name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.UserSetting, 0)
	for rows.Next() {
		us, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *us)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByModule(ctx context.Context, userID, moduleName string) (*models.UserSetting, error) {
	query := `
		SELECT ` + columns + `
		FROM user_settings
		WHERE user_id = $1 AND module_name = $2
	`
	return r.queryOne(ctx, query, userID, moduleName)
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.UserSetting, error) {
	query := `
		SELECT ` + columns + `
		FROM user_settings
		WHERE id = $1 AND user_id = $2
	`
	return r.queryOne(ctx, query, id, userID)
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.UserSetting) (*models.UserSetting, error) {
	query := `
		INSERT INTO user_settings (user_id, module_name, enabled, display_order, settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + columns

	us, err := scanSetting(r.db.QueryRowContext(ctx, query,
		s.UserID, s.ModuleName, s.Enabled, s.DisplayOrder, jsonArg(s.Settings)))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return us, nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.UserSettingPatch) (*models.UserSetting, error) {
	query := `
		UPDATE user_settings
		SET enabled = COALESCE($3, enabled),
		    display_order = COALESCE($4, display_order),
		    settings = COALESCE($5::jsonb, settings),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + columns

	var enabled, order, settings any
	if patch.Enabled != nil {
		enabled = *patch.Enabled
	}
	if patch.DisplayOrder != nil {
		order = *patch.DisplayOrder
	}
	if patch.Settings != nil {
		settings = string(patch.Settings)
	}
	return r.queryOne(ctx, query, id, userID, enabled, order, settings)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM user_settings
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
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

func (r *PostgresRepository) InitializeForUser(ctx context.Context, userID string) (int64, error) {
	query := `
		INSERT INTO user_settings (user_id, module_name, enabled, display_order, settings)
		SELECT $1, name, TRUE, display_order, default_settings
		FROM modules
		ON CONFLICT (user_id, module_name) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// jsonArg turns a raw JSON blob into a text parameter; empty means "{}".
func jsonArg(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
