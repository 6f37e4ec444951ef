package modules

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

type scanner interface {
	Scan(dest ...any) error
}

func scanModule(s scanner) (models.Module, error) {
	var (
		m        models.Module
		settings []byte
	)
	if err := s.Scan(&m.Name, &m.Title, &m.Description, &m.Icon, &m.IsSystem, &m.DisplayOrder, &settings); err != nil {
		return m, err
	}
	m.DefaultSettings = settings
	return m, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Module, error) {
	query := `
		SELECT name, title, description, icon, is_system, display_order, default_settings
		FROM modules
		ORDER BY display_order, name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, name string) (*models.Module, error) {
	query := `
		SELECT name, title, description, icon, is_system, display_order, default_settings
		FROM modules
		WHERE name = $1
	`
	m, err := scanModule(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &m, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, m models.Module) (bool, error) {
	query := `
		INSERT INTO modules (name, title, description, icon, is_system, display_order, default_settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING
	`
	settings := string(m.DefaultSettings)
	if settings == "" {
		settings = "{}"
	}
	res, err := r.db.ExecContext(ctx, query, m.Name, m.Title, m.Description, m.Icon, m.IsSystem, m.DisplayOrder, settings)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
