// Package repomanager provides the PostgreSQL RepositoryManager: repository
// constructors plus goose migrations from the embedded SQL files.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lifekeeper/internal/dbx"
	"github.com/dmitrijs2005/lifekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/habitentries"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/habits"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/modules"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/settings"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Modules(db dbx.DBTX) modules.Repository {
	return modules.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Habits(db dbx.DBTX) habits.Repository {
	return habits.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) HabitEntries(db dbx.DBTX) habitentries.Repository {
	return habitentries.NewPostgresRepository(db)
}

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies every pending embedded migration.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Open connects to PostgreSQL through the pgx stdlib driver and checks the
// connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
