package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lifekeeper/internal/dbx"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/habitentries"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/habits"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/modules"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/settings"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same code against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Modules(db dbx.DBTX) modules.Repository
	Settings(db dbx.DBTX) settings.Repository
	Habits(db dbx.DBTX) habits.Repository
	HabitEntries(db dbx.DBTX) habitentries.Repository
}
