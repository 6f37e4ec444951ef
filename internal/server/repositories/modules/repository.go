// Package modules persists the feature-module catalog.
package modules

import (
	"context"

	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

type Repository interface {
	// List returns every module ordered by display order, then name.
	List(ctx context.Context) ([]models.Module, error)
	Get(ctx context.Context, name string) (*models.Module, error)
	// Insert adds m unless a module with the same name exists. It reports
	// whether a row was written.
	Insert(ctx context.Context, m models.Module) (bool, error)
}
