// Package settings persists per-user module settings. Every method is scoped
// by user id; a record owned by someone else looks exactly like a missing one.
package settings

import (
	"context"

	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]models.UserSetting, error)
	GetByModule(ctx context.Context, userID, moduleName string) (*models.UserSetting, error)
	GetByID(ctx context.Context, userID, id string) (*models.UserSetting, error)
	// Create fails with common.ErrorConflict when the (user, module) pair exists.
	Create(ctx context.Context, s *models.UserSetting) (*models.UserSetting, error)
	Update(ctx context.Context, userID, id string, patch models.UserSettingPatch) (*models.UserSetting, error)
	Delete(ctx context.Context, userID, id string) error
	// InitializeForUser creates a default record for every catalog module the
	// user has no record for yet and returns how many were created.
	InitializeForUser(ctx context.Context, userID string) (int64, error)
}
