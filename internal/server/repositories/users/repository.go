// Package users stores account records for the identity layer.
package users

import (
	"context"

	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in ID and CreatedAt. A taken username
	// yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
