// Package refreshtokens stores the long-lived half of a session: opaque
// tokens that can be exchanged for a new access token exactly once.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// Find returns common.ErrorNotFound for unknown tokens.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete reports whether a row was removed; unknown tokens give false.
	Delete(ctx context.Context, token string) (bool, error)

	// DeleteExpired purges tokens that expired before now and reports how many went.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
