// Package sessions stores server-side session records. Three backends share
// one interface: PostgreSQL, Redis and process memory.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secrets/internal/server/models"
)

// Repository persists sessions. Find returns common.ErrorNotFound for an
// unknown id. Delete of an unknown id is not an error.
type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions that expired before now and reports
	// how many were removed. Backends with native expiry return 0.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
