package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &models.Session{ID: "live", AccountID: 1, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "old", AccountID: 2, ExpiresAt: now.Add(-time.Minute)}))

	got, err := repo.Find(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.AccountID)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Find(ctx, "old")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Delete(ctx, "live"))
	require.NoError(t, repo.Delete(ctx, "live"))
	_, err = repo.Find(ctx, "live")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
