package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/server/models"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]models.Session)}
}

func (r *MemoryRepository) Create(_ context.Context, s *models.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.mu.Lock()
	r.sessions[s.ID] = *s
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
