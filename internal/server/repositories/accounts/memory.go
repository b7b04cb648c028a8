package accounts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/server/models"
)

// MemoryRepository keeps accounts in process memory and enforces the same
// uniqueness rules as the accounts table. Used for development and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	byID     map[int64]*models.Account
	byEmail  map[string]int64
	external map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[int64]*models.Account),
		byEmail:  make(map[string]int64),
		external: make(map[string]int64),
	}
}

func externalKey(provider, externalID string) string {
	return provider + "\x00" + externalID
}

func (r *MemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[account.Email]; ok {
		return nil, fmt.Errorf("account %q: %w", account.Email, common.ErrorAlreadyExists)
	}
	var extKey string
	if account.IsFederated() {
		extKey = externalKey(*account.IDSource, *account.ExternalID)
		if _, ok := r.external[extKey]; ok {
			return nil, fmt.Errorf("external identity: %w", common.ErrorAlreadyExists)
		}
	}

	r.nextID++
	account.ID = r.nextID
	account.CreatedAt = time.Now()

	stored := *account
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	if extKey != "" {
		r.external[extKey] = stored.ID
	}
	return account, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.copyOf(id)
}

func (r *MemoryRepository) GetByExternalID(ctx context.Context, provider, externalID string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.external[externalKey(provider, externalID)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.copyOf(id)
}

func (r *MemoryRepository) SetSecret(ctx context.Context, id int64, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.Secret = &secret
	return nil
}

func (r *MemoryRepository) ListSecrets(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	secrets := []string{}
	for id := int64(1); id <= r.nextID; id++ {
		if a, ok := r.byID[id]; ok && a.Secret != nil {
			secrets = append(secrets, *a.Secret)
		}
	}
	return secrets, nil
}

// Len returns the number of stored accounts.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *MemoryRepository) copyOf(id int64) (*models.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}
