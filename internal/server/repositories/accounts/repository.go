// Package accounts is the credential store: it persists accounts and their
// stored secrets.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/secrets/internal/server/models"
)

// Repository persists accounts. Lookups return common.ErrorNotFound when
// nothing matches; Create returns common.ErrorAlreadyExists when the email or
// the external identity is already taken.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByExternalID(ctx context.Context, provider, externalID string) (*models.Account, error)
	SetSecret(ctx context.Context, id int64, secret string) error
	ListSecrets(ctx context.Context) ([]string, error)
}
