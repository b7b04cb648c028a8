package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/dbx"
	"github.com/dmitrijs2005/secrets/internal/server/models"
)

const accountColumns = `id, email, password, externalid, idsource, secret, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (email, password, externalid, idsource)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		account.Email, account.StoredSecret, account.ExternalID, account.IDSource).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("account %q: %w", account.Email, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByExternalID(ctx context.Context, provider, externalID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE externalid = $1 AND idsource = $2`
	return r.getOne(ctx, query, externalID, provider)
}

func (r *PostgresRepository) SetSecret(ctx context.Context, id int64, secret string) error {
	query := `UPDATE accounts SET secret = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, secret, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListSecrets(ctx context.Context) ([]string, error) {
	query := `SELECT secret FROM accounts WHERE secret IS NOT NULL ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	secrets := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		secrets = append(secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return secrets, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	var (
		a                            models.Account
		externalID, idSource, secret sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&a.ID, &a.Email, &a.StoredSecret, &externalID, &idSource, &secret, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.ExternalID = nullToPtr(externalID)
	a.IDSource = nullToPtr(idSource)
	a.Secret = nullToPtr(secret)
	return &a, nil
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
