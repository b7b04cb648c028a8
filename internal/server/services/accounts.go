// Package services contains server-side business logic. AccountService
// implements local login, registration, federated login and the secret-note
// operations on top of the account repository, the active codec and the
// session manager.
package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/dbx"
	"github.com/dmitrijs2005/secrets/internal/logging"
	"github.com/dmitrijs2005/secrets/internal/server/codec"
	"github.com/dmitrijs2005/secrets/internal/server/federated"
	"github.com/dmitrijs2005/secrets/internal/server/metrics"
	"github.com/dmitrijs2005/secrets/internal/server/models"
	"github.com/dmitrijs2005/secrets/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secrets/internal/server/sessions"
)

// placeholderSecretSize is the number of random bytes behind the stored
// secret of a federated account. Nobody knows it, so password login to such
// an account always fails.
const placeholderSecretSize = 32

// AuthResult is returned by every successful authentication.
type AuthResult struct {
	AccountID int64
	Token     string
}

type txRunner func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       codec.Codec
	sessions    *sessions.Manager
	log         logging.Logger
	metrics     *metrics.Metrics
	inTx        txRunner
}

// NewAccountService wires the service. db may be nil when the repository
// manager does not need a database (in-memory mode); transactions are then
// skipped.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, c codec.Codec, sm *sessions.Manager, log logging.Logger, met *metrics.Metrics) *AccountService {
	s := &AccountService{
		db:          db,
		repomanager: m,
		codec:       c,
		sessions:    sm,
		log:         log,
		metrics:     met,
	}
	s.inTx = func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		if s.db == nil {
			return fn(ctx, nil)
		}
		return dbx.WithTx(ctx, s.db, nil, fn)
	}
	return s
}

// Register creates a local account and logs it in. An email that is already
// taken yields common.ErrorAlreadyExists, including when two registrations
// race and the database constraint decides the winner.
func (s *AccountService) Register(ctx context.Context, email, secret string) (*AuthResult, error) {
	if email == "" || secret == "" {
		s.metrics.Registration(metrics.OutcomeError)
		return nil, common.ErrorValidation
	}

	var accountID int64
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return common.ErrorAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error looking up account: %w", err)
		}

		stored, err := s.codec.Encode(ctx, secret)
		if err != nil {
			if errors.Is(err, codec.ErrSecretTooLong) {
				return common.ErrSecretTooLong
			}
			return err
		}

		account, err := repo.Create(ctx, &models.Account{Email: email, StoredSecret: stored})
		if err != nil {
			return err
		}
		accountID = account.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.metrics.Registration(metrics.OutcomeConflict)
			return nil, common.ErrorAlreadyExists
		}
		if errors.Is(err, common.ErrSecretTooLong) {
			s.metrics.Registration(metrics.OutcomeError)
			return nil, common.ErrSecretTooLong
		}
		s.metrics.Registration(metrics.OutcomeError)
		s.log.Error(ctx, "registration failed", "email", email, "error", err)
		return nil, common.ErrorInternal
	}

	s.metrics.Registration(metrics.OutcomeCreated)
	s.log.Info(ctx, "account registered", "account_id", accountID)

	return s.establish(ctx, accountID, metrics.MethodLocal)
}

// Login verifies email and secret against the stored account. It returns
// common.ErrAccountNotFound or common.ErrBadSecret for recoverable failures
// and common.ErrorInternal for storage or codec faults, which are logged and
// never returned raw.
func (s *AccountService) Login(ctx context.Context, email, secret string) (*AuthResult, error) {
	if email == "" || secret == "" {
		s.metrics.AuthAttempt(metrics.MethodLocal, metrics.OutcomeRejected)
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.AuthAttempt(metrics.MethodLocal, metrics.OutcomeNotFound)
			return nil, common.ErrAccountNotFound
		}
		return nil, s.fault(ctx, metrics.MethodLocal, "account lookup failed", err)
	}

	ok, err := s.codec.Verify(ctx, secret, account.StoredSecret)
	if err != nil {
		return nil, s.fault(ctx, metrics.MethodLocal, "secret verification failed", err)
	}
	if !ok {
		s.metrics.AuthAttempt(metrics.MethodLocal, metrics.OutcomeRejected)
		return nil, common.ErrBadSecret
	}

	return s.establish(ctx, account.ID, metrics.MethodLocal)
}

// LoginFederated logs in the account linked to a provider identity, creating
// it on first use. Accounts are matched by (provider, external id) only; a
// local account holding the same email is never linked implicitly, and the
// resulting email conflict is reported as common.ErrorInternal.
func (s *AccountService) LoginFederated(ctx context.Context, a *federated.Assertion) (*AuthResult, error) {
	if err := a.Validate(); err != nil {
		return nil, s.fault(ctx, metrics.MethodFederated, "rejected identity assertion", err)
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByExternalID(ctx, a.Provider, a.ExternalID)
	switch {
	case err == nil:
		return s.establish(ctx, account.ID, metrics.MethodFederated)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.fault(ctx, metrics.MethodFederated, "account lookup failed", err)
	}

	stored, err := s.encodePlaceholder(ctx)
	if err != nil {
		return nil, s.fault(ctx, metrics.MethodFederated, "placeholder encoding failed", err)
	}

	externalID, provider := a.ExternalID, a.Provider
	account, err = repo.Create(ctx, &models.Account{
		Email:        a.Email,
		StoredSecret: stored,
		ExternalID:   &externalID,
		IDSource:     &provider,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// A concurrent first login for the same identity may have won.
			if existing, lookupErr := repo.GetByExternalID(ctx, a.Provider, a.ExternalID); lookupErr == nil {
				return s.establish(ctx, existing.ID, metrics.MethodFederated)
			}
		}
		return nil, s.fault(ctx, metrics.MethodFederated, "federated account creation failed", err)
	}

	s.metrics.Registration(metrics.OutcomeCreated)
	s.log.Info(ctx, "federated account created", "account_id", account.ID, "provider", a.Provider)

	return s.establish(ctx, account.ID, metrics.MethodFederated)
}

// Logout ends the session behind token. It always succeeds from the
// caller's point of view; store failures are logged.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	terminated, err := s.sessions.Terminate(ctx, token)
	if err != nil {
		s.log.Warn(ctx, "session termination failed", "error", err)
		return nil
	}
	if terminated {
		s.metrics.SessionEvent("terminated", 1)
	}
	return nil
}

// CurrentSession resolves token to an account id. Any problem, including a
// store failure, resolves to anonymous.
func (s *AccountService) CurrentSession(ctx context.Context, token string) (int64, bool) {
	id, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		s.log.Error(ctx, "session lookup failed", "error", err)
		return 0, false
	}
	return id, ok
}

// SubmitSecret stores a secret note on the account.
func (s *AccountService) SubmitSecret(ctx context.Context, accountID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return common.ErrorValidation
	}

	if err := s.repomanager.Accounts(s.db).SetSecret(ctx, accountID, text); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		s.log.Error(ctx, "failed to store secret", "account_id", accountID, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// ListSecrets returns every submitted secret note without account ids.
func (s *AccountService) ListSecrets(ctx context.Context) ([]string, error) {
	secrets, err := s.repomanager.Accounts(s.db).ListSecrets(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to list secrets", "error", err)
		return nil, common.ErrorInternal
	}
	return secrets, nil
}

// PurgeExpiredSessions removes expired session records. The session sweeper
// calls it periodically.
func (s *AccountService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	s.metrics.SessionEvent("purged", int(n))
	return n, nil
}

// --- helpers below ---

func (s *AccountService) establish(ctx context.Context, accountID int64, method string) (*AuthResult, error) {
	token, err := s.sessions.Establish(ctx, accountID)
	if err != nil {
		return nil, s.fault(ctx, method, "session establishment failed", err)
	}
	s.metrics.AuthAttempt(method, metrics.OutcomeAccepted)
	s.metrics.SessionEvent("established", 1)
	return &AuthResult{AccountID: accountID, Token: token}, nil
}

// encodePlaceholder encodes a random secret for a federated account. The
// raw bytes are wiped once encoded.
func (s *AccountService) encodePlaceholder(ctx context.Context) (string, error) {
	raw, err := common.GenerateRandByteArray(placeholderSecretSize)
	if err != nil {
		return "", fmt.Errorf("error generating placeholder: %w", err)
	}
	defer common.WipeByteArray(raw)

	return s.codec.Encode(ctx, hex.EncodeToString(raw))
}

func (s *AccountService) fault(ctx context.Context, method, msg string, err error) error {
	s.metrics.AuthAttempt(method, metrics.OutcomeError)
	s.log.Error(ctx, msg, "method", method, "error", err)
	return common.ErrorInternal
}
