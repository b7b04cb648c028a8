// Package sessions binds authenticated accounts to sessions. A session is a
// server-side record (see repositories/sessions) referenced by a signed
// token; the token alone never authenticates a request.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/logging"
	"github.com/dmitrijs2005/secrets/internal/server/auth"
	"github.com/dmitrijs2005/secrets/internal/server/models"
	sessionrepo "github.com/dmitrijs2005/secrets/internal/server/repositories/sessions"
	"github.com/google/uuid"
)

const DefaultTTL = 24 * time.Hour

type Manager struct {
	store  sessionrepo.Repository
	secret []byte
	ttl    time.Duration
	log    logging.Logger
	now    func() time.Time
	sign   func(sessionID string, accountID int64, secret []byte, expiresAt time.Time) (string, error)
}

func NewManager(store sessionrepo.Repository, secret []byte, ttl time.Duration, log logging.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, secret: secret, ttl: ttl, log: log, now: time.Now, sign: auth.GenerateToken}
}

// Establish creates a session for accountID and returns its token. It must
// only be called after the account has been authenticated.
func (m *Manager) Establish(ctx context.Context, accountID int64) (string, error) {
	now := m.now()
	s := &models.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Create(ctx, s); err != nil {
		return "", fmt.Errorf("error storing session: %w", err)
	}

	token, err := m.sign(s.ID, accountID, m.secret, s.ExpiresAt)
	if err != nil {
		if delErr := m.store.Delete(ctx, s.ID); delErr != nil {
			m.log.Warn(ctx, "failed to drop unsigned session", "session_id", s.ID, "error", delErr)
		}
		return "", fmt.Errorf("error signing session token: %w", err)
	}

	return token, nil
}

// Resolve returns the account bound to token. A token that is malformed,
// forged, expired or refers to an unknown session resolves to anonymous
// (ok == false) without an error; only store failures are returned.
func (m *Manager) Resolve(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}

	claims, err := auth.ParseToken(token, m.secret)
	if err != nil {
		return 0, false, nil
	}

	s, err := m.store.Find(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	if s.Expired(m.now()) {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			m.log.Warn(ctx, "failed to drop expired session", "session_id", s.ID, "error", err)
		}
		return 0, false, nil
	}

	if s.AccountID != claims.AccountID {
		m.log.Warn(ctx, "session account mismatch", "session_id", s.ID)
		return 0, false, nil
	}

	return s.AccountID, true, nil
}

// Terminate ends the session named by token and reports whether a live
// session record was removed. Unknown, expired and unparseable tokens are
// not errors, so calling it twice is safe.
func (m *Manager) Terminate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	claims, err := auth.ParseTokenIgnoringExpiry(token, m.secret)
	if err != nil {
		return false, nil
	}

	if _, err := m.store.Find(ctx, claims.SessionID()); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := m.store.Delete(ctx, claims.SessionID()); err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired removes expired session records from the store.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}
