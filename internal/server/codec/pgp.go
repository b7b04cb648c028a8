package codec

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/secrets/internal/dbx"
)

const (
	pgpEncryptQuery = `SELECT armor(pgp_sym_encrypt($1, $2))`
	pgpDecryptQuery = `SELECT pgp_sym_decrypt(dearmor($1), $2)`
)

// PGP delegates symmetric encryption to pgcrypto inside PostgreSQL. The key
// is always sent as a bound parameter.
type PGP struct {
	db  dbx.DBTX
	key string
}

func NewPGP(db dbx.DBTX, key string) (*PGP, error) {
	if db == nil {
		return nil, newError(KindPGP, "init", ErrUnavailable)
	}
	if key == "" {
		return nil, errors.New("pgp codec requires an encryption key")
	}
	return &PGP{db: db, key: key}, nil
}

func (p *PGP) Name() string { return KindPGP }

func (p *PGP) Encode(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", newError(KindPGP, "encode", ErrEmptySecret)
	}
	var armored string
	if err := p.db.QueryRowContext(ctx, pgpEncryptQuery, plaintext, p.key).Scan(&armored); err != nil {
		return "", newError(KindPGP, "encode", err)
	}
	return armored, nil
}

func (p *PGP) Decode(ctx context.Context, stored string) (string, error) {
	var plaintext string
	if err := p.db.QueryRowContext(ctx, pgpDecryptQuery, stored, p.key).Scan(&plaintext); err != nil {
		return "", newError(KindPGP, "decode", err)
	}
	return plaintext, nil
}

func (p *PGP) Verify(ctx context.Context, plaintext, stored string) (bool, error) {
	if plaintext == "" {
		return false, newError(KindPGP, "verify", ErrEmptySecret)
	}
	decoded, err := p.Decode(ctx, stored)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(plaintext), []byte(decoded)) == 1, nil
}
