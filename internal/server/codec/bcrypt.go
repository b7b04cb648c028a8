package codec

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the salt rounds the service has always used.
const DefaultBcryptCost = 10

// BcryptMaxSecretLen is the longest password, in bytes, bcrypt will hash.
const BcryptMaxSecretLen = 72

// Bcrypt hashes passwords with a per-password random salt.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt codec. A zero cost selects DefaultBcryptCost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

func (b *Bcrypt) Name() string { return KindBcrypt }

func (b *Bcrypt) Cost() int { return b.cost }

func (b *Bcrypt) Encode(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", newError(KindBcrypt, "encode", ErrEmptySecret)
	}
	if len(plaintext) > BcryptMaxSecretLen {
		return "", newError(KindBcrypt, "encode", ErrSecretTooLong)
	}
	if err := ctx.Err(); err != nil {
		return "", newError(KindBcrypt, "encode", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", newError(KindBcrypt, "encode", err)
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(ctx context.Context, plaintext, stored string) (bool, error) {
	if plaintext == "" {
		return false, newError(KindBcrypt, "verify", ErrEmptySecret)
	}
	if err := ctx.Err(); err != nil {
		return false, newError(KindBcrypt, "verify", err)
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, newError(KindBcrypt, "verify", err)
	}
}
