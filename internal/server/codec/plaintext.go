package codec

import (
	"context"
	"crypto/subtle"
)

// Plaintext stores passwords unchanged.
type Plaintext struct{}

func NewPlaintext() *Plaintext { return &Plaintext{} }

func (p *Plaintext) Name() string { return KindPlaintext }

func (p *Plaintext) Encode(_ context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", newError(KindPlaintext, "encode", ErrEmptySecret)
	}
	return plaintext, nil
}

func (p *Plaintext) Verify(_ context.Context, plaintext, stored string) (bool, error) {
	if plaintext == "" {
		return false, newError(KindPlaintext, "verify", ErrEmptySecret)
	}
	return subtle.ConstantTimeCompare([]byte(plaintext), []byte(stored)) == 1, nil
}

func (p *Plaintext) Decode(_ context.Context, stored string) (string, error) {
	return stored, nil
}
