// Package codec converts a plaintext password into the form stored in the
// accounts table and checks a presented password against that form.
//
// Three interchangeable strategies exist, selected by configuration:
//
//   - plaintext: stores the password as is. No confidentiality at all; it
//     exists as a baseline and for local experiments only.
//   - bcrypt: salted, deliberately slow one-way hash. The password cannot be
//     recovered from the stored form. This is the recommended mode.
//   - pgp: PostgreSQL pgcrypto symmetric encryption with a process-wide key.
//     Reversible: anyone holding the key can recover every password, so it
//     is strictly weaker than bcrypt.
package codec

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secrets/internal/dbx"
)

const (
	KindPlaintext = "plaintext"
	KindBcrypt    = "bcrypt"
	KindPGP       = "pgp"
)

var (
	ErrEmptySecret   = errors.New("empty secret")
	ErrSecretTooLong = errors.New("secret too long")
	ErrUnavailable   = errors.New("crypto primitive unavailable")
	ErrUnknownCodec  = errors.New("unknown codec")
)

// Codec encodes passwords for storage and verifies candidates against the
// stored form. Implementations are safe for concurrent use.
type Codec interface {
	Name() string
	Encode(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, stored string) (bool, error)
}

// Decoder is implemented by reversible codecs only.
type Decoder interface {
	Decode(ctx context.Context, stored string) (string, error)
}

// Error is returned for every codec failure. A false Verify result is not
// an error.
type Error struct {
	Codec string
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("codec %s %s: %v", e.Codec, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(codec, op string, err error) *Error {
	return &Error{Codec: codec, Op: op, Err: err}
}

// Options carries the settings of every codec kind; each kind reads only
// its own fields.
type Options struct {
	BcryptCost int
	DB         dbx.DBTX
	Key        string
}

// New builds the codec of the given kind.
func New(kind string, opts Options) (Codec, error) {
	switch kind {
	case KindPlaintext:
		return NewPlaintext(), nil
	case KindBcrypt:
		return NewBcrypt(opts.BcryptCost)
	case KindPGP:
		return NewPGP(opts.DB, opts.Key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, kind)
	}
}
