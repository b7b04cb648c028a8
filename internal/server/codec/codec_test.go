package codec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c, err := New(KindPlaintext, Options{})
	require.NoError(t, err)
	assert.Equal(t, KindPlaintext, c.Name())

	c, err = New(KindBcrypt, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, c.(*Bcrypt).Cost())

	c, err = New(KindPGP, Options{DB: db, Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, KindPGP, c.Name())

	_, err = New("rot13", Options{})
	assert.ErrorIs(t, err, ErrUnknownCodec)

	_, err = New(KindBcrypt, Options{BcryptCost: bcrypt.MaxCost + 1})
	assert.Error(t, err)

	_, err = New(KindPGP, Options{DB: db})
	assert.Error(t, err)

	_, err = New(KindPGP, Options{Key: "k"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCodecs_VerifyAcceptsOnlyEncodedSecret(t *testing.T) {
	ctx := context.Background()
	bc, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	for _, c := range []Codec{NewPlaintext(), bc} {
		t.Run(c.Name(), func(t *testing.T) {
			for _, secret := range []string{"pw1", "Hello123", "ünïcødé pass"} {
				stored, err := c.Encode(ctx, secret)
				require.NoError(t, err)

				ok, err := c.Verify(ctx, secret, stored)
				require.NoError(t, err)
				assert.True(t, ok)

				for _, other := range []string{secret + "x", "wrong", stored + "1"} {
					ok, err := c.Verify(ctx, other, stored)
					require.NoError(t, err)
					assert.False(t, ok, "verify(%q) against %q", other, secret)
				}
			}
		})
	}
}

func TestCodecs_EmptySecret(t *testing.T) {
	ctx := context.Background()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	bc, _ := NewBcrypt(bcrypt.MinCost)
	pgp, _ := NewPGP(db, "k")

	for _, c := range []Codec{NewPlaintext(), bc, pgp} {
		_, err := c.Encode(ctx, "")
		var cerr *Error
		require.ErrorAs(t, err, &cerr, c.Name())
		assert.ErrorIs(t, err, ErrEmptySecret)
		assert.Equal(t, "encode", cerr.Op)

		_, err = c.Verify(ctx, "", "stored")
		assert.ErrorIs(t, err, ErrEmptySecret)
	}
}

func TestBcrypt_IsSaltedAndIrreversible(t *testing.T) {
	ctx := context.Background()
	bc, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	a, err := bc.Encode(ctx, "pw1")
	require.NoError(t, err)
	b, err := bc.Encode(ctx, "pw1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "pw1")

	var _ Codec = bc
	_, reversible := any(bc).(Decoder)
	assert.False(t, reversible)
}

func TestBcrypt_MalformedHash(t *testing.T) {
	bc, _ := NewBcrypt(bcrypt.MinCost)
	_, err := bc.Verify(context.Background(), "pw1", "not-a-hash")

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindBcrypt, cerr.Codec)
}

func TestBcrypt_SecretTooLong(t *testing.T) {
	ctx := context.Background()
	bc, _ := NewBcrypt(bcrypt.MinCost)

	_, err := bc.Encode(ctx, strings.Repeat("a", BcryptMaxSecretLen+1))
	assert.ErrorIs(t, err, ErrSecretTooLong)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "encode", cerr.Op)

	hash, err := bc.Encode(ctx, strings.Repeat("a", BcryptMaxSecretLen))
	require.NoError(t, err)
	ok, err := bc.Verify(ctx, strings.Repeat("a", BcryptMaxSecretLen), hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBcrypt_CancelledContext(t *testing.T) {
	bc, _ := NewBcrypt(bcrypt.MinCost)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bc.Encode(ctx, "pw1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = bc.Verify(ctx, "pw1", "$2a$04$abc")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestError_Message(t *testing.T) {
	err := newError(KindPGP, "decode", errors.New("wrong key"))
	assert.Equal(t, "codec pgp decode: wrong key", err.Error())
}
