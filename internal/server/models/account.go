package models

import "time"

// Account is a persisted user identity.
//
// StoredSecret is opaque outside the codec package: a raw password, a bcrypt
// hash or an armored pgp message depending on the configured codec.
// ExternalID and IDSource are set together for federated accounts.
type Account struct {
	ID           int64
	Email        string
	StoredSecret string
	ExternalID   *string
	IDSource     *string
	Secret       *string
	CreatedAt    time.Time
}

// IsFederated reports whether the account was created through an identity
// provider.
func (a *Account) IsFederated() bool {
	return a.ExternalID != nil && a.IDSource != nil
}
