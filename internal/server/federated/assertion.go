// Package federated turns a third-party identity provider's answer into an
// Assertion the account service can trust. The signature/token exchange with
// the provider happens here; account matching happens in services.
package federated

import (
	"errors"
	"fmt"
)

var ErrMalformedAssertion = errors.New("malformed identity assertion")

// Assertion is a provider-verified claim about an external identity.
type Assertion struct {
	Provider   string
	ExternalID string
	Email      string
}

func (a *Assertion) Validate() error {
	switch {
	case a == nil:
		return ErrMalformedAssertion
	case a.Provider == "":
		return fmt.Errorf("%w: missing provider", ErrMalformedAssertion)
	case a.ExternalID == "":
		return fmt.Errorf("%w: missing external id", ErrMalformedAssertion)
	case a.Email == "":
		return fmt.Errorf("%w: missing email", ErrMalformedAssertion)
	}
	return nil
}
