package common

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "secrets_session"

// OAuthStateCookieName holds the CSRF state of a federated login round trip.
const OAuthStateCookieName = "secrets_oauth_state"

// ProviderGoogle is the idsource tag stored for Google accounts.
const ProviderGoogle = "Google"
