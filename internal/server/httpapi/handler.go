// Package httpapi is the HTTP surface of the server: form posts for local
// login and registration, the Google OAuth redirect pair and the secret-note
// endpoints. Responses are JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/logging"
	"github.com/dmitrijs2005/secrets/internal/server/federated"
	"github.com/dmitrijs2005/secrets/internal/server/services"
	"github.com/gorilla/sessions"
)

const (
	tokenKey      = "token"
	stateKey      = "state"
	stateMaxAge   = 300
	secretsPath   = "/secrets"
	registerPath  = "/register"
	oauthStateLen = 16
)

// AccountService is the subset of services.AccountService used by handlers.
type AccountService interface {
	Register(ctx context.Context, email, secret string) (*services.AuthResult, error)
	Login(ctx context.Context, email, secret string) (*services.AuthResult, error)
	LoginFederated(ctx context.Context, a *federated.Assertion) (*services.AuthResult, error)
	Logout(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (int64, bool)
	SubmitSecret(ctx context.Context, accountID int64, text string) error
	ListSecrets(ctx context.Context) ([]string, error)
}

type Options struct {
	// Google is nil when Google login is not configured.
	Google             federated.Provider
	GenericLoginErrors bool
	// SessionMaxAge is the cookie lifetime in seconds.
	SessionMaxAge int
}

type Handler struct {
	accounts      AccountService
	cookies       sessions.Store
	google        federated.Provider
	generic       bool
	maxAge        int
	sessionCookie string
	stateCookie   string
	log           logging.Logger
}

func NewHandler(accounts AccountService, cookies sessions.Store, log logging.Logger, opts Options) *Handler {
	return &Handler{
		accounts:      accounts,
		cookies:       cookies,
		google:        opts.Google,
		generic:       opts.GenericLoginErrors,
		maxAge:        opts.SessionMaxAge,
		sessionCookie: common.SessionCookieName,
		stateCookie:   common.OAuthStateCookieName,
		log:           log,
	}
}

type authResponse struct {
	AccountID int64  `json:"account_id"`
	Token     string `json:"token"`
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ok(w, map[string]string{"service": "secrets", "status": "ok"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fail(w, ErrBadRequest)
		return
	}

	res, err := h.accounts.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		fail(w, registrationError(err))
		return
	}

	h.setSessionCookie(w, r, res.Token)
	created(w, authResponse{AccountID: res.AccountID, Token: res.Token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fail(w, ErrBadRequest)
		return
	}

	res, err := h.accounts.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		fail(w, loginError(err, h.generic))
		return
	}

	h.setSessionCookie(w, r, res.Token)
	ok(w, authResponse{AccountID: res.AccountID, Token: res.Token})
}

// OAuthStart redirects to Google with a fresh state kept in a short-lived
// cookie.
func (h *Handler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		fail(w, ErrNotFound.WithMessage("google login is not configured"))
		return
	}

	state, err := common.MakeRandHexString(oauthStateLen)
	if err != nil {
		h.log.Error(r.Context(), "failed to generate oauth state", "error", err)
		fail(w, ErrInternal)
		return
	}

	session, _ := h.cookies.Get(r, h.stateCookie)
	session.Values[stateKey] = state
	session.Options.MaxAge = stateMaxAge
	session.Options.HttpOnly = true
	session.Options.Secure = r.TLS != nil
	session.Options.SameSite = http.SameSiteLaxMode
	if err := session.Save(r, w); err != nil {
		h.log.Error(r.Context(), "failed to save oauth state", "error", err)
		fail(w, ErrInternal)
		return
	}

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// OAuthCallback finishes Google login. Success lands on /secrets, any
// failure on /register.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		fail(w, ErrNotFound.WithMessage("google login is not configured"))
		return
	}

	if err := h.oauthCallback(w, r); err != nil {
		h.log.Warn(r.Context(), "google login failed", "error", err)
		http.Redirect(w, r, registerPath, http.StatusFound)
		return
	}
	http.Redirect(w, r, secretsPath, http.StatusFound)
}

func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return errors.New("provider error: " + e)
	}
	code := q.Get("code")
	if code == "" {
		return errors.New("missing authorization code")
	}

	session, _ := h.cookies.Get(r, h.stateCookie)
	saved, _ := session.Values[stateKey].(string)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	if saved == "" || saved != q.Get("state") {
		return errors.New("invalid oauth state")
	}

	assertion, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		return err
	}

	res, err := h.accounts.LoginFederated(r.Context(), assertion)
	if err != nil {
		return err
	}

	h.setSessionCookie(w, r, res.Token)
	return nil
}

// Logout always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	_ = h.accounts.Logout(r.Context(), h.token(r))

	session, _ := h.cookies.Get(r, h.sessionCookie)
	delete(session.Values, tokenKey)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)

	ok(w, map[string]bool{"logged_out": true})
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	id, authenticated := h.accounts.CurrentSession(r.Context(), h.token(r))
	if !authenticated {
		ok(w, map[string]bool{"anonymous": true})
		return
	}
	ok(w, map[string]int64{"account_id": id})
}

func (h *Handler) Secrets(w http.ResponseWriter, r *http.Request) {
	secrets, err := h.accounts.ListSecrets(r.Context())
	if err != nil {
		fail(w, ErrInternal)
		return
	}
	ok(w, map[string][]string{"secrets": secrets})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fail(w, ErrBadRequest)
		return
	}

	id, _ := AccountIDFromContext(r.Context())
	if err := h.accounts.SubmitSecret(r.Context(), id, r.PostFormValue("secret")); err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			fail(w, ErrBadRequest.WithMessage("secret must not be empty"))
		case errors.Is(err, common.ErrorUnauthorized):
			fail(w, ErrUnauthorized)
		default:
			fail(w, ErrInternal)
		}
		return
	}
	ok(w, map[string]bool{"submitted": true})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	session, _ := h.cookies.Get(r, h.sessionCookie)
	session.Values[tokenKey] = token
	session.Options.MaxAge = h.maxAge
	session.Options.HttpOnly = true
	session.Options.Secure = r.TLS != nil
	session.Options.SameSite = http.SameSiteLaxMode
	if err := session.Save(r, w); err != nil {
		h.log.Error(r.Context(), "failed to save session cookie", "error", err)
	}
}
