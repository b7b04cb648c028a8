package federated

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/secrets/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Provider is an OAuth2 identity provider.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Assertion, error)
}

// HTTPClient allows mocking the provider's HTTP calls in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// GoogleProvider implements Provider for Google accounts. The external id is
// the OpenID "sub" claim.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: GoogleUserInfoURL,
		httpClient:  http.DefaultClient,
	}
}

// NewGoogleProviderWithEndpoint points the provider at custom token and
// userinfo endpoints. This is primarily used for testing.
func NewGoogleProviderWithEndpoint(cfg GoogleConfig, endpoint oauth2.Endpoint, userInfoURL string, client *http.Client) *GoogleProvider {
	p := NewGoogleProvider(cfg)
	p.oauth.Endpoint = endpoint
	p.userInfoURL = userInfoURL
	if client != nil {
		p.httpClient = client
	}
	return p
}

func (p *GoogleProvider) Name() string { return common.ProviderGoogle }

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token and fetches the profile
// it grants access to.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Assertion, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	return p.fetchUser(ctx, p.oauth.Client(ctx, token))
}

func (p *GoogleProvider) fetchUser(ctx context.Context, client HTTPClient) (*Assertion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API returned status %d", resp.StatusCode)
	}

	var data struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode Google user response: %w", err)
	}

	a := &Assertion{Provider: p.Name(), ExternalID: data.Sub, Email: data.Email}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
