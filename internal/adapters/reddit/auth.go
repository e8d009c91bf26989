package reddit

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// passwordTokenSource obtains script-app tokens with the password grant.
// The grant issues no refresh token, so every renewal repeats the grant.
type passwordTokenSource struct {
	ctx      context.Context // carries the oauth2.HTTPClient used for token requests
	config   *oauth2.Config
	username string
	password string
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	return s.config.PasswordCredentialsToken(s.ctx, s.username, s.password)
}

// newAuthenticatedClient returns an HTTP client that attaches a bearer token
// to every request, re-acquiring it through base when it expires.
func newAuthenticatedClient(config ClientConfig, base http.RoundTripper) *http.Client {
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
		Transport: base,
		Timeout:   config.Timeout,
	})

	source := oauth2.ReuseTokenSource(nil, &passwordTokenSource{
		ctx: tokenCtx,
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  config.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		username: config.Username,
		password: config.Password,
	})

	return &http.Client{
		Transport: &oauth2.Transport{Source: source, Base: base},
		Timeout:   config.Timeout,
	}
}

// userAgentTransport sets the User-Agent the platform requires on every
// request, token requests included.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

func (t *userAgentTransport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if c, ok := t.base.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}
