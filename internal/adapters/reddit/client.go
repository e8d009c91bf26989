// Package reddit implements the forum port against the Reddit OAuth API.
package reddit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/flairbot/internal/ports/secondary"
)

// Default endpoints.
const (
	DefaultBaseURL  = "https://oauth.reddit.com"
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
)

// maxErrorBody bounds how much of an error response is kept in a PlatformError.
const maxErrorBody = 512

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	BaseURL   string
	TokenURL  string
	UserAgent string

	Username     string
	Password     string
	ClientID     string
	ClientSecret string

	// RequestsPerMinute paces every API call. Zero disables pacing.
	RequestsPerMinute int
	Timeout           time.Duration

	// HTTPClient supplies the base transport. If nil, http.DefaultTransport is used.
	HTTPClient *http.Client
	// Logger is used for request tracing. If nil, logging is disabled.
	Logger *zap.Logger
}

// Client is an authenticated Reddit API client for a single bot account.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a Client. No request is made until the first call;
// the access token is fetched lazily and renewed on expiry.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.TokenURL == "" {
		config.TokenURL = DefaultTokenURL
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("reddit: invalid base URL %q: %w", config.BaseURL, err)
	}
	if config.UserAgent == "" {
		return nil, fmt.Errorf("reddit: user agent is required")
	}
	if config.Username == "" || config.ClientID == "" {
		return nil, fmt.Errorf("reddit: username and client id are required")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var base http.RoundTripper = http.DefaultTransport
	if config.HTTPClient != nil && config.HTTPClient.Transport != nil {
		base = config.HTTPClient.Transport
	}
	base = &userAgentTransport{base: base, userAgent: config.UserAgent}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: newAuthenticatedClient(config, base),
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the transport's pool.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// get performs a paced GET with raw_json=1 and returns the response body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("raw_json", "1")
	return c.doRequest(ctx, http.MethodGet, path, query, nil)
}

// post performs a paced form-encoded POST and returns the response body.
func (c *Client) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.doRequest(ctx, http.MethodPost, path, nil, form)
}

// doRequest performs an HTTP request and maps failures onto the port's
// error taxonomy: 403 wraps secondary.ErrForbidden, anything else that is
// not a 2xx is a *secondary.PlatformError.
func (c *Client) doRequest(ctx context.Context, method, path string, query, form url.Values) ([]byte, error) {
	op := method + " " + path

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, &secondary.PlatformError{Op: op, Message: "failed to create request", Err: err}
	}
	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return nil, &secondary.PlatformError{Op: op, Message: "request failed", Err: err}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &secondary.PlatformError{Op: op, StatusCode: response.StatusCode, Message: "failed to read response body", Err: err}
	}

	c.logger.Debug("reddit request",
		zap.String("op", op),
		zap.Int("status", response.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	switch {
	case response.StatusCode >= 200 && response.StatusCode < 300:
		return responseBody, nil
	case response.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", op, secondary.ErrForbidden)
	default:
		return nil, &secondary.PlatformError{
			Op:         op,
			StatusCode: response.StatusCode,
			Message:    truncate(strings.TrimSpace(string(responseBody)), maxErrorBody),
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ secondary.ForumClient = (*Client)(nil)
