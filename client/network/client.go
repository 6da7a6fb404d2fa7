package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/cbodonnell/reels/pkg/log"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/shopspring/decimal"
)

const (
	DefaultAuthorityURL = "http://localhost:8000"
	DefaultTimeout      = 10 * time.Second

	SpinPath = "/api/spin/"

	HeaderCSRFToken = "X-CSRFToken"
	HeaderRequestID = "X-Request-ID"
)

type Config struct {
	// BaseURL is the authority's root, e.g. http://localhost:8000.
	BaseURL string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// CSRFCookie names the cookie carrying the anti-forgery token.
	CSRFCookie string
	// Tokens overrides the cookie token source.
	Tokens TokenSource
	// Reels and Rows are the machine's shape. When both are set, a result
	// grid of any other shape is rejected as a *TransportError.
	Reels int
	Rows  int
}

// Client talks to the outcome authority. It holds the session cookies.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	timeout    time.Duration
	reels      int
	rows       int
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAuthorityURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CSRFCookie == "" {
		cfg.CSRFCookie = DefaultCSRFCookie
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authority url: %v", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("authority url %q must be absolute", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %v", err)
	}

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = &CookieTokenSource{Jar: jar, URL: baseURL, Name: cfg.CSRFCookie}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar:       jar,
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
		tokens:  tokens,
		timeout: cfg.Timeout,
		reels:   cfg.Reels,
		rows:    cfg.Rows,
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

// Bootstrap loads the authority's index page so the session and CSRF
// cookies are set before the first spin.
func (c *Client) Bootstrap(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/"), nil)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap request: %v", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("bootstrap failed: %s", resp.Status)}
	}
	if c.tokens.Token() == "" {
		log.Warn("Authority at %s did not set a CSRF token", c.baseURL)
	}
	return nil
}

// RequestSpin places one bet and returns the authority's outcome. It makes a
// single attempt. Failures of any kind before a response is decoded are
// returned as *TransportError.
func (c *Client) RequestSpin(ctx context.Context, bet decimal.Decimal) (*SpinResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(&SpinRequest{BetSize: bet.StringFixed(2)})
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to encode spin request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(SpinPath), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create spin request: %w", err)}
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set(HeaderCSRFToken, token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read spin response: %w", err)}
	}
	log.Debug("Spin request %s answered %d in %s", requestID, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errResp := &errorResponse{}
		if err := json.Unmarshal(b, errResp); err != nil || errResp.Error == "" {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("status: %s, body: %s", resp.Status, string(b))}
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: errResp.Error, Err: fmt.Errorf("status: %s", resp.Status)}
	}

	spin, err := DecodeSpinResponse(b)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	if c.reels > 0 && c.rows > 0 {
		if err := spin.Validate(c.reels, c.rows); err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
	}
	return spin, nil
}
