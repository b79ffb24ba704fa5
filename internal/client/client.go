// Package client talks to the provider Backend API over HTTP. Every call goes
// through a circuit breaker so a down server fails fast instead of stalling
// each command for the full timeout.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"supplierledger/internal/apierror"
	"supplierledger/internal/config"
	"supplierledger/internal/infra"
	"supplierledger/internal/ledger"
	"supplierledger/internal/logger"

	"github.com/rs/zerolog"
)

// Error is a non-2xx answer from the Backend API.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
	Fields     map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend api: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// ServerDetail is the server's own message, if it sent one.
func (e *Error) ServerDetail() string {
	return e.Detail
}

// Is maps a 404 on a provider resource to ledger.ErrProviderNotFound.
func (e *Error) Is(target error) bool {
	return target == ledger.ErrProviderNotFound &&
		e.StatusCode == http.StatusNotFound &&
		strings.HasPrefix(e.Path, "/providers/")
}

// Client implements ledger.ProviderAPI.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *infra.CircuitBreaker
	log        zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (e.g. an httptest server's).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *infra.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// New returns a client for the API rooted at baseURL (".../v1").
func New(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.WithComponent("api-client"),
	}
	cbCfg := infra.DefaultCBConfig()
	cbCfg.IsFailure = IsServerFailure
	cbCfg.OnStateChange = func(from, to infra.CBState) {
		c.log.Warn().Str("from", from.String()).Str("to", to.String()).Str("base_url", c.baseURL).Msg("backend api circuit changed state")
	}
	c.breaker = infra.NewCircuitBreaker(cbCfg)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from API_BASE_URL, API_TOKEN and API_TIMEOUT_SECONDS.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	return New(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout(), opts...)
}

// IsServerFailure reports whether err means the server is unhealthy: a
// transport error or a 5xx. Client errors (4xx) do not count.
func IsServerFailure(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled)
}

// BreakerState exposes the circuit breaker state for diagnostics.
func (c *Client) BreakerState() infra.CBState {
	return c.breaker.State()
}

func (c *Client) ListProviders(ctx context.Context) ([]ledger.Provider, error) {
	var out []ledger.Provider
	err := c.do(ctx, http.MethodGet, "/providers", nil, &out)
	return out, err
}

// ListActiveProviders returns only active providers.
func (c *Client) ListActiveProviders(ctx context.Context) ([]ledger.Provider, error) {
	var out []ledger.Provider
	err := c.do(ctx, http.MethodGet, "/providers/active", nil, &out)
	return out, err
}

// SearchProviders runs the server-side search (name, document, email, city, contact).
func (c *Client) SearchProviders(ctx context.Context, q string) ([]ledger.Provider, error) {
	var out []ledger.Provider
	err := c.do(ctx, http.MethodGet, "/providers/search?q="+url.QueryEscape(q), nil, &out)
	return out, err
}

func (c *Client) GetProvider(ctx context.Context, id uint) (ledger.Provider, error) {
	var out ledger.Provider
	err := c.do(ctx, http.MethodGet, providerPath(id), nil, &out)
	return out, err
}

func (c *Client) CreateProvider(ctx context.Context, in ledger.ProviderInput) (ledger.Provider, error) {
	var out ledger.Provider
	err := c.do(ctx, http.MethodPost, "/providers", in, &out)
	return out, err
}

func (c *Client) UpdateProvider(ctx context.Context, id uint, in ledger.ProviderInput) (ledger.Provider, error) {
	var out ledger.Provider
	err := c.do(ctx, http.MethodPut, providerPath(id), in, &out)
	return out, err
}

// DeactivateProvider is a logical delete.
func (c *Client) DeactivateProvider(ctx context.Context, id uint) (ledger.Provider, error) {
	var out ledger.Provider
	err := c.do(ctx, http.MethodDelete, providerPath(id), nil, &out)
	return out, err
}

func (c *Client) ActivateProvider(ctx context.Context, id uint) (ledger.Provider, error) {
	var out ledger.Provider
	err := c.do(ctx, http.MethodPatch, providerPath(id)+"/activate", nil, &out)
	return out, err
}

// Cities returns the distinct non-empty cities, ascending.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, http.MethodGet, "/providers/cities", nil, &out)
	return out, err
}

// Countries returns the distinct non-empty countries, ascending.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, http.MethodGet, "/providers/countries", nil, &out)
	return out, err
}

func providerPath(id uint) string {
	return fmt.Sprintf("/providers/%d", id)
}

// do sends one request through the breaker and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend api: marshal %s %s: %w", method, path, err)
		}
	}

	start := time.Now()
	var status int
	err := c.breaker.Execute(func() error {
		var err error
		status, err = c.roundTrip(ctx, method, path, payload, out)
		return err
	})
	if errors.Is(err, infra.ErrCircuitOpen) {
		c.log.Warn().Str("method", method).Str("path", path).Msg("backend api circuit open")
		return fmt.Errorf("backend api: %s %s: %w", method, path, err)
	}

	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("backend api call")
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, out interface{}) (int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("backend api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("backend api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeError(resp, method, path)
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("backend api: decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response, method, path string) error {
	apiErr := &Error{Method: method, Path: stripQuery(path), StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope apierror.APIError
	if json.Unmarshal(raw, &envelope) == nil {
		apiErr.Detail = envelope.Detail
		apiErr.Fields = envelope.Fields
	}
	return apiErr
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

var _ ledger.ProviderAPI = (*Client)(nil)
