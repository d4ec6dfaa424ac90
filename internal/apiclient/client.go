// Package apiclient is the single request-sending path to the REST backend.
// It attaches the bearer token, refreshes it once on 401, and retries
// network failures once.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries a per-request uuid.
const RequestIDHeader = "X-Request-Id"

// Tokens is the part of the token store the client reads and writes.
type Tokens interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string) error
	ClearTokens() error
}

// LogoutPublisher receives the forced-logout signal.
type LogoutPublisher interface {
	PublishLogout(silent bool)
}

type noopPublisher struct{}

func (noopPublisher) PublishLogout(bool) {}

// Client sends requests relative to a base URL.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	tokens  Tokens
	log     *slog.Logger
	logout  LogoutPublisher

	refreshes singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithLogoutPublisher sets the receiver of forced-logout signals.
func WithLogoutPublisher(p LogoutPublisher) Option {
	return func(c *Client) { c.logout = p }
}

// New creates a Client for baseURL. Paths passed to Do are resolved against it,
// so baseURL should end in "/".
func New(baseURL string, tokens Tokens, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		base:    base,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		tokens:  tokens,
		log:     slog.New(slog.DiscardHandler),
		logout:  noopPublisher{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the base URL, e.g. "tasks/42/".
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
	// NoAuth sends the request without a bearer token and skips the refresh protocol.
	NoAuth bool
}

// Response is a completed 2xx exchange with its body read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into out. An empty body leaves out untouched.
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Do sends req. On a 401 it runs the refresh protocol and retries the request
// once with the new token; a second 401 is returned to the caller.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, sent, err := c.send(ctx, req, "")
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized || req.NoAuth {
		return checkStatus(resp)
	}

	token, err := c.refreshFor(ctx, sent, newAPIError(resp.Status, resp.Body))
	if err != nil {
		return nil, err
	}

	resp, _, err = c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	return checkStatus(resp)
}

// Get sends a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch sends a PATCH with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete sends a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.call(ctx, &Request{Method: http.MethodDelete, Path: path}, nil)
}

func (c *Client) call(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// GetList sends a GET to a list endpoint and normalizes the response shape.
func GetList[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return Page[T]{}, err
	}
	return DecodeList[T](resp.Body)
}

func checkStatus(resp *Response) (*Response, error) {
	if resp.Status >= 200 && resp.Status < 300 {
		return resp, nil
	}
	return nil, newAPIError(resp.Status, resp.Body)
}

// send performs one exchange, retrying once on a transport failure.
// token overrides the stored access token and any explicit Authorization header.
// It returns the access token the request carried.
func (c *Client) send(ctx context.Context, req *Request, token string) (*Response, string, error) {
	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, sent, err := c.exchange(ctx, req, body, token)
		if err == nil {
			return resp, sent, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		lastErr = err
		c.log.Debug("network error", "method", req.Method, "path", req.Path, "attempt", attempt+1, "error", err)
	}
	return nil, "", fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, req.Path, lastErr)
}

func (c *Client) exchange(ctx context.Context, req *Request, body []byte, token string) (*Response, string, error) {
	u := c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(req.Path, "/")})
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), reader)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, reqID)

	var sent string
	if !req.NoAuth {
		switch explicit := httpReq.Header.Get("Authorization"); {
		case token != "":
			sent = token
		case explicit != "":
			sent = strings.TrimPrefix(explicit, "Bearer ")
		default:
			sent = c.tokens.AccessToken()
		}
		if sent != "" && (token != "" || httpReq.Header.Get("Authorization") == "") {
			(&oauth2.Token{AccessToken: sent, TokenType: "Bearer"}).SetAuthHeader(httpReq)
		}
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", err
	}
	defer httpResp.Body.Close()

	b, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"duration", time.Since(start),
		"request_id", reqID,
		"retried", token != "",
	)
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: b}, sent, nil
}

// refreshFor returns the access token a 401'd request should be retried with.
// Concurrent callers holding the same refresh token share one refresh call.
func (c *Client) refreshFor(ctx context.Context, sent string, cause error) (string, error) {
	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		c.forceLogout("no refresh token")
		return "", fmt.Errorf("%w: %w", ErrNoRefreshToken, cause)
	}

	// Another request already refreshed since this one was sent.
	if cur := c.tokens.AccessToken(); cur != "" && cur != sent {
		return cur, nil
	}

	v, err, shared := c.refreshes.Do(refresh, func() (any, error) {
		if cur := c.tokens.AccessToken(); cur != "" && cur != sent {
			return cur, nil
		}
		return c.refresh(context.WithoutCancel(ctx), refresh)
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.log.Debug("joined in-flight token refresh")
	}
	return v.(string), nil
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (c *Client) refresh(ctx context.Context, refresh string) (string, error) {
	c.log.Info("refreshing access token")

	resp, _, err := c.send(ctx, &Request{
		Method: http.MethodPost,
		Path:   "token/refresh/",
		Body:   map[string]string{"refresh": refresh},
		NoAuth: true,
	}, "")
	if err == nil {
		resp, err = checkStatus(resp)
	}

	var out refreshResponse
	if err == nil {
		err = resp.Decode(&out)
	}
	if err == nil && out.Access == "" {
		err = errors.New("refresh response without access token")
	}
	if err != nil {
		c.log.Info("token refresh failed", "error", err)
		c.forceLogout("refresh failed")
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	if err := c.tokens.SetTokens(out.Access, out.Refresh); err != nil {
		c.log.Warn("persist refreshed token", "error", err)
	}
	c.log.Info("access token refreshed")
	return out.Access, nil
}

// forceLogout clears the session and publishes a silent logout.
// Nothing is published when the session is already empty.
func (c *Client) forceLogout(reason string) {
	if c.tokens.AccessToken() == "" && c.tokens.RefreshToken() == "" {
		return
	}
	c.log.Warn("forcing logout", "reason", reason)
	_ = c.tokens.ClearTokens()
	c.logout.PublishLogout(true)
}
