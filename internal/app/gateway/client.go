// Package gateway is the typed client for the visitor-management backend API.
//
// There is one method per (resource, verb) pair. JSON is used for every
// request except visitor create/update, which are sent as multipart form
// data so the photo and ID-proof files can travel with the record.
//
// Requests to anything other than the auth endpoints carry the session's
// bearer token, injected by an oauth2 transport. All calls share a single
// fixed timeout and are never retried.
package gateway

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

	"github.com/dalemusser/visitdesk/internal/app/system/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultTimeout applies to every backend call.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response we are willing to read.
const maxBody = 8 << 20

// Config configures a Client.
type Config struct {
	BaseURL   string            // e.g. https://api.example.com/api
	Timeout   time.Duration     // zero means DefaultTimeout
	Transport http.RoundTripper // zero means http.DefaultTransport
	Logger    *zap.Logger
}

// Client talks to the backend. The zero value is not usable; use New.
// A Client is safe for concurrent use. WithToken returns a derived Client
// that shares configuration but authenticates as a particular session.
type Client struct {
	base    *url.URL
	timeout time.Duration
	rt      http.RoundTripper
	log     *zap.Logger

	anon   *http.Client // auth endpoints, never carries a token
	authed *http.Client // everything else
	token  string
}

// New constructs an unauthenticated Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway: base URL must be http or https, got %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		base:    u,
		timeout: timeout,
		rt:      rt,
		log:     logger,
		anon:    &http.Client{Transport: rt, Timeout: timeout},
	}
	c.authed = c.anon
	return c, nil
}

// WithToken returns a Client that sends token as a bearer credential on
// every non-auth request. An empty token yields an anonymous copy.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	if token == "" {
		cp.authed = c.anon
		return &cp
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	cp.authed = &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.rt},
		Timeout:   c.timeout,
	}
	return &cp
}


// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

// isAuthPath reports whether p addresses the authentication endpoints,
// which must never see a bearer token.
func isAuthPath(p string) bool {
	p = strings.TrimPrefix(p, "/")
	return p == "auth" || strings.HasPrefix(p, "auth/")
}

// call describes one backend request.
type call struct {
	op          string // resource.verb, used for logs, metrics and errors
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// envelope is the backend's standard response wrapper. Not every endpoint
// uses it; decodeEntity falls back to the bare body when Data is absent.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// do performs the request and returns the raw body of a 2xx response.
// Any failure comes back as *Error.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	resource, verb, _ := strings.Cut(cl.op, ".")
	start := time.Now()

	body, status, err := c.roundTrip(ctx, cl)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	metrics.ObserveGateway(resource, verb, outcome, elapsed)

	fields := []zap.Field{
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
	}
	switch KindOf(err) {
	case "":
		c.log.Debug("gateway call", fields...)
	case KindTransport, KindServer, KindDecode:
		c.log.Error("gateway call failed", append(fields, zap.Error(err))...)
	default:
		c.log.Info("gateway call rejected", append(fields, zap.Error(err))...)
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, cl call) ([]byte, int, error) {
	u := c.base.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), cl.body)
	if err != nil {
		return nil, 0, &Error{Kind: KindTransport, Op: cl.op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}

	hc := c.authed
	if isAuthPath(cl.path) {
		hc = c.anon
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, &Error{Kind: KindTransport, Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, resp.StatusCode, &Error{Kind: KindTransport, Status: resp.StatusCode, Op: cl.op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &Error{
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: messageFrom(raw),
			Op:      cl.op,
		}
	}

	// A 2xx can still carry success:false.
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return nil, resp.StatusCode, &Error{Kind: KindBusiness, Status: resp.StatusCode, Message: msg, Op: cl.op}
	}
	return raw, resp.StatusCode, nil
}

// messageFrom extracts a human message from an error body.
func messageFrom(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
		return ""
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 || strings.HasPrefix(s, "<") {
		return ""
	}
	return s
}

// decodeEntity unmarshals a single record, unwrapping {data: ...} when present.
func decodeEntity(op string, raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		raw = env.Data
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}

// getEntity GETs path and decodes a single record into T.
func getEntity[T any](ctx context.Context, c *Client, op, path string) (T, error) {
	var out T
	raw, err := c.do(ctx, call{op: op, method: http.MethodGet, path: path})
	if err != nil {
		return out, err
	}
	err = decodeEntity(op, raw, &out)
	return out, err
}

// sendRaw sends in as a JSON body and returns the raw 2xx response body.
func sendRaw(ctx context.Context, c *Client, op, method, path string, in any) ([]byte, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return c.do(ctx, call{
		op:          op,
		method:      method,
		path:        path,
		body:        bytes.NewReader(b),
		contentType: "application/json",
	})
}

// sendJSON sends in as a JSON body and decodes the returned record into T.
func sendJSON[T any](ctx context.Context, c *Client, op, method, path string, in any) (T, error) {
	var out T
	raw, err := sendRaw(ctx, c, op, method, path, in)
	if err != nil {
		return out, err
	}
	err = decodeEntity(op, raw, &out)
	return out, err
}

// remove issues a DELETE; the response body is ignored beyond success:false.
func remove(ctx context.Context, c *Client, op, path string) error {
	_, err := c.do(ctx, call{op: op, method: http.MethodDelete, path: path})
	return err
}
