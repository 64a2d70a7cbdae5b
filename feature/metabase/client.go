package metabase

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"dbt-metabase/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	headerAPIKey  = "x-api-key"
	headerSession = "X-Metabase-Session"

	// maxErrorBody caps the response text kept in a StatusError.
	maxErrorBody = 512
)

var _ reconcile.CatalogClient = (*Client)(nil)

// Client talks to one Metabase instance.
type Client struct {
	baseURL string
	cfg     Config
	http    *http.Client
	logger  *zap.Logger

	mu      sync.Mutex
	session string

	resolve singleflight.Group
}

// NewClient creates a Metabase client based on the configuration.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("metabase url is required")
	}
	if cfg.APIKey == "" && cfg.Username == "" {
		return nil, ErrMissingCredentials
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}
	if cfg.SkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		cfg:     cfg,
		http:    &http.Client{Transport: transport, Timeout: timeoutDuration},
		logger:  logger,
	}, nil
}

// do sends one API request and decodes the JSON response into out, if non-nil.
// An expired session triggers a single re-login.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := c.send(ctx, method, path, body, out)
	if c.cfg.APIKey == "" && IsStatus(err, http.StatusUnauthorized) {
		c.logger.Debug("Metabase session expired, logging in again")
		c.mu.Lock()
		c.session = ""
		c.mu.Unlock()
		err = c.send(ctx, method, path, body, out)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := c.authenticate(ctx, req); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Metabase API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(text)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// authenticate sets the API key or session header, logging in first when needed.
func (c *Client) authenticate(ctx context.Context, req *http.Request) error {
	if c.cfg.APIKey != "" {
		req.Header.Set(headerAPIKey, c.cfg.APIKey)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == "" {
		session, err := c.login(ctx)
		if err != nil {
			return err
		}
		c.session = session
	}
	req.Header.Set(headerSession, c.session)
	return nil
}

// login opens a session with username and password.
func (c *Client) login(ctx context.Context) (string, error) {
	creds := map[string]string{"username": c.cfg.Username, "password": c.cfg.Password}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/session", creds)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("metabase login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Method: http.MethodPost, Path: "/api/session", StatusCode: resp.StatusCode}
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("metabase login: decode response: %w", err)
	}
	if session.ID == "" {
		return "", fmt.Errorf("metabase login: empty session id")
	}

	c.logger.Info("Logged in to Metabase", zap.String("username", c.cfg.Username))
	return session.ID, nil
}
