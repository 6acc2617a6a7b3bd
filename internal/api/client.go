// Package api is the REST client for the auth endpoints the session layer
// consumes. The backend contract is specified only at this boundary; every
// call is a plain JSON request with bearer authentication.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/classtide/classtide/internal/models"
)

var (
	// ErrUnauthenticated is returned when the server rejects the presented
	// credential (401/403) rather than failing transiently.
	ErrUnauthenticated = errors.New("not authenticated")
)

// AuthClient covers the remote session-lifecycle endpoints.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	CheckSession(ctx context.Context, accessToken string) (*SessionCheck, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	LogoutAll(ctx context.Context, accessToken string) error
}

// LoginResult is the response to a successful credential login.
type LoginResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// SessionCheck reports whether a stored token still maps to a live session.
type SessionCheck struct {
	Authenticated bool         `json:"isAuthenticated"`
	User          *models.User `json:"user,omitempty"`
}

// RefreshResult carries the rotated access token. The refresh token is
// included only when the server rotates it as well.
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the live HTTP implementation of AuthClient.
type Client struct {
	base string
	http *http.Client
}

// New creates an auth API client with the given configuration.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base: cfg.BaseURL,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	if out.User == nil || out.AccessToken == "" {
		return nil, fmt.Errorf("login response missing user or token")
	}
	return &out, nil
}

func (c *Client) CheckSession(ctx context.Context, accessToken string) (*SessionCheck, error) {
	var out SessionCheck
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/session", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	body := map[string]string{"refreshToken": refreshToken}

	var out RefreshResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", "", body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("refresh response missing access token")
	}
	return &out, nil
}

func (c *Client) LogoutAll(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout-all", accessToken, nil, nil)
}

// errorBody is the server's JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("auth api call")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthenticated
	case resp.StatusCode >= 400:
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("server error (%d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
