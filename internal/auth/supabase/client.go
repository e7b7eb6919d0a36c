// Package supabase is the thin adapter for the identity provider's auth API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TokenResponse is the decoded PKCE exchange payload.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}

// User is the provider's user object nested in the exchange response.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Metadata returns a string metadata field, or "" when absent or not a string.
func (u User) Metadata(key string) string {
	if u.UserMetadata == nil {
		return ""
	}
	if v, ok := u.UserMetadata[key].(string); ok {
		return v
	}
	return ""
}

// Client calls the Supabase auth endpoints.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// New constructs a Client. The timeout bounds the whole exchange call; a
// timeout surfaces to the caller as an exchange failure.
func New(baseURL, anonKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// AuthorizeURL builds the provider-facing authorize URL for the PKCE flow.
func (c *Client) AuthorizeURL(provider, redirectTo, challenge, prompt string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	q.Set("flow_type", "pkce")
	q.Set("prompt", prompt)
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

// ExchangeCodeForToken swaps an authorization code plus PKCE verifier for
// provider tokens and the user profile. Non-2xx responses are returned as
// errors, never swallowed.
func (c *Client) ExchangeCodeForToken(ctx context.Context, code, verifier string) (*TokenResponse, error) {
	body, err := json.Marshal(map[string]string{
		"auth_code":     code,
		"code_verifier": verifier,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal exchange request: %w", err)
	}

	endpoint := c.baseURL + "/auth/v1/token?grant_type=pkce"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("token exchange returned %d: %s", res.StatusCode, string(snippet))
	}

	var tok TokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode exchange response: %w", err)
	}
	return &tok, nil
}
