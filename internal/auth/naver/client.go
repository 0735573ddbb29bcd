// Package naver integrates with the Naver identity provider: the
// authorization code exchange, the refresh grant, the profile lookup,
// and the upkeep of a user's encrypted credentials.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/config"
)

// Client calls the provider's HTTP endpoints. Both token operations are
// GET requests carrying the client credentials in the query string, as
// the Naver open API specifies.
type Client struct {
	httpClient   *http.Client
	tokenURL     string
	profileURL   string
	clientID     string
	clientSecret string
}

// NewClient builds a provider client from endpoint config and secrets.
func NewClient(provider config.ProviderConfig, secrets config.Secrets) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		tokenURL:     provider.TokenURL,
		profileURL:   provider.ProfileURL,
		clientID:     secrets.ClientID,
		clientSecret: secrets.ClientSecret,
	}
}

// TokenResponse is the subset of the provider token endpoint response
// this service consumes.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Profile is the provider's view of an authenticated user.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ExchangeCode trades an authorization code for an access/refresh token
// pair. A response without an access token is a provider rejection.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (*TokenResponse, error) {
	query := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"state":         {state},
	}

	var tok TokenResponse
	if err := c.getJSON(ctx, c.tokenURL, query, "", &tok); err != nil {
		return nil, apperr.Wrap(apperr.KindProviderToken, "provider token exchange failed", err)
	}
	if tok.AccessToken == "" {
		return nil, apperr.New(apperr.KindProviderToken, "provider returned no access token")
	}
	return &tok, nil
}

// Refresh trades the stored refresh token for a new access token. The
// provider may omit a refresh token here; only access_token is read.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	query := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
	}

	var tok TokenResponse
	if err := c.getJSON(ctx, c.tokenURL, query, "", &tok); err != nil {
		return "", apperr.Wrap(apperr.KindProviderRefresh, "provider token refresh failed", err)
	}
	if tok.AccessToken == "" {
		return "", apperr.New(apperr.KindProviderRefresh, "provider returned no access token on refresh")
	}
	return tok.AccessToken, nil
}

// FetchProfile reads the authenticated user's profile. The provider
// wraps the payload in a "response" envelope.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var envelope struct {
		Response Profile `json:"response"`
	}
	if err := c.getJSON(ctx, c.profileURL, nil, accessToken, &envelope); err != nil {
		return nil, apperr.Wrap(apperr.KindProviderToken, "provider profile lookup failed", err)
	}

	p := envelope.Response
	if p.Email == "" || p.Name == "" || p.ID == "" {
		return nil, apperr.New(apperr.KindProviderToken, "provider profile is missing required fields")
	}
	return &p, nil
}

// getJSON performs one GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, bearer string, out any) error {
	target := endpoint
	if len(query) > 0 {
		target = endpoint + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
