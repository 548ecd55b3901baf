package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(authServiceURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(authServiceURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// StatusError carries a non-2xx response from the accounts service.
type StatusError struct {
	StatusCode int
	Message    string
	ErrorID    string
}

func (e *StatusError) Error() string {
	if e.ErrorID != "" {
		return fmt.Sprintf("accounts: status %d: %s (error_id %s)", e.StatusCode, e.Message, e.ErrorID)
	}
	return fmt.Sprintf("accounts: status %d: %s", e.StatusCode, e.Message)
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type RegisterResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/registration", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{"username": username, "password": password}
	var out TokenPair
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RefreshAccess(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/token/refresh", refreshToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LogoutAccess(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout/access", accessToken, nil, nil)
}

func (c *Client) LogoutRefresh(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/logout/refresh", refreshToken, nil, nil)
}

// Secret calls the protected probe endpoint; useful to check a token.
func (c *Client) Secret(ctx context.Context, accessToken string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/secret", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
			ErrorID string `json:"error_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			se.Message = payload.Message
			se.ErrorID = payload.ErrorID
		}
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
