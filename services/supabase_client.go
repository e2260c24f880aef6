package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// SupabaseUser is the subset of a GoTrue user the service reads.
type SupabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SupabaseSession is a GoTrue token response. Sign-up without auto-confirm
// returns only the user.
type SupabaseSession struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type,omitempty"`
	ExpiresIn    int          `json:"expires_in,omitempty"`
	User         SupabaseUser `json:"user"`
}

// ProviderError carries the auth provider's status and message to the caller.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider returned %d: %s", e.Status, e.Message)
}

// UserResolver maps a bearer token to a user.
type UserResolver interface {
	GetUser(ctx context.Context, accessToken string) (*SupabaseUser, error)
}

// SupabaseClient calls the GoTrue REST API of a Supabase project.
type SupabaseClient struct {
	BaseURL string
	AnonKey string
	Client  *http.Client
}

func NewSupabaseClient(baseURL, anonKey string) *SupabaseClient {
	return &SupabaseClient{
		BaseURL: baseURL,
		AnonKey: anonKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *SupabaseClient) SignUp(ctx context.Context, email, password string) (*SupabaseSession, error) {
	var raw struct {
		SupabaseSession
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", credentials(email, password), &raw); err != nil {
		return nil, err
	}
	out := raw.SupabaseSession
	if out.User.ID == "" {
		out.User = SupabaseUser{ID: raw.ID, Email: raw.Email}
	}
	return &out, nil
}

func (c *SupabaseClient) SignIn(ctx context.Context, email, password string) (*SupabaseSession, error) {
	var out SupabaseSession
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", credentials(email, password), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SupabaseClient) GetUser(ctx context.Context, accessToken string) (*SupabaseUser, error) {
	var out SupabaseUser
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &ProviderError{Status: http.StatusUnauthorized, Message: "no user for token"}
	}
	return &out, nil
}

func credentials(email, password string) map[string]string {
	return map[string]string{"email": email, "password": password}
}

func (c *SupabaseClient) do(ctx context.Context, method, path, bearer string, body any, dst any) error {
	var reader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.AnonKey)
	if bearer == "" {
		bearer = c.AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[AUTH] Supabase %s returned %d: %s", path, resp.StatusCode, string(respBody))
		return &ProviderError{Status: resp.StatusCode, Message: providerMessage(respBody)}
	}

	if err := json.Unmarshal(respBody, dst); err != nil {
		return fmt.Errorf("decode auth provider response: %w", err)
	}
	return nil
}

// providerMessage picks the human-readable message out of a GoTrue error body.
func providerMessage(body []byte) string {
	var e struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		for _, m := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
			if m != "" {
				return m
			}
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return "authentication failed"
}
