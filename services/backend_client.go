package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"stattact-service/observability"
)

// BackendTeam is one entry of the backend's /fetch-teams response.
type BackendTeam struct {
	Name string `json:"name"`
}

// UnmarshalJSON accepts both {"name": "..."} objects and bare strings.
func (t *BackendTeam) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		t.Name = name
		return nil
	}
	type plain BackendTeam
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = BackendTeam(p)
	return nil
}

// BackendClient talks to the tactics backend. Calls are made once, without retries.
type BackendClient struct {
	BaseURL string
	Client  *http.Client
	Metrics *observability.Metrics
}

func NewBackendClient(baseURL string, client *http.Client, metrics *observability.Metrics) *BackendClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &BackendClient{BaseURL: baseURL, Client: client, Metrics: metrics}
}

// GenerateFormation asks the backend for an analysis of team vs opponent.
func (c *BackendClient) GenerateFormation(ctx context.Context, team, opponent string) (string, error) {
	q := url.Values{}
	q.Set("team", team)
	q.Set("opponent", opponent)

	var out struct {
		Result string `json:"result"`
	}
	if err := c.get(ctx, "/generate-formation", q, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

// FetchTeams returns the backend's team list.
func (c *BackendClient) FetchTeams(ctx context.Context) ([]BackendTeam, error) {
	var out struct {
		Teams []BackendTeam `json:"teams"`
	}
	if err := c.get(ctx, "/fetch-teams", nil, &out); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

func (c *BackendClient) get(ctx context.Context, path string, q url.Values, dst any) error {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid backend URL '%s': %w", c.BaseURL, err)
	}
	endpoint := base.JoinPath(path)
	if q != nil {
		endpoint.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	c.Metrics.ObserveBackend(path, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("backend request %s failed: %w", path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[BACKEND] ❌ %s returned %d: %s", path, resp.StatusCode, string(body))
		return fmt.Errorf("backend %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode backend %s response: %w", path, err)
	}
	return nil
}
