package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/use-agent/bannerscout/models"
)

// apiClient talks to a running bannerscout server.
type apiClient struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	interval time.Duration
}

func newAPIClient(baseURL, apiKey string) *apiClient {
	return &apiClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		interval: 2 * time.Second,
	}
}

func (a *apiClient) start(ctx context.Context, req models.ScrapeRequest) (string, error) {
	var resp models.StartResponse
	if err := a.do(ctx, http.MethodPost, "/api/scrape", req, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("server returned no session id")
	}
	return resp.SessionID, nil
}

func (a *apiClient) session(ctx context.Context, id string) (*models.SessionResponse, error) {
	var resp models.SessionResponse
	if err := a.do(ctx, http.MethodGet, "/api/scrape/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// wait polls a session until it leaves the running state or ctx is done.
func (a *apiClient) wait(ctx context.Context, id string) (*models.SessionResponse, error) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		s, err := a.session(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.Status.Terminal() {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *apiClient) locations(ctx context.Context) ([]models.Location, error) {
	var resp []models.Location
	if err := a.do(ctx, http.MethodGet, "/api/locations", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (a *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.apiKey != "" {
		req.Header.Set("X-API-Key", a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var e models.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != nil {
			return fmt.Errorf("[%s] %s", e.Error.Code, e.Error.Message)
		}
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
