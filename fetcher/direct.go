package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DirectStrategy downloads straight from the origin with a Chrome TLS
// fingerprint.
type DirectStrategy struct {
	client *http.Client
}

// NewDirectStrategy creates a DirectStrategy. A nil client uses
// NewChromeClient.
func NewDirectStrategy(client *http.Client) *DirectStrategy {
	if client == nil {
		client = NewChromeClient()
	}
	return &DirectStrategy{client: client}
}

func (s *DirectStrategy) Name() string { return "direct" }

func (s *DirectStrategy) Fetch(ctx context.Context, req *Request) (*Resource, error) {
	res, err := get(ctx, s.client, req)
	if err != nil {
		return nil, fmt.Errorf("direct: %w", err)
	}
	res.Strategy = s.Name()
	return res, nil
}

// get performs the GET shared by every strategy. Error statuses and
// bodies over MaxBodySize are failures.
// The returned Resource has no Strategy set.
func get(ctx context.Context, client *http.Client, req *Request) (*Resource, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxBodySize)
	}

	return &Resource{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}
