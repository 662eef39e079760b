package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bannerscout/models"
)

func TestFormatSession(t *testing.T) {
	errMsg := "worker timed out after 5m0s"
	d := int64(1500)
	s := &models.SessionResponse{
		ID:       "abc",
		URL:      "https://casino.example",
		Location: "US",
		Status:   models.StatusCompleted,
		Progress: []models.ProgressEntry{{Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Message: "[*] Loading"}},
		Results: &models.ScrapeResult{
			Homepage:   []models.BannerRef{{Src: "https://casino.example/h.jpg", Alt: "Hero", Width: "1920", Type: models.BannerTypeImage}},
			Promotions: []models.BannerRef{},
		},
		Duration: &d,
	}

	out := formatSession(s)
	assert.Contains(t, out, "Session abc: completed")
	assert.Contains(t, out, "Duration: 1.5s")
	assert.Contains(t, out, "03:04:05 [*] Loading")
	assert.Contains(t, out, "1. https://casino.example/h.jpg (1920xauto, Banner Image) alt=\"Hero\"")
	assert.Contains(t, out, "Promotions banners (0):")
	assert.NotContains(t, out, "Error:")

	s.Error = &errMsg
	assert.Contains(t, formatSession(s), "Error: worker timed out after 5m0s")
}

func TestAPIClient_StartAndWait(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k1", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/scrape":
			var req models.ScrapeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "https://casino.example", req.URL)
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(models.StartResponse{Success: true, SessionID: "s1", Message: "Scraping started"})
		case r.URL.Path == "/api/scrape/s1":
			status := models.StatusRunning
			if polls.Add(1) >= 2 {
				status = models.StatusCompleted
			}
			_ = json.NewEncoder(w).Encode(models.SessionResponse{ID: "s1", Status: status})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	api := newAPIClient(srv.URL, "k1")
	api.interval = 10 * time.Millisecond

	id, err := api.start(context.Background(), models.ScrapeRequest{URL: "https://casino.example"})
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	s, err := api.wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, s.Status)
	assert.Equal(t, int32(2), polls.Load())
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Error: &models.ErrorDetail{Code: models.ErrCodeNotFound, Message: "session not found"},
		})
	}))
	defer srv.Close()

	_, err := newAPIClient(srv.URL, "").session(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "[NOT_FOUND] session not found", err.Error())
}

func TestAPIClient_Locations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Locations())
	}))
	defer srv.Close()

	locs, err := newAPIClient(srv.URL, "").locations(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 10)
	assert.Equal(t, "SG", locs[9].Code)
}
