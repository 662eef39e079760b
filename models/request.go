package models

// ScrapeRequest is the payload for POST /api/scrape.
type ScrapeRequest struct {
	// URL is the absolute page URL to scan. Required.
	URL string `json:"url"`

	// Location selects the egress region (1-10).
	// Default: 1 (US). An explicit 0 is rejected.
	Location *int `json:"location,omitempty"`

	// Headless controls whether the worker browser runs headless.
	// Default: true.
	Headless *bool `json:"headless,omitempty"`

	// WebhookURL, if set, receives a signed event when the session
	// reaches a terminal state.
	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Location == nil {
		l := DefaultLocationID
		r.Location = &l
	}
	if r.Headless == nil {
		t := true
		r.Headless = &t
	}
}

// DownloadRequest is the query for GET /api/download.
type DownloadRequest struct {
	URL      string `form:"url"`
	Filename string `form:"filename"`
}
