// Package gemini implements the client side of the remote asset-ingestion and
// generation protocol: resumable uploads, activation polling, content-addressed
// deduplication, and the generateContent call.
package gemini

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to a Gemini-compatible inference service over HTTP.
// The API key is injected at construction time and never read from the
// environment inside this package.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	mu              sync.Mutex
	lastRequest     time.Time
}

// NewClient creates a client with default configuration.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(DefaultConfig(apiKey))
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config Config) *Client {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-pro"
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = 65536
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	return &Client{
		apiKey:          config.APIKey,
		baseURL:         baseURL,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model returns the model identifier targeted by generation calls.
func (c *Client) Model() string {
	return c.model
}

// uploadBaseURL derives the resumable-upload root from the API base URL
// (e.g. /v1beta -> /upload/v1beta).
func (c *Client) uploadBaseURL() string {
	return strings.Replace(c.baseURL, "/v1beta", "/upload/v1beta", 1)
}

// throttle spaces requests out to avoid hammering the service.
func (c *Client) throttle() {
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
}
