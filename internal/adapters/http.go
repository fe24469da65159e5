package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hedgelabs/hedge-sim/internal/event"
)

// HTTPSourceConfig holds configuration for the remote event source client.
type HTTPSourceConfig struct {
	BaseURL            string
	TimeoutSeconds     int
	RateLimitPerMinute int
}

// HTTPSource calls the remote event-generation endpoint
// (POST {base}/events/generate). Calls are bounded by a client timeout and
// a rate limiter so a slow or chatty source can never stall a scheduler
// past its cadence.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPSource creates a remote source client.
func NewHTTPSource(config HTTPSourceConfig) (*HTTPSource, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("event source base URL is required")
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = 3
	}
	if config.RateLimitPerMinute <= 0 {
		config.RateLimitPerMinute = 60
	}
	return &HTTPSource{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(config.RateLimitPerMinute)/60.0), config.RateLimitPerMinute),
	}, nil
}

type generateResponse struct {
	Success bool               `json:"success"`
	Event   *event.MarketEvent `json:"event"`
	Error   string             `json:"error,omitempty"`
}

func (s *HTTPSource) Generate(ctx context.Context, req GenerateRequest) (*event.MarketEvent, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("event source rate limit exceeded")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/events/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("event source request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("event source returned HTTP %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode event source response: %w", err)
	}
	if !out.Success || out.Event == nil {
		return nil, fmt.Errorf("event source error: %s", out.Error)
	}
	if out.Event.Type == "" && out.Event.Title == "" {
		return nil, fmt.Errorf("event source returned malformed event")
	}
	return out.Event, nil
}
