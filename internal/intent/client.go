// internal/intent/client.go
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"filter-agent/internal/common/config"
	"filter-agent/internal/common/logger"
	"filter-agent/internal/common/metrics"
)

var (
	ErrIntentParsingFailed = errors.New("INTENT_PARSING_FAILED")
	ErrIntentAPITimeout    = errors.New("INTENT_API_TIMEOUT")
)

// Resolver maps a query plus filter context to one operation decision.
type Resolver interface {
	Resolve(ctx context.Context, req *Request) (*Decision, error)
}

type Client struct {
	config config.IntentConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg config.IntentConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		},
		logger: log.WithFields(map[string]interface{}{"component": "intent-client"}),
	}
}

func (c *Client) Resolve(ctx context.Context, req *Request) (*Decision, error) {
	start := time.Now()
	decision, err := c.resolve(ctx, req)
	metrics.IntentResolutionDuration.Observe(time.Since(start).Seconds())
	return decision, err
}

func (c *Client) resolve(ctx context.Context, req *Request) (*Decision, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntentParsingFailed, err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between retries
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrIntentAPITimeout
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/ai/resolve-filter-intent", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIntentParsingFailed, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(httpReq)

		// If the context expired during the request, report timeout immediately.
		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, ErrIntentAPITimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrIntentAPITimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrIntentParsingFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrIntentParsingFailed)
	}
	defer resp.Body.Close()

	var decision Decision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrIntentParsingFailed, err)
	}
	if decision.Operation == "" {
		return nil, fmt.Errorf("%w: empty operation in response", ErrIntentParsingFailed)
	}

	c.logger.Info("intent resolved", map[string]interface{}{
		"operation": decision.Operation,
		"filter":    decision.Arguments.Name,
	})

	return &decision, nil
}
