// Package lookup fetches the legal values for a filter column from the
// reporting API. Failures degrade to an empty list; they never abort the
// surrounding request.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"filter-agent/internal/common/config"
	httpclient "filter-agent/internal/common/http"
	"filter-agent/internal/common/logger"
)

// Fetcher is the collaborator interface consumed by the agent.
type Fetcher interface {
	FetchValues(ctx context.Context, filterName, sourceID, authSession string) []string
}

type Client struct {
	config config.LookupConfig
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(cfg config.LookupConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: httpclient.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		logger: log.WithFields(map[string]interface{}{"component": "value-lookup"}),
	}
}

// FetchValues returns the distinct values of a column, capped at the
// configured maximum. Empty on any failure.
func (c *Client) FetchValues(ctx context.Context, filterName, sourceID, authSession string) []string {
	url := fmt.Sprintf("%s/dataset/%s/column/%s/distinct", c.config.BaseURL, sourceID, filterName)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		c.logger.Warn("value lookup request build failed", map[string]interface{}{
			"filter": filterName,
			"error":  err.Error(),
		})
		return []string{}
	}
	req.Header.Set("Cookie", "_session="+authSession)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		c.logger.Warn("value lookup failed", map[string]interface{}{
			"filter": filterName,
			"error":  err.Error(),
		})
		return []string{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("value lookup returned non-OK status", map[string]interface{}{
			"filter": filterName,
			"status": resp.StatusCode,
		})
		return []string{}
	}

	var payload struct {
		Data []interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("value lookup decode failed", map[string]interface{}{
			"filter": filterName,
			"error":  err.Error(),
		})
		return []string{}
	}

	values := make([]string, 0, len(payload.Data))
	for _, v := range payload.Data {
		if v == nil {
			continue
		}
		values = append(values, fmt.Sprintf("%v", v))
		if len(values) >= c.config.MaxValues {
			break
		}
	}
	return values
}
