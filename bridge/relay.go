package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	relayTimeout  = 35 * time.Second
	relayAttempts = 3

	cacheSize = 128
	cacheTTL  = 5 * time.Minute
)

// relayClient forwards bridge tool calls to the dashboard API. GET responses
// are cached for a short window so repeated agent lookups (risk map, scan
// snapshot) do not hammer the server; failures retry with linear backoff.
type relayClient struct {
	baseURL string
	client  *http.Client
	cache   *expirable.LRU[string, []byte]
}

func newRelayClient(baseURL string) *relayClient {
	return &relayClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: relayTimeout},
		cache:   expirable.NewLRU[string, []byte](cacheSize, nil, cacheTTL),
	}
}

// get fetches an endpoint, serving from cache when a fresh response exists.
func (c *relayClient) get(path string) ([]byte, error) {
	if body, ok := c.cache.Get(path); ok {
		return body, nil
	}
	body, _, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, body)
	return body, nil
}

// post sends a JSON payload. Responses are never cached; the status code is
// returned so callers can translate API errors into tool-friendly text.
func (c *relayClient) post(path string, payload interface{}) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	return c.do(http.MethodPost, path, body)
}

func (c *relayClient) do(method, path string, body []byte) ([]byte, int, error) {
	var lastErr error
	for attempt := 0; attempt < relayAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, c.baseURL+path, reader)
		if err != nil {
			return nil, 0, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, bytes.TrimSpace(data))
			continue
		}
		return data, resp.StatusCode, nil
	}
	return nil, 0, fmt.Errorf("dashboard unreachable at %s: %w", c.baseURL, lastErr)
}
