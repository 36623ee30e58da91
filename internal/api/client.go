// Package api is the single RPC boundary to the spreadsheet backend: JSON
// over HTTP POST to one configurable endpoint, every outcome expressed as a
// Result value.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"guestlist/internal/models"
)

const (
	// DefaultTimeout bounds each request unless overridden in settings.
	DefaultTimeout = 30 * time.Second

	defaultRetries = 2
	retryBackoff   = 500 * time.Millisecond
)

type Client struct {
	mu      sync.RWMutex
	url     string
	timeout time.Duration

	retries int
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a gateway client for the given endpoint.
// An empty url leaves the client unconfigured; every call fails until SetURL.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:     url,
		timeout: timeout,
		retries: defaultRetries,
		http:    &http.Client{},
		log:     zerolog.New(os.Stdout).With().Str("component", "api").Logger(),
	}
}

// URL returns the configured endpoint.
func (c *Client) URL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url
}

// SetURL updates the endpoint at runtime.
func (c *Client) SetURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = url
}

// SetTimeout updates the per-request timeout at runtime.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timeout > 0 {
		c.timeout = timeout
	}
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// Do sends one action and returns its result. Transport failures are retried
// a bounded number of times with fixed backoff; an application-level failure
// (success:false from the backend) is returned as-is, never retried.
func (c *Client) Do(ctx context.Context, action Action) Result {
	c.mu.RLock()
	url, timeout, retries := c.url, c.timeout, c.retries
	c.mu.RUnlock()

	if url == "" {
		return failure("api endpoint not configured")
	}

	body, err := encodeRequest(action)
	if err != nil {
		return failure("%v", err)
	}

	var last Result
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return failure("request cancelled: %v", ctx.Err())
			}
		}

		result, retryable := c.send(ctx, url, timeout, action.ActionName(), body)
		if !retryable {
			return result
		}
		last = result
		c.log.Warn().Str("action", action.ActionName()).Int("attempt", attempt+1).
			Str("error", result.Error).Msg("transport failure, retrying")
	}
	return last
}

// send performs one HTTP exchange. The second return value reports whether
// the failure is transport-class and worth retrying.
func (c *Client) send(ctx context.Context, url string, timeout time.Duration, name string, body []byte) (Result, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure("failed to build request: %v", err), false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return failure("timeout: %s took longer than %s", name, timeout), true
		}
		return failure("network error: %v", err), true
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure("HTTP %d: %s", resp.StatusCode, resp.Status), resp.StatusCode >= 500
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure("failed to read response: %v", err), true
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return failure("malformed response: %v", err), false
	}
	if !result.Success && result.Error == "" {
		result.Error = "unknown backend error"
	}
	return result, false
}

// TestConnection pings the backend and reports reachability.
func (c *Client) TestConnection(ctx context.Context) bool {
	result := c.Do(ctx, Ping{})
	if !result.Success {
		return false
	}
	var pong PingData
	if err := result.Decode(&pong); err != nil {
		// Some deployments answer ping with a bare success.
		return true
	}
	return pong.Message == "Pong" || pong.Message == ""
}

// BatchReport tallies a fail-soft bulk operation.
type BatchReport struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// AddGuestsBatch adds guests one by one and reports a success/fail tally
// instead of aborting on the first error. The returned ids slice carries one
// id per successful entry (backend-assigned when available, otherwise the
// guest's own or a generated one) and "" for failures, so a caller can
// replay exactly the successful entries.
func (c *Client) AddGuestsBatch(ctx context.Context, spreadsheetID, eventID string, guests []models.Guest) (BatchReport, []string) {
	report := BatchReport{Total: len(guests)}
	ids := make([]string, len(guests))

	for i, guest := range guests {
		result := c.Do(ctx, AddGuest{SpreadsheetID: spreadsheetID, EventID: eventID, Guest: guest})
		if !result.Success {
			report.Failed++
			c.log.Warn().Str("guest", guest.ID).Str("error", result.Error).Msg("batch add failed for guest")
			continue
		}
		var data GuestData
		switch err := result.Decode(&data); {
		case err == nil && data.GuestID != "":
			ids[i] = data.GuestID
		case guest.ID != "":
			ids[i] = guest.ID
		default:
			ids[i] = models.NewID()
		}
		report.Success++
	}
	return report, ids
}

// String implements fmt.Stringer for log-friendly reports.
func (r BatchReport) String() string {
	return fmt.Sprintf("total=%d success=%d failed=%d", r.Total, r.Success, r.Failed)
}
