package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// The provider caps one API call at this many messages; larger batches are
// split and dispatched concurrently.
const chunkSize = 100

// Client posts message batches to the provider's HTTP send endpoint.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendBatch delivers all messages, chunked to the provider limit. Any chunk
// failure fails the whole call so the caller leaves its items pending and
// retries on the next run.
func (c *Client) SendBatch(ctx context.Context, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(messages); start += chunkSize {
		end := start + chunkSize
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[start:end]
		g.Go(func() error {
			return c.sendChunk(ctx, chunk)
		})
	}
	return g.Wait()
}

func (c *Client) sendChunk(ctx context.Context, chunk []Message) error {
	body, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push provider call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push provider returned status %d: %s", resp.StatusCode, string(snippet))
	}
	// The response carries per-message tickets; the call-level status is the
	// only acceptance signal consumed here.
	io.Copy(io.Discard, resp.Body)
	return nil
}
