// Package client is the HTTP client for the import API, used by the batch
// driver to run preview/confirm against a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tenjam/shopsync/internal/core"
)

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 30 * time.Second

// Client talks to one import API server.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the server at base (e.g. "http://localhost:3000").
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: DefaultTimeout},
	}
}

// PreviewResponse is the wire shape of a preview reply.
type PreviewResponse struct {
	ImportToken string `json:"importToken"`
	Preview     struct {
		Summary core.PreviewSummary `json:"summary"`
	} `json:"preview"`
	Errors   []core.Diagnostic `json:"errors"`
	Warnings []core.Diagnostic `json:"warnings"`
}

// Preview submits CSV content for validation.
func (c *Client) Preview(ctx context.Context, entity core.EntityType, content []byte) (*PreviewResponse, error) {
	body, err := c.post(ctx, fmt.Sprintf("/api/imports/%s/preview", entity), map[string]string{
		"content": string(content),
		"format":  "csv",
	})
	if err != nil {
		return nil, err
	}

	var resp PreviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse preview response: %w", err)
	}
	return &resp, nil
}

// Confirm commits a previously previewed batch.
func (c *Client) Confirm(ctx context.Context, entity core.EntityType, token string) (*core.CommitSummary, error) {
	body, err := c.post(ctx, fmt.Sprintf("/api/imports/%s/confirm", entity), map[string]string{
		"importToken": token,
	})
	if err != nil {
		return nil, err
	}

	var summary core.CommitSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("parse confirm response: %w", err)
	}
	return &summary, nil
}

// Health probes the server's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("health check failed (status %d): %s", resp.StatusCode, body)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("api error (%d): %s", resp.StatusCode, body)
	}
	return body, nil
}
