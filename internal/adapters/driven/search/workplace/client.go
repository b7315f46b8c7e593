// Package workplace talks to the Workplace Search custom-source API: bulk
// document upsert and delete, the per-user permission store, and content
// source provisioning.
package workplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 60 * time.Second

// Client implements driven.SearchIndex against a Workplace Search host.
type Client struct {
	httpc    *http.Client
	hostURL  string
	apiKey   string
	sourceID string
}

var _ driven.SearchIndex = (*Client)(nil)

// NewClient creates a client for the content source identified by sourceID.
func NewClient(hostURL, apiKey, sourceID string) *Client {
	return &Client{
		httpc:    &http.Client{Timeout: DefaultTimeout},
		hostURL:  strings.TrimRight(hostURL, "/"),
		apiKey:   apiKey,
		sourceID: sourceID,
	}
}

// IndexDocuments upserts docs through the bulk create endpoint and returns
// one result per document.
func (c *Client) IndexDocuments(ctx context.Context, docs []domain.Document) ([]driven.IndexResult, error) {
	var results []driven.IndexResult
	err := c.post(ctx, c.sourcePath("documents/bulk_create"), docs, &results)
	if err != nil {
		return nil, fmt.Errorf("bulk create: %w", err)
	}
	return results, nil
}

// DeleteDocuments removes the given ids through the bulk destroy endpoint.
func (c *Client) DeleteDocuments(ctx context.Context, ids []string) error {
	if err := c.post(ctx, c.sourcePath("documents/bulk_destroy"), ids, nil); err != nil {
		return fmt.Errorf("bulk destroy: %w", err)
	}
	return nil
}

// ListPermissions returns every user permission record of the source.
func (c *Client) ListPermissions(ctx context.Context) ([]domain.UserPermissions, error) {
	var body struct {
		Results []domain.UserPermissions `json:"results"`
	}
	if err := c.getJSON(ctx, c.sourcePath("permissions"), &body); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return body.Results, nil
}

// AddPermissions grants permissions to user.
func (c *Client) AddPermissions(ctx context.Context, user string, permissions []string) error {
	payload := map[string][]string{"permissions": permissions}
	path := c.sourcePath("permissions/" + url.PathEscape(user) + "/add")
	if err := c.post(ctx, path, payload, nil); err != nil {
		return fmt.Errorf("add permissions: %w", err)
	}
	return nil
}

// RemovePermissions revokes permissions from user.
func (c *Client) RemovePermissions(ctx context.Context, user string, permissions []string) error {
	payload := map[string][]string{"permissions": permissions}
	path := c.sourcePath("permissions/" + url.PathEscape(user) + "/remove")
	if err := c.post(ctx, path, payload, nil); err != nil {
		return fmt.Errorf("remove permissions: %w", err)
	}
	return nil
}

// CreateContentSource provisions a custom content source and returns its id.
func (c *Client) CreateContentSource(ctx context.Context, name string) (string, error) {
	payload := map[string]any{
		"name":          name,
		"schema":        sourceSchema,
		"display":       sourceDisplay,
		"is_searchable": true,
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/api/ws/v1/sources", payload, &body); err != nil {
		return "", fmt.Errorf("create content source: %w", err)
	}
	return body.ID, nil
}

func (c *Client) sourcePath(suffix string) string {
	return "/api/ws/v1/sources/" + url.PathEscape(c.sourceID) + "/" + suffix
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hostURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.hostURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("workplace search: %s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// sourceSchema declares the field types of the uploaded documents.
var sourceSchema = map[string]string{
	"id":          "text",
	"type":        "text",
	"parent_id":   "text",
	"title":       "text",
	"description": "text",
	"body":        "text",
	"url":         "text",
	"size":        "number",
	"created_at":  "date",
}

// sourceDisplay configures how results render in the search UI.
var sourceDisplay = map[string]any{
	"title_field":       "title",
	"description_field": "description",
	"url_field":         "url",
	"detail_fields": []map[string]string{
		{"field_name": "body", "label": "Content"},
		{"field_name": "created_at", "label": "Created"},
	},
}
