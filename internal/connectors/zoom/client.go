package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the Zoom REST API root.
	DefaultBaseURL = "https://api.zoom.us/v2"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// defaultPageSize is the page size requested from list endpoints; 300
	// is the documented maximum for account-level listings.
	defaultPageSize = "300"

	// chatPageSize is the maximum page size of the chat history endpoints.
	chatPageSize = "50"

	// requestsPerSecond throttles outbound calls below the per-app rate
	// limit of the Zoom API.
	requestsPerSecond = 10
)

// probePaths maps each probeable object type to its single-object endpoint.
var probePaths = map[domain.ObjectType]string{
	domain.ObjectUsers:        "/users/%s",
	domain.ObjectRoles:        "/roles/%s",
	domain.ObjectGroups:       "/groups/%s",
	domain.ObjectMeetings:     "/meetings/%s",
	domain.ObjectPastMeetings: "/past_meetings/%s",
}

// Client is the thin HTTP client every fetcher shares. It throttles,
// retries transient failures and recovers once from an expired token.
type Client struct {
	httpc   *http.Client
	baseURL string
	tokens  driven.TokenProvider
	limiter *rate.Limiter
	retry   RetryPolicy
}

// NewClient creates a Zoom API client backed by the token provider.
// retryCount bounds the attempts per request for transient failures.
func NewClient(tokens driven.TokenProvider, retryCount int) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: DefaultTimeout},
		baseURL: DefaultBaseURL,
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		retry:   NewRetryPolicy(retryCount),
	}
}

// SetBaseURL points the client at a different API root. Used by tests.
func (c *Client) SetBaseURL(base string) { c.baseURL = base }

// get performs one GET against path, decoding the JSON response into out
// when out is non-nil. Transient failures are retried per the policy.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.retry.Do(ctx, func() error {
		return c.doOnce(ctx, path, query, out, true)
	})
}

// doOnce issues a single request. A 401 triggers one synchronous token
// refresh and one re-issue; that recovery does not consume a retry attempt.
func (c *Client) doOnce(ctx context.Context, path string, query url.Values, out any, allowRefresh bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("zoom: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && allowRefresh {
		io.Copy(io.Discard, resp.Body)
		if _, err := c.tokens.Refresh(ctx); err != nil {
			return err
		}
		return c.doOnce(ctx, path, query, out, false)
	}

	if resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
			URL:        reqURL,
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("zoom: decode %s response: %w", path, err)
	}
	return nil
}

// Exists implements driven.ExistenceProber with the per-type status code
// table: the listed codes mean "gone", success means "present", anything
// else is a transport problem for the caller.
func (c *Client) Exists(ctx context.Context, t domain.ObjectType, id string) (bool, error) {
	pattern, ok := probePaths[t]
	if !ok {
		return false, fmt.Errorf("zoom: %s objects cannot be probed by id", t)
	}
	err := c.get(ctx, fmt.Sprintf(pattern, url.PathEscape(id)), nil, nil)
	if err == nil {
		return true, nil
	}
	if IsGone(err, t) {
		return false, nil
	}
	return false, err
}

// readErrorMessage extracts the message field of a Zoom error body, falling
// back to the raw body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return string(data)
}
