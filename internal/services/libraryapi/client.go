package libraryapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sweeper/internal/catalog"
	"sweeper/internal/config"
	"sweeper/internal/services"
)

// HTTPDoer describes the HTTP client used by the library API adapter.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to a media server's library endpoints.
type Client struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// NewFromConfig builds a client from the catalog.api config section.
func NewFromConfig(cfg config.API) *Client {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return New(cfg.URL, cfg.APIToken, &http.Client{Timeout: timeout})
}

// New constructs a client against baseURL using the given token and doer.
func New(baseURL, token string, client HTTPDoer) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  client,
	}
}

type itemPayload struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	SizeBytes   int64    `json:"size_bytes"`
	Tags        []string `json:"tags"`
	Fingerprint string   `json:"fingerprint"`
}

// FetchAllItems retrieves the full library snapshot. Any failure is fatal for
// the run; the pipeline never plans against a partial snapshot.
func (c *Client) FetchAllItems(ctx context.Context) ([]catalog.Item, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/library/items", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "library api", "fetch items", "", err)
	}
	defer resp.Body.Close()
	if err := statusError("fetch items", resp.StatusCode); err != nil {
		return nil, err
	}

	var payload []itemPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "library api", "fetch items", "decode response", err)
	}

	items := make([]catalog.Item, 0, len(payload))
	for _, p := range payload {
		items = append(items, catalog.Item{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			SizeBytes:   p.SizeBytes,
			Tags:        p.Tags,
			Fingerprint: p.Fingerprint,
		})
	}
	catalog.SortByID(items)
	return items, nil
}

// MoveToTrash asks the server to move one item into its trash.
func (c *Client) MoveToTrash(ctx context.Context, itemID string) error {
	path := "/library/items/" + url.PathEscape(itemID) + "/trash"
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "library api", "move to trash", "item "+itemID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return statusError("move to trash", resp.StatusCode)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "library api", "request", "base url not configured", nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "library api", "request", "build request", err)
	}
	req.Header.Set("X-Api-Token", c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// statusError maps HTTP status codes onto the shared error taxonomy.
func statusError(operation string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return services.Wrap(services.ErrNotFound, "library api", operation, fmt.Sprintf("status %d", status), nil)
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return services.Wrap(services.ErrPermissionDenied, "library api", operation, fmt.Sprintf("status %d", status), nil)
	default:
		return services.Wrap(services.ErrTransient, "library api", operation, fmt.Sprintf("status %d", status), nil)
	}
}

var _ catalog.Adapter = (*Client)(nil)
