// Package jellyfin implements the library gateway and session guard
// against a Jellyfin-compatible server API.
package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mjpeters/reel/internal/domain"
)

const (
	defaultTimeout = 60 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond

	clientName    = "Reel"
	clientVersion = "1.0"
	deviceID      = "reel-tui-client"
)

// Client implements domain.LibraryGateway for Jellyfin
type Client struct {
	baseURL    string
	token      string
	userID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Jellyfin API client
func NewClient(baseURL, token, userID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// SetCredentials replaces the token and user after a re-authentication
func (c *Client) SetCredentials(token, userID string) {
	c.token = token
	c.userID = userID
}

// Token returns the current access token ("" when logged out)
func (c *Client) Token() string { return c.token }

// doRequest performs an authenticated request with retry and exponential
// backoff on 5xx responses. Errors come back classified into the domain
// taxonomy so call sites never probe status codes.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Emby-Authorization", buildAuthHeader(c.token))

		c.logger.Debug("jellyfin request", "method", method, "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("jellyfin request failed", "error", err)
			return nil, domain.WrapError(domain.ErrKindNetwork, err, "media server is unreachable")
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, domain.WrapError(domain.ErrKindNetwork, err, "failed to read response")
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, domain.ErrAuthRequired
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrNotFound
		case resp.StatusCode >= 500:
			lastErr = domain.NewError(domain.ErrKindNetwork, "server error: %d", resp.StatusCode)
			c.logger.Warn("jellyfin server error, will retry",
				"status", resp.StatusCode, "attempt", attempt, "path", path)
			continue
		case resp.StatusCode >= 400:
			c.logger.Error("jellyfin request rejected", "status", resp.StatusCode, "body", string(body))
			return nil, domain.NewError(domain.ErrKindServerRejected, "server rejected request: %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent:
			return nil, domain.NewError(domain.ErrKindServerRejected, "unexpected status code: %d", resp.StatusCode)
		}

		return body, nil
	}

	c.logger.Error("jellyfin request failed after retries", "error", lastErr, "url", reqURL)
	return nil, lastErr
}

// ListLibraries returns all library sections (Views) for the user
func (c *Client) ListLibraries(ctx context.Context) ([]domain.Library, error) {
	path := fmt.Sprintf("/Users/%s/Views", c.userID)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp ItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.WrapError(domain.ErrKindServerRejected, err, "failed to parse library list")
	}
	return MapLibraries(resp.Items), nil
}

// FetchItems returns one page of items for a library
func (c *Client) FetchItems(ctx context.Context, libraryID, kindFilter string, offset, limit int) (domain.ItemPage, error) {
	query := url.Values{}
	query.Set("ParentId", libraryID)
	if kindFilter != "" {
		query.Set("IncludeItemTypes", kindFilter)
	}
	query.Set("Recursive", "true")
	query.Set("Fields", "Overview,DateCreated,SortName")
	query.Set("StartIndex", strconv.Itoa(offset))
	if limit > 0 {
		query.Set("Limit", strconv.Itoa(limit))
	}
	query.Set("SortBy", "SortName")
	query.Set("SortOrder", "Ascending")

	path := fmt.Sprintf("/Users/%s/Items", c.userID)
	body, err := c.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return domain.ItemPage{}, err
	}

	var resp ItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ItemPage{}, domain.WrapError(domain.ErrKindServerRejected, err, "failed to parse item page")
	}

	items := MapItems(resp.Items, c.baseURL)
	for i := range items {
		items[i].LibraryID = libraryID
	}
	return domain.ItemPage{Items: items, Total: resp.TotalRecordCount}, nil
}

// RecentlyAdded returns the newest items across libraries
func (c *Client) RecentlyAdded(ctx context.Context, kindFilter string, limit int) ([]domain.MediaItem, error) {
	query := url.Values{}
	if kindFilter != "" {
		query.Set("IncludeItemTypes", kindFilter)
	}
	if limit > 0 {
		query.Set("Limit", strconv.Itoa(limit))
	}
	query.Set("Fields", "Overview,DateCreated,SortName")

	// Latest returns a bare item array, not an ItemsResponse
	path := fmt.Sprintf("/Users/%s/Items/Latest", c.userID)
	body, err := c.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, domain.WrapError(domain.ErrKindServerRejected, err, "failed to parse latest items")
	}
	return MapItems(items, c.baseURL), nil
}

// Search performs a server-side title search across all libraries
func (c *Client) Search(ctx context.Context, searchTerm string, limit int) ([]domain.MediaItem, error) {
	query := url.Values{}
	query.Set("SearchTerm", searchTerm)
	query.Set("IncludeItemTypes", "Movie,Series,Episode,Audio")
	query.Set("Recursive", "true")
	query.Set("Fields", "Overview,DateCreated,SortName")
	if limit > 0 {
		query.Set("Limit", strconv.Itoa(limit))
	}

	path := fmt.Sprintf("/Users/%s/Items", c.userID)
	body, err := c.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}

	var resp ItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.WrapError(domain.ErrKindServerRejected, err, "failed to parse search results")
	}
	return MapItems(resp.Items, c.baseURL), nil
}

// SetFavorite flags or unflags an item as favorite
func (c *Client) SetFavorite(ctx context.Context, itemID string, favorite bool) error {
	method := http.MethodPost
	if !favorite {
		method = http.MethodDelete
	}
	path := fmt.Sprintf("/Users/%s/FavoriteItems/%s", c.userID, itemID)
	_, err := c.doRequest(ctx, method, path, nil)
	return err
}

// SetPlayed marks an item watched or unwatched
func (c *Client) SetPlayed(ctx context.Context, itemID string, played bool) error {
	method := http.MethodPost
	if !played {
		method = http.MethodDelete
	}
	path := fmt.Sprintf("/Users/%s/PlayedItems/%s", c.userID, itemID)
	_, err := c.doRequest(ctx, method, path, nil)
	return err
}

// DeleteItem removes an item from the server
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	path := fmt.Sprintf("/Items/%s", itemID)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	return err
}

// Ping verifies the current token against the server
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/Users/Me", nil)
	return err
}
