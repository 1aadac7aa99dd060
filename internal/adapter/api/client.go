package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mmcdole/anbar/internal/domain"
)

const (
	DefaultBaseURL   = "/api"
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 5
	defaultBurst     = 5
	maxRetries       = 3
	baseRetryDelay   = 500 * time.Millisecond
	userAgent        = "Anbar/1.0"
	requestIDHeader  = "X-Request-ID"
)

// Client implements domain.ItemRepository, domain.CatalogRepository and
// domain.StockRepository for the warehouse REST API
type Client struct {
	baseURL        string
	initData       domain.InitDataProvider
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *slog.Logger
	maxRetries     int
	baseRetryDelay time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithInitData sets the provider consulted for the init data header
func WithInitData(p domain.InitDataProvider) Option {
	return func(c *Client) { c.initData = p }
}

// WithRateLimit caps outgoing requests per second. A limit <= 0 disables it.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetry sets how often 5xx responses are retried and the first backoff delay
func WithRetry(max int, delay time.Duration) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
		if delay > 0 {
			c.baseRetryDelay = delay
		}
	}
}

// NewClient creates a warehouse API client. A relative baseURL (the default
// "/api") is resolved against serverURL; an absolute one is used as is.
func NewClient(serverURL, baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: ResolveBaseURL(serverURL, baseURL),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		logger:         slog.Default(),
		maxRetries:     maxRetries,
		baseRetryDelay: baseRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved API base, e.g. "http://host:8000/api"
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveBaseURL joins a relative API base onto the server URL
func ResolveBaseURL(serverURL, baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if strings.HasPrefix(baseURL, "http://") || strings.HasPrefix(baseURL, "https://") {
		return strings.TrimRight(baseURL, "/")
	}
	return strings.TrimRight(serverURL, "/") + "/" + strings.Trim(baseURL, "/")
}

// doRequest performs an API request and returns the response body.
// 5xx responses are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := c.baseRetryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		requestID := uuid.NewString()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set(requestIDHeader, requestID)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.initData != nil {
			if token := c.initData(); token != "" {
				req.Header.Set(InitDataHeader, token)
			}
		}

		c.logger.Debug("api request", "method", method, "url", reqURL, "request_id", requestID, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("api request failed", "error", err, "request_id", requestID)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return respBody, nil
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return nil, domain.ErrAuthFailed
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrItemNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, domain.ErrRateLimited
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error: %d - %s", resp.StatusCode, errorDetail(respBody))
			c.logger.Warn("api server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", c.maxRetries,
				"path", path,
				"request_id", requestID,
			)
			continue
		default:
			c.logger.Error("api request error", "status", resp.StatusCode, "body", string(respBody))
			return nil, fmt.Errorf("unexpected status code: %d - %s", resp.StatusCode, errorDetail(respBody))
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

// getJSON performs a GET and decodes the body into dest
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "error", err, "path", path, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// errorDetail extracts the "detail" message from an error body if present
func errorDetail(body []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}

// === Items ===

// SearchItems searches name, custom code and description
func (c *Client) SearchItems(ctx context.Context, query string) ([]domain.Item, error) {
	q := url.Values{}
	q.Set("q", query)

	var resp ItemsResponse
	if err := c.getJSON(ctx, "/items/search", q, &resp); err != nil {
		return nil, err
	}
	return MapItems(resp.Items), nil
}

// GetItem returns a single item with its images
func (c *Client) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	var env ItemEnvelope
	if err := c.getJSON(ctx, "/items/"+strconv.FormatInt(id, 10), nil, &env); err != nil {
		return nil, err
	}

	dto := env.ItemDTO
	if env.Item != nil {
		dto = *env.Item
	}
	if dto.ID == 0 {
		return nil, domain.ErrItemNotFound
	}

	item := MapItem(dto)
	return &item, nil
}

// ListItems returns one page of all items
func (c *Client) ListItems(ctx context.Context, offset, limit int) (*domain.ItemPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var resp ItemsResponse
	if err := c.getJSON(ctx, "/items", q, &resp); err != nil {
		return nil, err
	}

	total := resp.Total
	if total == 0 {
		total = len(resp.Items)
	}
	return &domain.ItemPage{Items: MapItems(resp.Items), Total: total}, nil
}

// ItemsByBrand returns all items of a brand
func (c *Client) ItemsByBrand(ctx context.Context, brandID int64) ([]domain.Item, error) {
	return c.listItems(ctx, "/items/brand/"+strconv.FormatInt(brandID, 10))
}

// ItemsByCategory returns all items of a category
func (c *Client) ItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error) {
	return c.listItems(ctx, "/items/category/"+strconv.FormatInt(categoryID, 10))
}

// ItemsBySubcategory returns all items of a subcategory
func (c *Client) ItemsBySubcategory(ctx context.Context, subcategoryID int64) ([]domain.Item, error) {
	return c.listItems(ctx, "/items/subcategory/"+strconv.FormatInt(subcategoryID, 10))
}

// LowStockItems returns items at or below their threshold
func (c *Client) LowStockItems(ctx context.Context) ([]domain.Item, error) {
	return c.listItems(ctx, "/items/low-stock")
}

func (c *Client) listItems(ctx context.Context, path string) ([]domain.Item, error) {
	var resp ItemsResponse
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return MapItems(resp.Items), nil
}

// UpdateStock sets the available count of an item
func (c *Client) UpdateStock(ctx context.Context, id int64, available float64) error {
	path := "/items/" + strconv.FormatInt(id, 10) + "/stock"
	_, err := c.doRequest(ctx, http.MethodPatch, path, nil, StockUpdateRequest{AvailableCount: available})
	return err
}

// === Catalog ===

// GetBrands returns all brands ordered by name
func (c *Client) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	var resp BrandsResponse
	if err := c.getJSON(ctx, "/brands", nil, &resp); err != nil {
		return nil, err
	}
	return MapBrands(resp.Brands), nil
}

// GetCategories returns all categories ordered by name
func (c *Client) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var resp CategoriesResponse
	if err := c.getJSON(ctx, "/categories", nil, &resp); err != nil {
		return nil, err
	}
	return MapCategories(resp.Categories), nil
}

// GetSubcategories returns the subcategories of a category
func (c *Client) GetSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	path := fmt.Sprintf("/categories/%d/subcategories", categoryID)
	var resp SubcategoriesResponse
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return MapSubcategories(categoryID, resp.Subcategories), nil
}

// GetMeasureTypes returns all measure types
func (c *Client) GetMeasureTypes(ctx context.Context) ([]domain.MeasureType, error) {
	var resp MeasureTypesResponse
	if err := c.getJSON(ctx, "/measure-types", nil, &resp); err != nil {
		return nil, err
	}
	return MapMeasureTypes(resp.MeasureTypes), nil
}

// GetStats returns the warehouse summary
func (c *Client) GetStats(ctx context.Context) (*domain.Stats, error) {
	var resp StatsResponse
	if err := c.getJSON(ctx, "/stats", nil, &resp); err != nil {
		return nil, err
	}
	return MapStats(resp), nil
}

// Ping checks that the API answers at all
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetStats(ctx)
	if err != nil && !errors.Is(err, domain.ErrAuthFailed) {
		return err
	}
	return nil
}

var (
	_ domain.ItemRepository    = (*Client)(nil)
	_ domain.CatalogRepository = (*Client)(nil)
	_ domain.StockRepository   = (*Client)(nil)
)
