// Package branchapi is the HTTP client for the upstream branches API.
package branchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"tablero/internal/model"
	"tablero/internal/schedule"
)

// APIError is the normalized shape of an upstream rejection.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// EnablePayload is the per-id request body for enable/disable calls.
type EnablePayload struct {
	AcceptsReservations bool `json:"accepts_reservations"`
}

// SettingsPayload is the per-id request body for settings saves.
type SettingsPayload struct {
	ReservationDuration int              `json:"reservation_duration"`
	ReservationTimes    schedule.WeekMap `json:"reservation_times"`
}

// Client talks to the branches API with bearer auth, optional Redis
// caching for list calls and optional outbound request pacing.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	limiter  *rate.Limiter
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for baseURL authenticated with token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseRedisCache configures read/write-through caching for list calls.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// SetRateLimit paces outbound requests at rps with the given burst.
func (c *Client) SetRateLimit(rps float64, burst int) {
	if rps <= 0 || burst <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

type branchList struct {
	Data []*model.Branch `json:"data"`
}

type branchWrap struct {
	Data *model.Branch `json:"data"`
}

// ListBranches fetches all branches with their sections and tables.
func (c *Client) ListBranches(ctx context.Context) ([]*model.Branch, error) {
	endpoint := fmt.Sprintf("%s/branches?%s", c.baseURL, url.Values{
		"include[0]": {"sections"},
		"include[1]": {"sections.tables"},
	}.Encode())

	const cacheKey = "branches"
	var wrap branchList

	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.Data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	if err := c.do(req, &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.Data, nil
}

// UpdateBranch issues an id-scoped update and returns the server's copy of
// the branch. Upstream rejections come back as *APIError.
func (c *Client) UpdateBranch(ctx context.Context, id string, payload any) (*model.Branch, error) {
	endpoint := fmt.Sprintf("%s/branches/%s", c.baseURL, url.PathEscape(id))

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	var wrap branchWrap
	if err := c.do(req, &wrap); err != nil {
		return nil, err
	}
	c.invalidateCache(ctx, "branches")
	return wrap.Data, nil
}

func (c *Client) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return err
		}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(apiErr); decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		// The transport status is authoritative over whatever the body says.
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) invalidateCache(ctx context.Context, key string) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	_ = c.redis.Del(ctx, key).Err()
}

// HealthCheck verifies the upstream API answers at all.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/branches", http.NoBody)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}
