package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
)

// envelope is the {success, data} wrapper every upstream endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Client fetches the seven per-trader endpoints of the venue.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	limiter       *rate.Limiter
	orderPageSize int
	log           *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit overrides the default token-bucket rate (requests/sec,
// burst).
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithOrderPageSize caps orders fetched per trader per cycle
// (scraper.orderPageSize).
func WithOrderPageSize(size int) Option {
	return func(c *Client) { c.orderPageSize = size }
}

// New builds a Client. timeout is the per-endpoint deadline
// (scraper.timeoutMs).
func New(baseURL string, timeout time.Duration, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: timeout},
		limiter:       rate.NewLimiter(rate.Limit(10), 10),
		orderPageSize: 200,
		log:           log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// endpointResult carries one subfield fetch's outcome back to the fan-in.
type endpointResult struct {
	name string
	err  error
}

// FetchTrader issues the seven concurrent endpoint fetches for one lead
// trader and assembles a RawPayload. It returns ScrapeError only when
// every endpoint failed; otherwise failed subfields are left nil/empty
// and recorded in FailedEndpoints.
func (c *Client) FetchTrader(ctx context.Context, leadID string, timeRangeStart, timeRangeEnd int64) (*RawPayload, error) {
	payload := &RawPayload{
		LeadID:         leadID,
		FetchedAt:      time.Now().UTC().UnixMilli(),
		TimeRangeStart: timeRangeStart,
		TimeRangeEnd:   timeRangeEnd,
	}

	var mu sync.Mutex
	results := make([]endpointResult, 0, 7)
	record := func(name string, err error) {
		mu.Lock()
		results = append(results, endpointResult{name: name, err: err})
		mu.Unlock()
		if err != nil {
			c.log.Warnf("endpoint fetch failed", "lead_id", leadID, "endpoint", name, "err", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(7)

	go func() {
		defer wg.Done()
		common, err := c.fetchLeadCommon(ctx, leadID)
		if err == nil {
			payload.LeadCommon = common
		}
		record("common", err)
	}()
	go func() {
		defer wg.Done()
		detail, err := c.fetchPortfolioDetail(ctx, leadID)
		if err == nil {
			payload.PortfolioDetail = detail
		}
		record("detail", err)
	}()
	go func() {
		defer wg.Done()
		positions, err := c.fetchActivePositions(ctx, leadID)
		if err == nil {
			payload.ActivePositions = positions
		}
		record("positions", err)
	}()
	go func() {
		defer wg.Done()
		series, err := c.fetchRoiSeries(ctx, leadID)
		if err == nil {
			payload.RoiSeries = series
		}
		record("roi-series", err)
	}()
	go func() {
		defer wg.Done()
		prefs, err := c.fetchAssetPreferences(ctx, leadID)
		if err == nil {
			payload.AssetPreferences = prefs
		}
		record("asset-preferences", err)
	}()
	go func() {
		defer wg.Done()
		chart, err := c.fetchRoiChart(ctx, leadID)
		if err == nil {
			payload.RoiChart = chart
		}
		record("roi-chart", err)
	}()
	go func() {
		defer wg.Done()
		history, err := c.fetchOrderHistory(ctx, leadID, c.orderPageSize)
		if err == nil {
			payload.OrderHistory = history
		}
		record("order-history", err)
	}()

	wg.Wait()

	failed := make(map[string]error, 7)
	for _, r := range results {
		if r.err != nil {
			failed[r.name] = r.err
			payload.FailedEndpoints = append(payload.FailedEndpoints, r.name)
		}
	}
	if len(failed) == len(results) {
		return nil, &ScrapeError{LeadID: leadID, Causes: failed}
	}
	return payload, nil
}

// get issues a rate-limited GET against path and decodes the {success,
// data} envelope into the data field of the given pointer.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("non-200 response (status %d): %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("upstream reported failure")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
