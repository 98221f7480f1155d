package birdeye

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	appconfig "birdeyeflow/config"
	"birdeyeflow/internal/metrics"
	"birdeyeflow/logger"
	"birdeyeflow/models"
	"birdeyeflow/protocol"
)

const maxErrorBody = 512

// Client calls the Birdeye REST endpoints. Requests are rate limited on the
// client side and never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Log
}

func NewClient(cfg *appconfig.Config) *Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.Reader.LocalIP != "" {
		if ip := net.ParseIP(cfg.Reader.LocalIP); ip != nil {
			dialer := &net.Dialer{LocalAddr: &net.TCPAddr{IP: ip}}
			transport.DialContext = dialer.DialContext
		}
	}

	limit := rate.Inf
	if rps := cfg.REST.RateLimit.RequestsPerSecond; rps > 0 {
		limit = rate.Limit(rps)
	}
	burst := cfg.REST.RateLimit.BurstSize
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.Birdeye.RESTURL, "/"),
		httpClient: &http.Client{
			Transport: authTransport{
				apiKey: cfg.Birdeye.APIKey,
				chain:  cfg.Birdeye.Chain,
				agent:  cfg.REST.UserAgent,
				base:   transport,
			},
			Timeout: cfg.REST.Timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.GetLogger(),
	}
}

// OHLCV fetches historical bars for address between from and to (unix
// seconds, inclusive).
func (c *Client) OHLCV(ctx context.Context, address string, chart protocol.ChartType, from, to int64) (*models.OHLCVResponse, error) {
	const op = "ohlcv"
	if address == "" {
		return nil, protocol.ValidationError(op, "address", "address is required")
	}
	if !chart.Valid() {
		return nil, protocol.ValidationError(op, "type", "unsupported chart type %q", chart)
	}
	if from > to {
		return nil, protocol.ValidationError(op, "time_from", "time_from %d is after time_to %d", from, to)
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("type", chart.String())
	q.Set("time_from", strconv.FormatInt(from, 10))
	q.Set("time_to", strconv.FormatInt(to, 10))

	var resp models.OHLCVResponse
	if err := c.get(ctx, op, "/defi/ohlcv", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TokenOverview fetches the market overview of one token.
func (c *Client) TokenOverview(ctx context.Context, address string) (*models.TokenOverviewResponse, error) {
	const op = "token_overview"
	if address == "" {
		return nil, protocol.ValidationError(op, "address", "address is required")
	}

	q := url.Values{}
	q.Set("address", address)

	var resp models.TokenOverviewResponse
	if err := c.get(ctx, op, "/defi/token_overview", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return protocol.HTTPError(op, err)
	}

	endpoint := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return protocol.URLError(op, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncRESTRequest(op, "error")
		return protocol.HTTPError(op, err)
	}
	defer resp.Body.Close()

	metrics.IncRESTRequest(op, strconv.Itoa(resp.StatusCode))
	log := c.log.WithComponent("birdeye_rest").WithFields(logger.Fields{
		"endpoint": op,
		"status":   resp.StatusCode,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("rest request failed")
		return protocol.HTTPError(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return protocol.HTTPError(op, err)
	}
	logger.IncrementRestCall(len(body))
	logger.LogPerformanceEntry(log, "birdeye_rest", op, time.Since(start), logger.Fields{"bytes": len(body)})

	if err := json.Unmarshal(body, out); err != nil {
		return protocol.HTTPError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
