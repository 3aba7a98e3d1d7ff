// Package api provides a client for the property price prediction service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 30 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	userAgent      = "github.com/theirongolddev/realtyai/1.0"
)

// ErrNoBaseURL indicates the client was configured without a service URL.
var ErrNoBaseURL = errors.New("api: no base URL configured")

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	// Detail is the service-provided message, empty if the body had none.
	Detail string
}

// Error returns the service's detail verbatim, falling back to the status code.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Error: %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout applies per request. Zero disables it.
	Timeout time.Duration
	// RequestsPerSecond enables client-side throttling when > 0.
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Logger            logrus.FieldLogger
}

// Client talks to the prediction service over JSON/HTTP. It never retries.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// NewClient creates a client. It returns ErrNoBaseURL for an empty base URL.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}
	c := &Client{
		baseURL: base,
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
		log:     opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// AvailableRegions lists the regions the service can forecast.
func (c *Client) AvailableRegions(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, "/available_regions", nil)
	if err != nil {
		return nil, err
	}
	var resp RegionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: parsing regions: %w", err)
	}
	return resp.Regions, nil
}

// Forecast requests a forecast of horizon months for one region.
func (c *Client) Forecast(ctx context.Context, req ForecastRequest) (*ForecastResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/forecast", req)
	if err != nil {
		return nil, err
	}
	var resp ForecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: parsing forecast: %w", err)
	}
	return &resp, nil
}

// PredictPrice requests a price prediction for one property.
func (c *Client) PredictPrice(ctx context.Context, req PriceRequest) (*PriceResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/predict_price", req)
	if err != nil {
		return nil, err
	}
	var resp PriceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: parsing prediction: %w", err)
	}
	return &resp, nil
}

// RegionStatistics requests descriptive statistics for one region.
func (c *Client) RegionStatistics(ctx context.Context, region string) (*StatisticsResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/region_statistics", StatisticsRequest{Region: region})
	if err != nil {
		return nil, err
	}
	var resp StatisticsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: parsing statistics: %w", err)
	}
	return &resp, nil
}

// do sends one request and returns the response body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("api: waiting for rate limiter: %w", err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encoding request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("api request")
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
	}
	return body, nil
}

// parseDetail extracts the "detail" field of an error body. String details
// are returned verbatim; validation error lists are joined by their messages.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	switch d := eb.Detail.(type) {
	case string:
		return d
	case []any:
		var msgs []string
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
