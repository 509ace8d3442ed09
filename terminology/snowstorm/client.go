// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package snowstorm

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

	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/terminology"
	"golang.org/x/time/rate"
)

const (
	// DefaultPageSize is the number of concept ids requested per query page.
	DefaultPageSize = 10000

	// DefaultFetchBatchSize is the number of concepts requested per bulk-load call.
	DefaultFetchBatchSize = 500

	// DefaultRequestsPerSecond limits the request rate against the server.
	DefaultRequestsPerSecond = 10.0

	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultTimeout     = 60 * time.Second
)

// ErrBaseURLRequired is returned when the client is created without a server URL.
var ErrBaseURLRequired = errors.New("snowstorm base URL is required")

// Client is a terminology.Client backed by the Snowstorm REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	pageSize       int
	fetchBatchSize int
	maxAttempts    int
	retryDelay     time.Duration
	logger         *slog.Logger
}

var _ terminology.Client = (*Client)(nil)

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.httpClient = hc
		}
		return nil
	}
}

// WithRateLimit sets the maximum sustained requests per second. Zero or
// negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) error {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return nil
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithPageSize sets the number of ids requested per query page.
func WithPageSize(n int) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("page size must be positive, got %d", n)
		}
		c.pageSize = n
		return nil
	}
}

// WithFetchBatchSize sets the number of concepts requested per bulk-load call.
func WithFetchBatchSize(n int) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("fetch batch size must be positive, got %d", n)
		}
		c.fetchBatchSize = n
		return nil
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Client) error {
		if maxAttempts <= 0 {
			return terminology.ErrInvalidMaxAttempts
		}
		c.maxAttempts = maxAttempts
		c.retryDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger for the client.
// If not provided, uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// NewClient creates a Snowstorm client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid snowstorm base URL: %w", err)
	}

	c := &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		limiter:        rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), int(DefaultRequestsPerSecond)),
		pageSize:       DefaultPageSize,
		fetchBatchSize: DefaultFetchBatchSize,
		maxAttempts:    DefaultMaxAttempts,
		retryDelay:     DefaultRetryDelay,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "snowstorm-client")
	return c, nil
}

// EvaluateQuery pages through the concepts matching ecl until maxResults ids
// have been collected or the server has no more. Total is the server's count
// of matching concepts.
func (c *Client) EvaluateQuery(ctx context.Context, branch, ecl string, maxResults int, stated bool) (*terminology.QueryResult, error) {
	if maxResults <= 0 {
		return &terminology.QueryResult{}, nil
	}

	eclParam := "ecl"
	if stated {
		eclParam = "statedEcl"
	}

	result := &terminology.QueryResult{}
	searchAfter := ""
	for len(result.ConceptIDs) < maxResults {
		limit := min(c.pageSize, maxResults-len(result.ConceptIDs))

		q := url.Values{}
		q.Set(eclParam, ecl)
		q.Set("activeFilter", "true")
		q.Set("limit", strconv.Itoa(limit))
		if searchAfter != "" {
			q.Set("searchAfter", searchAfter)
		}

		var page conceptPage
		if err := c.do(ctx, http.MethodGet, c.branchURL(branch, "concepts")+"?"+q.Encode(), nil, &page); err != nil {
			return nil, fmt.Errorf("evaluate query on %s: %w", branch, err)
		}

		result.Total = page.Total
		for _, item := range page.Items {
			result.ConceptIDs = append(result.ConceptIDs, item.ConceptID)
		}

		if len(page.Items) == 0 || page.SearchAfter == "" || len(result.ConceptIDs) >= page.Total {
			break
		}
		searchAfter = page.SearchAfter
	}

	if len(result.ConceptIDs) > maxResults {
		result.ConceptIDs = result.ConceptIDs[:maxResults]
	}
	if result.Total < len(result.ConceptIDs) {
		result.Total = len(result.ConceptIDs)
	}

	c.logger.Debug("evaluated query", "branch", branch, "stated", stated, "returned", len(result.ConceptIDs), "total", result.Total)
	return result, nil
}

// FetchConcepts loads concept details in batches through the browser bulk-load endpoint.
func (c *Client) FetchConcepts(ctx context.Context, branch string, ids []string) ([]core.Concept, error) {
	concepts := make([]core.Concept, 0, len(ids))
	for start := 0; start < len(ids); start += c.fetchBatchSize {
		end := min(start+c.fetchBatchSize, len(ids))

		body, err := json.Marshal(bulkLoadRequest{ConceptIDs: ids[start:end]})
		if err != nil {
			return nil, fmt.Errorf("encode bulk-load request: %w", err)
		}

		var batch []browserConcept
		target := c.baseURL + "/browser/" + escapeBranch(branch) + "/concepts/bulk-load"
		if err := c.do(ctx, http.MethodPost, target, body, &batch); err != nil {
			return nil, fmt.Errorf("fetch concepts on %s: %w", branch, err)
		}
		for i := range batch {
			concepts = append(concepts, batch[i].toCore())
		}
	}

	c.logger.Debug("fetched concepts", "branch", branch, "requested", len(ids), "returned", len(concepts))
	return concepts, nil
}

// do sends a request with rate limiting and retry, decoding a JSON response into out.
func (c *Client) do(ctx context.Context, method, target string, body []byte, out any) error {
	policy := terminology.RetryPolicy{MaxAttempts: c.maxAttempts, BaseDelay: c.retryDelay, Logger: c.logger}
	return policy.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return &terminology.StatusError{StatusCode: http.StatusBadRequest, Message: err.Error()}
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("request failed", "method", method, "url", target, "err", err)
			return fmt.Errorf("%w: %w", terminology.ErrRequestFailed, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &terminology.StatusError{StatusCode: http.StatusBadGateway, Message: "decode response: " + err.Error()}
		}
		return nil
	}, "method", method, "url", target)
}

func (c *Client) branchURL(branch, resource string) string {
	return c.baseURL + "/" + escapeBranch(branch) + "/" + resource
}

// escapeBranch escapes each segment of a branch path such as MAIN/PROJECT/TASK.
func escapeBranch(branch string) string {
	segments := strings.Split(strings.Trim(branch, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))

	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &terminology.StatusError{StatusCode: resp.StatusCode, Message: msg}
}
