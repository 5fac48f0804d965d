package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/pkg/cache"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
)

const (
	DefaultUserAgent = "cloud-pricing-collector/2.0"

	// maxBackoffShift bounds the exponent so the backoff cannot overflow.
	maxBackoffShift = 30
)

type Config struct {
	Timeout        time.Duration
	RetryCount     int
	RateLimitDelay time.Duration
	BackoffBase    time.Duration
	UserAgent      string
}

type Client struct {
	HttpClient *http.Client
	Config     *Config
	Cache      *cache.ResponseCache
	Logger     *zap.SugaredLogger

	name  string
	timer retry.Timer
}

func NewClient(name string, config *Config, responseCache *cache.ResponseCache, logger *zap.SugaredLogger) *Client {
	httpClient := &http.Client{
		Transport: http.DefaultTransport,
		Timeout:   config.Timeout,
	}

	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &Client{
		HttpClient: httpClient,
		Config:     config,
		Cache:      responseCache,
		Logger:     logger,
		name:       name,
	}
}

// Get issues the request and returns the raw JSON body.
// A cached body is returned without a network call while it is younger than the cache TTL.
func (c *Client) Get(ctx context.Context, req Request) ([]byte, error) {
	key := req.cacheKey()

	if c.Cache != nil {
		if body, ok := c.Cache.Get(key); ok {
			c.namedLogger().With(log.KeyURL, req.URL).Debug("serve response from cache")
			return body, nil
		}
	}

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			return c.do(ctx, req)
		},
		c.retryOptions(ctx, req)...,
	)
	if err != nil {
		c.namedLogger().With(log.KeyResult, log.ValueFail).With(log.KeyURL, req.URL).
			With(log.KeyError, err.Error()).Warn("GET provider API")

		return nil, errors.Wrapf(err, "failed to GET %s", req.URL)
	}

	if c.Cache != nil {
		c.Cache.Set(key, body)
	}

	return body, nil
}

// GetJSON issues the request and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, req Request, out any) error {
	body, err := c.Get(ctx, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response from %s: %w", ErrParse, req.URL, err)
	}

	return nil
}

func (c *Client) retryOptions(ctx context.Context, req Request) []retry.Option {
	retryCount := max(c.Config.RetryCount, 0)

	options := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(retryCount) + 1),
		retry.DelayType(c.retryDelay),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			recordRetry(c.name)
			c.namedLogger().With(log.KeyURL, req.URL).With(log.KeyAttempt, n+1).
				With(log.KeyError, err.Error()).With(log.KeyRetry, log.ValueTrue).Debug("GET provider API")
		}),
	}

	if c.timer != nil {
		options = append(options, retry.WithTimer(c.timer))
	}

	return options
}

// retryDelay is the wait before retry n: the rate limit delay plus exponential backoff.
func (c *Client) retryDelay(n uint, _ error, _ *retry.Config) time.Duration {
	return c.Config.RateLimitDelay + Backoff(c.Config.BackoffBase, n)
}

// Backoff returns base * 2^attempt.
func Backoff(base time.Duration, attempt uint) time.Duration {
	return base * time.Duration(1<<min(attempt, maxBackoffShift))
}

func (c *Client) do(ctx context.Context, req Request) ([]byte, error) {
	httpReq, err := req.newHTTPRequest(ctx, c.Config.UserAgent)
	if err != nil {
		return nil, err
	}

	reqStartTime := time.Now()
	resp, err := c.HttpClient.Do(httpReq)
	duration := time.Since(reqStartTime)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		kind := ErrConnection

		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			kind = ErrTimeout
		}

		recordRequest(c.name, kind.Error(), duration)

		return nil, fmt.Errorf("%w: %w", kind, err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.namedLogger().Warn(err)
		}
	}()

	recordRequest(c.name, strconv.Itoa(resp.StatusCode), duration)

	if err := statusError(resp.StatusCode, req.URL); err != nil {
		c.namedLogger().With(log.KeyURL, req.URL).With(log.KeyStatusCode, resp.StatusCode).
			Debug("GET provider API")

		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body from %s: %w", ErrConnection, req.URL, err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: GET %s returned a body that is not valid JSON", ErrParse, req.URL)
	}

	return body, nil
}

func (c *Client) namedLogger() *zap.SugaredLogger {
	return c.Logger.Named(c.name).With("component", "http-client")
}
