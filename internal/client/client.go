// Package client validates addresses against the address validation API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dukerupert/addressvalidation/internal/address"
	"github.com/dukerupert/addressvalidation/internal/cache"
	"github.com/dukerupert/addressvalidation/internal/events"
	"github.com/dukerupert/addressvalidation/internal/request"
	"github.com/dukerupert/addressvalidation/internal/telemetry"
	"github.com/dukerupert/addressvalidation/internal/validation"
)

// DefaultCacheTTL is how long a response stays cached when no TTL is set.
const DefaultCacheTTL = 24 * time.Hour

// Validator validates a single address.
type Validator interface {
	// Validate returns either an interpreted result or an error, never both.
	Validate(ctx context.Context, addr address.Input, opts ValidateOptions) (*validation.Result, error)
}

// ValidateOptions are per-call settings.
type ValidateOptions struct {
	// Options override the client defaults field by field.
	Options request.Options

	// PreviousResponseID links a revalidation to an earlier response.
	PreviousResponseID string

	// SessionToken groups calls of one user session for billing.
	SessionToken string

	// SkipCache bypasses the cache lookup. The fresh response is still stored.
	SkipCache bool
}

// Config contains configuration for the client.
type Config struct {
	APIKey     string
	Endpoint   string        // Optional: defaults to DefaultEndpoint
	Timeout    time.Duration // Optional: defaults to DefaultTimeout
	HTTPClient *http.Client  // Optional
	Transport  Transport     // Optional: overrides Endpoint, Timeout and HTTPClient

	// Defaults apply to every call unless the call supplies its own value.
	Defaults request.Options

	Cache          cache.Store   // Optional: defaults to cache.NopStore
	CacheTTL       time.Duration // Optional: defaults to DefaultCacheTTL
	CacheNamespace string        // Optional: defaults to APIKey

	Metrics   *telemetry.Metrics // Optional
	Publisher events.Publisher   // Optional
	Logger    *slog.Logger       // Optional: defaults to slog.Default()
}

// Client is safe for concurrent use.
type Client struct {
	transport Transport
	defaults  request.Options
	cache     cache.Store
	cacheTTL  time.Duration
	namespace string
	metrics   *telemetry.Metrics
	publisher events.Publisher
	logger    *slog.Logger
	timeout   time.Duration
	group     singleflight.Group
	now       func() time.Time
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" && cfg.Transport == nil {
		return nil, ErrMissingAPIKey
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(cfg.Endpoint, cfg.APIKey, cfg.Timeout, cfg.HTTPClient)
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NopStore{}
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	namespace := cfg.CacheNamespace
	if namespace == "" {
		namespace = cfg.APIKey
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &Client{
		transport: transport,
		defaults:  cfg.Defaults,
		cache:     store,
		cacheTTL:  ttl,
		namespace: namespace,
		metrics:   cfg.Metrics,
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
	}, nil
}

type fetched struct {
	result *validation.Result
}

// Validate builds the request, serves it from cache when possible, and
// otherwise calls the API once for all concurrent identical requests.
func (c *Client) Validate(ctx context.Context, addr address.Input, opts ValidateOptions) (*validation.Result, error) {
	body := request.Build(addr, c.defaults.Merge(opts.Options), opts.PreviousResponseID, opts.SessionToken)
	encoded, err := body.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	key := cache.Key(encoded, c.namespace)
	logger := c.logger.With("cache_key", key)

	if !opts.SkipCache {
		if r, ok := c.lookup(ctx, key, logger); ok {
			c.record(ctx, r, true, logger)
			return r, nil
		}
	}

	// The shared call ignores the cancellation of whichever caller started it.
	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		r, err := c.fetch(fetchCtx, key, encoded, logger)
		if err != nil {
			return nil, err
		}
		return fetched{result: r}, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		logger.Debug("caller stopped waiting for validation", "error", ctx.Err())
		return nil, &TransportError{Err: ctx.Err()}
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		logger.Debug("shared in-flight validation")
	}

	r := res.Val.(fetched).result
	c.record(ctx, r, false, logger)
	return r, nil
}

// lookup treats every cache failure as a miss.
func (c *Client) lookup(ctx context.Context, key string, logger *slog.Logger) (*validation.Result, bool) {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", "error", err)
		c.countCache("error")
		return nil, false
	}
	if !ok {
		c.countCache("miss")
		return nil, false
	}

	r, err := validation.Parse(raw)
	if err != nil {
		logger.Warn("discarding unreadable cache entry", "error", err)
		_ = c.cache.Delete(ctx, key)
		c.countCache("error")
		return nil, false
	}

	c.countCache("hit")
	return r, true
}

func (c *Client) fetch(ctx context.Context, key string, body []byte, logger *slog.Logger) (*validation.Result, error) {
	start := c.now()
	raw, err := c.transport.Send(ctx, MethodValidateAddress, body)
	c.observeLatency(MethodValidateAddress, start)
	if err != nil {
		logger.Error("address validation failed", "kind", KindOf(err), "error", err)
		c.countOutcome(outcomeFor(err))
		return nil, err
	}

	r, err := validation.Parse(raw)
	if err != nil {
		decodeErr := &DecodeError{Err: err}
		logger.Error("address validation failed", "kind", KindDecode, "error", err)
		c.countOutcome(telemetry.OutcomeDecodeError)
		return nil, decodeErr
	}
	c.countOutcome(telemetry.OutcomeOK)

	if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
		logger.Warn("cache write failed", "error", err)
		c.countCacheWrite("error")
	} else {
		c.countCacheWrite("ok")
	}

	logger.Info("address validated",
		"response_id", r.ResponseID(),
		"confidence", r.ConfidenceLevel(),
	)
	return r, nil
}

// record updates result metrics and publishes the event. Publishing never
// fails the validation.
func (c *Client) record(ctx context.Context, r *validation.Result, cacheHit bool, logger *slog.Logger) {
	if c.metrics != nil {
		c.metrics.ConfidenceLevels.WithLabelValues(string(r.ConfidenceLevel())).Inc()
		c.metrics.AddressTypes.WithLabelValues(string(r.AddressType())).Inc()
		c.metrics.Scores.Observe(float64(r.Score()))
	}

	err := c.publisher.Publish(ctx, events.NewEvent(r, cacheHit, c.now()))
	if err != nil {
		logger.Warn("failed to publish validation event", "error", err)
	}
	if c.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.metrics.EventsPublished.WithLabelValues(result).Inc()
	}
}

// ClearCache removes every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	if err := c.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	c.logger.Info("address validation cache cleared")
	return nil
}

// ProvideFeedback tells the API how a validation sequence ended.
func (c *Client) ProvideFeedback(ctx context.Context, responseID string, conclusion request.FeedbackConclusion) error {
	if responseID == "" {
		return ErrMissingResponseID
	}
	if !conclusion.Valid() {
		return ErrInvalidConclusion
	}

	body, err := json.Marshal(request.Feedback{Conclusion: conclusion, ResponseID: responseID})
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	logger := c.logger.With("response_id", responseID, "conclusion", conclusion)

	start := c.now()
	_, err = c.transport.Send(ctx, MethodProvideFeedback, body)
	c.observeLatency(MethodProvideFeedback, start)
	if c.metrics != nil {
		c.metrics.FeedbackTotal.WithLabelValues(string(conclusion), outcomeFor(err)).Inc()
	}
	if err != nil {
		logger.Error("validation feedback failed", "kind", KindOf(err), "error", err)
		return err
	}

	logger.Info("validation feedback sent")
	return nil
}

func outcomeFor(err error) string {
	switch KindOf(err) {
	case KindNone:
		if err == nil {
			return telemetry.OutcomeOK
		}
		return telemetry.OutcomeTransportError
	case KindTransport:
		return telemetry.OutcomeTransportError
	case KindHTTPStatus:
		return telemetry.OutcomeHTTPError
	case KindDecode:
		return telemetry.OutcomeDecodeError
	case KindAPI:
		return telemetry.OutcomeAPIError
	default:
		return telemetry.OutcomeTransportError
	}
}

func (c *Client) countOutcome(outcome string) {
	if c.metrics != nil {
		c.metrics.ValidationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (c *Client) countCache(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (c *Client) countCacheWrite(result string) {
	if c.metrics != nil {
		c.metrics.CacheWrites.WithLabelValues(result).Inc()
	}
}

func (c *Client) observeLatency(method string, start time.Time) {
	if c.metrics != nil {
		c.metrics.APILatency.WithLabelValues(method).Observe(c.now().Sub(start).Seconds())
	}
}
