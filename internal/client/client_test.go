package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addressvalidation/internal/address"
	"github.com/dukerupert/addressvalidation/internal/cache"
	"github.com/dukerupert/addressvalidation/internal/events"
	"github.com/dukerupert/addressvalidation/internal/request"
	"github.com/dukerupert/addressvalidation/internal/telemetry"
	"github.com/dukerupert/addressvalidation/internal/validation"
)

const highConfidenceResponse = `{
	"responseId": "resp-1",
	"result": {
		"verdict": {
			"inputGranularity": "PREMISE",
			"validationGranularity": "PREMISE",
			"geocodeGranularity": "PREMISE",
			"addressComplete": true
		},
		"address": {
			"formattedAddress": "1600 Amphitheatre Parkway, Mountain View, CA 94043-1351, USA",
			"postalAddress": {"regionCode": "US", "postalCode": "94043-1351"}
		}
	}
}`

type fakeTransport struct {
	mu      sync.Mutex
	calls   int
	methods []string
	bodies  [][]byte
	resp    []byte
	err     error
	block   chan struct{}
	started chan struct{}
}

func newFakeTransport(resp string) *fakeTransport {
	return &fakeTransport{resp: []byte(resp)}
}

func (f *fakeTransport) Send(ctx context.Context, method string, body []byte) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.methods = append(f.methods, method)
	f.bodies = append(f.bodies, append([]byte(nil), body...))
	first := f.calls == 1
	f.mu.Unlock()

	if f.started != nil && first {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTransport) LastBody(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.bodies)
	var m map[string]any
	require.NoError(t, json.Unmarshal(f.bodies[len(f.bodies)-1], &m))
	return m
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type brokenStore struct {
	cache.NopStore
}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func newTestClient(t *testing.T, tr Transport, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		APIKey:    "test-key",
		Transport: tr,
		Cache:     cache.NewMemoryStore(16, time.Hour),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresAPIKey(t *testing.T) {
	c, err := New(Config{})

	assert.Nil(t, c)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Equal(t, KindConfig, KindOf(err))
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultCacheTTL, c.cacheTTL)
	assert.Equal(t, "k", c.namespace)
	assert.IsType(t, cache.NopStore{}, c.cache)
	assert.IsType(t, &HTTPTransport{}, c.transport)
}

func TestClient_Validate(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	c := newTestClient(t, tr, nil)

	r, err := c.Validate(context.Background(), address.FromString("1600 Amphitheatre Pkwy"), ValidateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "resp-1", r.ResponseID())
	assert.Equal(t, validation.ConfidenceHigh, r.ConfidenceLevel())
	assert.Equal(t, []string{MethodValidateAddress}, tr.methods)

	body := tr.LastBody(t)
	assert.Equal(t, map[string]any{"addressLines": []any{"1600 Amphitheatre Pkwy"}}, body["address"])
}

func TestClient_Validate_CachesResponses(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics("test", reg)
	c := newTestClient(t, tr, func(cfg *Config) { cfg.Metrics = metrics })
	ctx := context.Background()
	addr := address.FromString("1600 Amphitheatre Pkwy")

	first, err := c.Validate(ctx, addr, ValidateOptions{})
	require.NoError(t, err)
	second, err := c.Validate(ctx, addr, ValidateOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, tr.Calls())
	assert.Equal(t, first.ResponseID(), second.ResponseID())
	assert.Equal(t, first.Raw(), second.Raw())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ValidationsTotal.WithLabelValues(telemetry.OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ConfidenceLevels.WithLabelValues("high")))
}

func TestClient_Validate_CacheKeyIncludesOptions(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	c := newTestClient(t, tr, nil)
	ctx := context.Background()
	addr := address.FromString("1600 Amphitheatre Pkwy")

	_, err := c.Validate(ctx, addr, ValidateOptions{})
	require.NoError(t, err)
	_, err = c.Validate(ctx, addr, ValidateOptions{Options: request.Options{EnableUSPSCASS: request.Bool(true)}})
	require.NoError(t, err)
	_, err = c.Validate(ctx, addr, ValidateOptions{SessionToken: "session-1"})
	require.NoError(t, err)

	assert.Equal(t, 3, tr.Calls())
}

func TestClient_Validate_SkipCache(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	c := newTestClient(t, tr, nil)
	ctx := context.Background()
	addr := address.FromString("1600 Amphitheatre Pkwy")

	_, err := c.Validate(ctx, addr, ValidateOptions{})
	require.NoError(t, err)
	_, err = c.Validate(ctx, addr, ValidateOptions{SkipCache: true})
	require.NoError(t, err)

	assert.Equal(t, 2, tr.Calls())
}

func TestClient_Validate_OptionsPropagation(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	c := newTestClient(t, tr, func(cfg *Config) {
		cfg.Defaults = request.Options{
			EnableUSPSCASS:  request.Bool(true),
			LanguageOptions: &request.LanguageOptions{ReturnEnglishLatinAddress: false},
		}
	})

	_, err := c.Validate(context.Background(), address.FromFields(map[string]any{
		"regionCode":   "US",
		"addressLines": []string{"1600 Amphitheatre Pkwy"},
	}), ValidateOptions{
		Options:            request.Options{LanguageOptions: &request.LanguageOptions{ReturnEnglishLatinAddress: true}},
		PreviousResponseID: "prev-1",
		SessionToken:       "session-1",
	})
	require.NoError(t, err)

	body := tr.LastBody(t)
	assert.Equal(t, true, body["enableUspsCass"])
	assert.Equal(t, map[string]any{"returnEnglishLatinAddress": true}, body["languageOptions"])
	assert.Equal(t, "prev-1", body["previousResponseId"])
	assert.Equal(t, "session-1", body["sessionToken"])
	assert.Equal(t, map[string]any{
		"regionCode":   "US",
		"addressLines": []any{"1600 Amphitheatre Pkwy"},
	}, body["address"])
}

func TestClient_Validate_ConcurrentCallsShareOneRequest(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	tr.block = make(chan struct{})
	tr.started = make(chan struct{})
	c := newTestClient(t, tr, nil)
	addr := address.FromString("1600 Amphitheatre Pkwy")

	const callers = 5
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := c.Validate(context.Background(), addr, ValidateOptions{})
			if err != nil || r.ResponseID() != "resp-1" {
				failures.Add(1)
			}
		}()
	}

	<-tr.started
	time.Sleep(50 * time.Millisecond)
	close(tr.block)
	wg.Wait()

	assert.Equal(t, int32(0), failures.Load())
	assert.Equal(t, 1, tr.Calls())
}

func TestClient_Validate_CancelledCallerDoesNotFailSharedRequest(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	tr.block = make(chan struct{})
	tr.started = make(chan struct{})
	store := cache.NewMemoryStore(8, time.Hour)
	c := newTestClient(t, tr, func(cfg *Config) { cfg.Cache = store })
	addr := address.FromString("1600 Amphitheatre Pkwy")

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Validate(firstCtx, addr, ValidateOptions{})
		firstErr <- err
	}()
	<-tr.started

	type outcome struct {
		r   *validation.Result
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		r, err := c.Validate(context.Background(), addr, ValidateOptions{})
		second <- outcome{r, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	err := <-firstErr
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)

	close(tr.block)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "resp-1", got.r.ResponseID())
	assert.Equal(t, 1, tr.Calls())

	_, ok, err := store.Get(context.Background(), cache.Key(tr.bodies[0], "test-key"))
	require.NoError(t, err)
	assert.True(t, ok, "shared result is cached after the first caller left")
}

func TestClient_Validate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tr       *fakeTransport
		wantKind Kind
	}{
		{
			name:     "http status",
			tr:       &fakeTransport{err: &HTTPStatusError{StatusCode: 403, Message: "denied"}},
			wantKind: KindHTTPStatus,
		},
		{
			name:     "transport",
			tr:       &fakeTransport{err: &TransportError{Err: context.DeadlineExceeded}},
			wantKind: KindTransport,
		},
		{
			name:     "api",
			tr:       &fakeTransport{err: &APIError{Code: 429, Message: "quota"}},
			wantKind: KindAPI,
		},
		{
			name:     "payload not an object",
			tr:       newFakeTransport(`[]`),
			wantKind: KindDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			metrics := telemetry.NewMetrics("test", reg)
			c := newTestClient(t, tt.tr, func(cfg *Config) { cfg.Metrics = metrics })
			addr := address.FromString("somewhere")

			r, err := c.Validate(context.Background(), addr, ValidateOptions{})
			assert.Nil(t, r)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ValidationsTotal.WithLabelValues(outcomeFor(err))))

			// failures are never cached
			_, _ = c.Validate(context.Background(), addr, ValidateOptions{})
			assert.Equal(t, 2, tt.tr.Calls())
		})
	}
}

func TestClient_Validate_CacheFailuresAreMisses(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	c := newTestClient(t, tr, func(cfg *Config) { cfg.Cache = brokenStore{} })

	r, err := c.Validate(context.Background(), address.FromString("x"), ValidateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "resp-1", r.ResponseID())
	assert.Equal(t, 1, tr.Calls())
}

func TestClient_Validate_DiscardsCorruptCacheEntry(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	store := cache.NewMemoryStore(16, time.Hour)
	c := newTestClient(t, tr, func(cfg *Config) { cfg.Cache = store })
	addr := address.FromString("x")

	body, err := request.Build(addr, request.Options{}, "", "").Encode()
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), cache.Key(body, "test-key"), []byte(`"garbage"`), time.Hour))

	r, err := c.Validate(context.Background(), addr, ValidateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "resp-1", r.ResponseID())
	assert.Equal(t, 1, tr.Calls())
}

func TestClient_Validate_PublishesEvents(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	pub := &recordingPublisher{}
	c := newTestClient(t, tr, func(cfg *Config) { cfg.Publisher = pub })
	addr := address.FromString("1600 Amphitheatre Pkwy")

	_, err := c.Validate(context.Background(), addr, ValidateOptions{})
	require.NoError(t, err)
	_, err = c.Validate(context.Background(), addr, ValidateOptions{})
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.False(t, pub.events[0].CacheHit)
	assert.True(t, pub.events[1].CacheHit)
	assert.Equal(t, "resp-1", pub.events[0].ResponseID)
	assert.Equal(t, "US", pub.events[0].RegionCode)
}

func TestClient_Validate_PublishFailureDoesNotFail(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	pub := &recordingPublisher{err: errors.New("nats down")}
	c := newTestClient(t, tr, func(cfg *Config) { cfg.Publisher = pub })

	r, err := c.Validate(context.Background(), address.FromString("x"), ValidateOptions{})
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestClient_ClearCache(t *testing.T) {
	tr := newFakeTransport(highConfidenceResponse)
	c := newTestClient(t, tr, nil)
	ctx := context.Background()
	addr := address.FromString("1600 Amphitheatre Pkwy")

	_, err := c.Validate(ctx, addr, ValidateOptions{})
	require.NoError(t, err)
	require.NoError(t, c.ClearCache(ctx))
	_, err = c.Validate(ctx, addr, ValidateOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, tr.Calls())
}

func TestClient_ProvideFeedback(t *testing.T) {
	t.Run("sends conclusion", func(t *testing.T) {
		tr := newFakeTransport(`{}`)
		c := newTestClient(t, tr, nil)

		err := c.ProvideFeedback(context.Background(), "resp-1", request.ConclusionValidatedVersionUsed)
		require.NoError(t, err)

		assert.Equal(t, []string{MethodProvideFeedback}, tr.methods)
		assert.Equal(t, map[string]any{
			"conclusion": "VALIDATED_VERSION_USED",
			"responseId": "resp-1",
		}, tr.LastBody(t))
	})

	t.Run("missing response id", func(t *testing.T) {
		tr := newFakeTransport(`{}`)
		c := newTestClient(t, tr, nil)

		err := c.ProvideFeedback(context.Background(), "", request.ConclusionUnused)
		assert.ErrorIs(t, err, ErrMissingResponseID)
		assert.Equal(t, KindInvalid, KindOf(err))
		assert.Equal(t, 0, tr.Calls())
	})

	t.Run("invalid conclusion", func(t *testing.T) {
		tr := newFakeTransport(`{}`)
		c := newTestClient(t, tr, nil)

		err := c.ProvideFeedback(context.Background(), "resp-1", request.ConclusionUnspecified)
		assert.ErrorIs(t, err, ErrInvalidConclusion)
		assert.Equal(t, 0, tr.Calls())
	})

	t.Run("transport failure", func(t *testing.T) {
		tr := &fakeTransport{err: &HTTPStatusError{StatusCode: 500}}
		reg := prometheus.NewRegistry()
		metrics := telemetry.NewMetrics("test", reg)
		c := newTestClient(t, tr, func(cfg *Config) { cfg.Metrics = metrics })

		err := c.ProvideFeedback(context.Background(), "resp-1", request.ConclusionUserVersionUsed)
		assert.Equal(t, KindHTTPStatus, KindOf(err))
		assert.Equal(t, 1.0, testutil.ToFloat64(
			metrics.FeedbackTotal.WithLabelValues("USER_VERSION_USED", telemetry.OutcomeHTTPError)))
	})
}

func TestMockValidator(t *testing.T) {
	m := NewMockValidator()
	var _ Validator = m
	var _ Validator = &Client{}

	r, err := m.Validate(context.Background(), address.FromString("a"), ValidateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "mock-response", r.ResponseID())
	assert.Len(t, m.Calls(), 1)

	m.ValidateFunc = func(context.Context, address.Input, ValidateOptions) (*validation.Result, error) {
		return nil, &TransportError{Err: errors.New("boom")}
	}
	_, err = m.Validate(context.Background(), address.FromString("b"), ValidateOptions{})
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Len(t, m.Calls(), 2)
}
