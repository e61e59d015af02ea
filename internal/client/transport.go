package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API methods, appended to the endpoint as ":method".
const (
	MethodValidateAddress = "validateAddress"
	MethodProvideFeedback = "provideValidationFeedback"
)

const (
	// DefaultEndpoint is the address validation API base URL.
	DefaultEndpoint = "https://addressvalidation.googleapis.com/v1"

	// DefaultTimeout bounds a single call. A timed out call is failed, not retried.
	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 4 << 20
)

// Transport sends a JSON body to an API method and returns the JSON response.
type Transport interface {
	Send(ctx context.Context, method string, body []byte) ([]byte, error)
}

// HTTPTransport posts to the REST endpoint with the API key as a query parameter.
type HTTPTransport struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
}

// NewHTTPTransport creates a transport. A nil client gets one with timeout.
func NewHTTPTransport(endpoint, apiKey string, timeout time.Duration, client *http.Client) *HTTPTransport {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPTransport{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		timeout:  timeout,
		client:   client,
	}
}

func (t *HTTPTransport) url(method string) string {
	return fmt.Sprintf("%s:%s?key=%s", t.endpoint, method, url.QueryEscape(t.apiKey))
}

// Send performs one POST. Failures map to TransportError, HTTPStatusError,
// DecodeError or APIError. Nothing is retried.
func (t *HTTPTransport) Send(ctx context.Context, method string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url(method), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: redactKey(err, t.apiKey)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
		if apiErr := extractAPIError(data); apiErr != nil {
			statusErr.Message = apiErr.Message
		}
		return nil, statusErr
	}

	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, &DecodeError{Err: errors.New("response body is not valid JSON")}
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &DecodeError{Err: errors.New("response body is not a JSON object")}
	}
	if apiErr := extractAPIError(trimmed); apiErr != nil {
		return nil, apiErr
	}

	return trimmed, nil
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func extractAPIError(data []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Error == nil {
		return nil
	}
	msg := env.Error.Message
	if msg == "" {
		msg = "unknown error"
	}
	return &APIError{Code: env.Error.Code, Status: env.Error.Status, Message: msg}
}

// redactKey strips the API key from URL errors so it never reaches logs.
func redactKey(err error, apiKey string) error {
	if apiKey == "" {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := *urlErr
		redacted.URL = strings.ReplaceAll(redacted.URL, url.QueryEscape(apiKey), "REDACTED")
		return &redacted
	}
	return err
}
