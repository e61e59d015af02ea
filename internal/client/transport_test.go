package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Send(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   Kind
		wantStatus int
		wantMsg    string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `  {"responseId":"abc","result":{}}  `,
		},
		{
			name:       "non-2xx with error envelope",
			status:     http.StatusBadRequest,
			body:       `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`,
			wantKind:   KindHTTPStatus,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "API key not valid.",
		},
		{
			name:       "non-2xx without body",
			status:     http.StatusServiceUnavailable,
			body:       ``,
			wantKind:   KindHTTPStatus,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:     "invalid json",
			status:   http.StatusOK,
			body:     `not json`,
			wantKind: KindDecode,
		},
		{
			name:     "json array",
			status:   http.StatusOK,
			body:     `[1,2]`,
			wantKind: KindDecode,
		},
		{
			name:     "embedded api error",
			status:   http.StatusOK,
			body:     `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
			wantKind: KindAPI,
			wantMsg:  "Quota exceeded",
		},
		{
			name:     "embedded api error without message",
			status:   http.StatusOK,
			body:     `{"error":{}}`,
			wantKind: KindAPI,
			wantMsg:  "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotKey, gotContentType, gotBody string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotKey = r.URL.Query().Get("key")
				gotContentType = r.Header.Get("Content-Type")
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			tr := NewHTTPTransport(srv.URL+"/v1/", "secret", time.Second, nil)
			data, err := tr.Send(context.Background(), MethodValidateAddress, []byte(`{"address":{}}`))

			assert.Equal(t, "/v1:validateAddress", gotPath)
			assert.Equal(t, "secret", gotKey)
			assert.Equal(t, "application/json", gotContentType)
			assert.Equal(t, `{"address":{}}`, gotBody)

			if tt.wantKind == KindNone {
				require.NoError(t, err)
				assert.Equal(t, `{"responseId":"abc","result":{}}`, string(data))
				return
			}

			require.Error(t, err)
			assert.Nil(t, data)
			assert.Equal(t, tt.wantKind, KindOf(err))

			switch e := err.(type) {
			case *HTTPStatusError:
				assert.Equal(t, tt.wantStatus, e.StatusCode)
				assert.Equal(t, tt.wantMsg, e.Message)
			case *APIError:
				assert.Equal(t, tt.wantMsg, e.Message)
			}
		})
	}
}

func TestHTTPTransport_TransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	tr := NewHTTPTransport(endpoint, "super-secret-key", time.Second, nil)
	_, err := tr.Send(context.Background(), MethodValidateAddress, []byte(`{}`))

	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.NotContains(t, err.Error(), "super-secret-key")
}

func TestHTTPTransport_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	tr := NewHTTPTransport(srv.URL, "key", 50*time.Millisecond, nil)
	_, err := tr.Send(context.Background(), MethodValidateAddress, []byte(`{}`))

	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestNewHTTPTransport_Defaults(t *testing.T) {
	tr := NewHTTPTransport("", "key", 0, nil)

	assert.Equal(t, DefaultEndpoint, tr.endpoint)
	assert.Equal(t, DefaultTimeout, tr.timeout)
	assert.Equal(t, DefaultEndpoint+":provideValidationFeedback?key=key", tr.url(MethodProvideFeedback))
}
