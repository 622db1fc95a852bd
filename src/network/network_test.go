package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"secmaster/src/helpers"
	"secmaster/src/logger"
	"secmaster/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(retries int) *models.MConfig {
	return &models.MConfig{
		Network: models.MNetworkConfig{
			RequestTimeout: 5,
			MaxRetries:     retries,
			RetryDelay:     time.Millisecond,
			UserAgent:      "secmaster-test",
		},
	}
}

func TestGetSendsParamsAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "daily", r.URL.Query().Get("frequencyType"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "secmaster-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"empty":true}`))
	}))
	defer srv.Close()

	nm := NewNetworkManager(testConfig(0), logger.Discard())
	body, err := nm.Get(context.Background(), srv.URL+"/v1/x",
		map[string]string{"frequencyType": "daily"},
		map[string]string{"Authorization": "Bearer tok"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"empty":true}`, string(body))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	nm := NewNetworkManager(testConfig(3), logger.Discard())
	body, err := nm.Get(context.Background(), srv.URL, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	nm := NewNetworkManager(testConfig(3), logger.Discard())
	_, err := nm.Get(context.Background(), srv.URL, nil, nil)

	var statusErr *helpers.UpstreamStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	nm := NewNetworkManager(testConfig(2), logger.Discard())
	_, err := nm.Get(context.Background(), srv.URL, nil, nil)

	assert.Equal(t, "upstream_status", helpers.Kind(err))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	nm := NewNetworkManager(testConfig(1), logger.Discard())
	_, err := nm.Get(context.Background(), url, nil, nil)

	assert.Equal(t, "network", helpers.Kind(err))
}
