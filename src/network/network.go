package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"secmaster/src/helpers"
	"secmaster/src/interfaces"
	"secmaster/src/logger"
	"secmaster/src/models"
)

type NetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger
	client       *http.Client
	mu           sync.Mutex
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MConfig, log *logger.Logger) *NetworkManager {
	nm := &NetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(cfg.Network.Proxies, cfg.Network.UserAgent, log),
		Logger:       log,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	nm.mu.Lock()
	nm.client = nm.createClient()
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) currentClient() *http.Client {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return nm.client
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation.
// Transport failures, 429 and 5xx are retried; other non-2xx statuses fail at once.
func (nm *NetworkManager) Get(ctx context.Context, urlStr string, params map[string]string, headers map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewValidationError("invalid url "+urlStr, err)
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqURL.RawQuery = q.Encode()
	finalURL := reqURL.String()

	maxAttempts := nm.Config.Network.MaxRetries + 1
	var body []byte

	err = helpers.RetryWithBackoff(ctx, maxAttempts, nm.Config.Network.RetryDelay, func(attempt int) error {
		if attempt > 0 {
			nm.rotateProxy()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
		if err != nil {
			return &helpers.Permanent{Err: helpers.NewValidationError("cannot build request", err)}
		}
		req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := nm.currentClient().Do(req)
		if err != nil {
			nm.Logger.Info("Request failed (attempt %d/%d): %v", attempt+1, maxAttempts, err)
			if ctx.Err() != nil {
				return &helpers.Permanent{Err: helpers.NewNetworkError("GET "+reqURL.Path, err)}
			}
			return helpers.NewNetworkError("GET "+reqURL.Path, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			nm.Logger.Info("Request throttled or failed upstream (%d), attempt %d/%d", resp.StatusCode, attempt+1, maxAttempts)
			return helpers.NewUpstreamStatusError(reqURL.Path, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return &helpers.Permanent{Err: helpers.NewUpstreamStatusError(reqURL.Path, resp.StatusCode)}
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return helpers.NewNetworkError("read body of "+reqURL.Path, err)
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", reqURL.Path, err)
	}

	return body, nil
}
