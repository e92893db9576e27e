package httpclient

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"fleet-route-api/internal/core/logger"
	"fleet-route-api/internal/core/proxy"

	"go.uber.org/zap"
)

// redactedQueryParams are query parameters that carry credentials.
var redactedQueryParams = []string{"access_token"}

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// logger receives one entry per request.
	logger *zap.Logger
}

// RoundTrip executes the request and logs details with credentials stripped from the URL.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := lrt.logger
	if log == nil {
		log = logger.Named("http")
	}
	target := RedactURL(req.URL)

	log.Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Bool("session_token", req.Header.Get("SsoHopps") != ""),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		log.Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", target),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// RedactURL renders u with credential query parameters masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	clean := *u
	q := clean.Query()
	changed := false
	for _, key := range redactedQueryParams {
		if q.Has(key) {
			q.Set(key, "REDACTED")
			changed = true
		}
	}
	if changed {
		clean.RawQuery = q.Encode()
	}
	return clean.Redacted()
}

// NewTransport returns a pooled transport shared by every outbound client.
func NewTransport(proxySettings proxy.Settings) *http.Transport {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if u := proxySettings.URL(); u != nil {
		transport.Proxy = http.ProxyURL(u)
	}

	return transport
}

// NewClient returns an http.Client with logging middleware over the given transport.
// A nil transport falls back to http.DefaultTransport.
func NewClient(timeout time.Duration, transport http.RoundTripper) *http.Client {
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: transport,
			logger:  logger.Named("http"),
		},
		Timeout: timeout,
	}
}
